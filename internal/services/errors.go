// internal/services/errors.go
package services

import "errors"

var (
	ErrValidationFailed     = errors.New("validation failed")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidPairingSecret = errors.New("invalid pairing secret")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrNothingToWithdraw    = errors.New("nothing to withdraw")
	ErrWithdrawalInProgress = errors.New("withdrawal already in progress")
	ErrWalletUnavailable    = errors.New("wallet is not configured")
	ErrPersistence          = errors.New("persistence failure")
)
