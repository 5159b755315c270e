// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess      = "success"
	KeyError        = "error"
	KeyAccessDenied = "access_denied"
	KeyRateLimited  = "rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"

	// Users
	KeyUserNotFound       = "user.not_found"
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserInvalidPairing = "user.invalid_pairing_secret"
	KeyUserDevicePaired   = "user.device_paired"
	KeyUserWrongRole      = "user.wrong_role"

	// Products
	KeyProductNotFound    = "product.not_found"
	KeyProductUnavailable = "product.unavailable"

	// Applications
	KeyApplicationNotFound          = "application.not_found"
	KeyApplicationInvalidTransition = "application.invalid_transition"
	KeyApplicationNotDeletable      = "application.not_deletable"
	KeyApplicationNothingToWithdraw = "application.nothing_to_withdraw"
	KeyApplicationDeleted           = "application.deleted"
	KeyApplicationWithdrawalPending = "application.withdrawal_pending"

	// Wallet
	KeyWalletUnavailable = "wallet.unavailable"

	// Validation
	KeyValidationInvalid = "validation.invalid"
)
