// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/pollopollo-backend/internal/i18n"
	"github.com/javajoker/pollopollo-backend/internal/services"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

// respondError maps service errors onto the JSON error envelope.
func respondError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(validationErrs))
	case errors.Is(err, services.ErrValidationFailed):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
	case errors.Is(err, services.ErrApplicationNotFound):
		utils.NotFoundResponse(c, i18n.KeyApplicationNotFound)
	case errors.Is(err, services.ErrProductNotFound):
		utils.NotFoundResponse(c, i18n.KeyProductNotFound)
	case errors.Is(err, services.ErrUserNotFound):
		utils.NotFoundResponse(c, i18n.KeyUserNotFound)
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrInvalidPairingSecret):
		utils.NotFoundResponse(c, i18n.KeyUserInvalidPairing)
	case errors.Is(err, services.ErrUserExists):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
	case errors.Is(err, services.ErrInvalidTransition):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApplicationInvalidTransition))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrWithdrawalInProgress):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyApplicationWithdrawalPending))
	case errors.Is(err, services.ErrNothingToWithdraw):
		utils.UnprocessableResponse(c, "NOTHING_TO_WITHDRAW", i18n.T(lang, i18n.KeyApplicationNothingToWithdraw))
	case errors.Is(err, services.ErrWalletUnavailable):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyWalletUnavailable))
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

// bindJSON decodes the body into req and writes the error response on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}
	return true
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseIDParam(c, name)
	if !ok {
		lang := utils.GetLangFromContext(c)
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, name), nil)
	}
	return id, ok
}

func currentUserID(c *gin.Context) (uint, bool) {
	id, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
	}
	return id, ok
}
