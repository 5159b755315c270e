// internal/utils/validator.go
package utils

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/pollopollo-backend/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("application_status", validateApplicationStatus)
	validate.RegisterValidation("user_role", validateUserRole)
	validate.RegisterValidation("single_line", validateSingleLine)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	return models.ApplicationStatus(fl.Field().String()).Valid()
}

func validateUserRole(fl validator.FieldLevel) bool {
	return models.UserRole(fl.Field().String()).Valid()
}

// validateSingleLine rejects line breaks and other control characters in
// values that end up in mail headers or one-line displays.
func validateSingleLine(fl validator.FieldLevel) bool {
	return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param() + " characters"
	case "max":
		return e.Field() + " must be at most " + e.Param() + " characters"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "application_status":
		return "Status must be one of: open, pending, completed, locked"
	case "user_role":
		return "Role must be producer or receiver"
	case "single_line":
		return e.Field() + " must not contain line breaks or control characters"
	default:
		return e.Field() + " is invalid"
	}
}
