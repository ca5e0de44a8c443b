package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/service"
	"github.com/phrazzld/recall-api/internal/service/auth"
	"github.com/phrazzld/recall-api/internal/store"
)

// Client-facing messages that do not come from a typed error.
const (
	NoDataMessage         = "No data provided"
	InvalidRequestMessage = "Invalid request format"
	UnexpectedMessage     = "An unexpected error occurred"
	UserExistsMessage     = "User already exists"
	InvalidCredsMessage   = "Invalid credentials"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return http.StatusInternalServerError

	// Downgrade blocked wraps ErrQuotaExceeded and must be checked first
	case errors.Is(err, service.ErrDowngradeBlocked):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrQuotaExceeded),
		errors.Is(err, service.ErrFeatureUnavailable):
		return http.StatusForbidden

	case errors.Is(err, service.ErrInsightsDisabled):
		return http.StatusServiceUnavailable

	// Authentication errors
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, service.ErrIncorrectPassword),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-friendly message for err. Typed errors
// that carry their own client message, such as validation and quota errors,
// contribute that message verbatim.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return UnexpectedMessage
	}

	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors
	var quotaErr *service.QuotaError

	switch {
	case errors.As(err, &quotaErr):
		return quotaErr.Message
	case errors.Is(err, service.ErrFeatureUnavailable):
		return service.AIFeaturesMessage
	case errors.Is(err, service.ErrInsightsDisabled):
		return "Memory insights are not available"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return InvalidCredsMessage
	case errors.Is(err, service.ErrIncorrectPassword):
		return service.IncorrectPasswordMessage
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// The associated memory error wraps ErrNotFound and is checked first
	case errors.Is(err, service.ErrAssociatedMemoryNotFound):
		return service.AssociatedMemoryMessage
	case errors.Is(err, store.ErrMemoryNotFound):
		return "Memory not found"
	case errors.Is(err, store.ErrReminderNotFound):
		return "Reminder not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, store.ErrEmailExists):
		return UserExistsMessage
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, shared.ErrEmptyBody):
		return NoDataMessage
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Validation failed"

	default:
		return UnexpectedMessage
	}
}

// HandleAPIError writes the response for err. defaultMsg replaces the
// generic message of a 500 response when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		return fmt.Sprintf("Invalid %s: %s", strings.ToLower(first.Field()), getValidationTagMessage(first.Tag()))
	}

	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := strings.ToLower(fieldParts[1])
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "uuid":
		return "invalid identifier"
	default:
		return "validation failed"
	}
}
