package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/recall-api/internal/domain"
	"github.com/phrazzld/recall-api/internal/store"
)

// Sentinel errors returned by the services. The API layer maps them to
// status codes with errors.Is.
var (
	// ErrQuotaExceeded indicates a tier limit would be exceeded.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrDowngradeBlocked indicates the user holds more memories than the
	// free tier allows.
	ErrDowngradeBlocked = fmt.Errorf("%w: downgrade blocked", ErrQuotaExceeded)

	// ErrFeatureUnavailable indicates the feature needs a higher tier.
	ErrFeatureUnavailable = errors.New("feature not available on current subscription")

	// ErrInsightsDisabled indicates no AI provider is configured.
	ErrInsightsDisabled = errors.New("memory insights are not configured")

	// ErrAssociatedMemoryNotFound indicates a reminder references a memory
	// the caller does not own.
	ErrAssociatedMemoryNotFound = fmt.Errorf("%w: associated memory", store.ErrNotFound)

	// ErrIncorrectPassword indicates the current password did not match
	// during a password change.
	ErrIncorrectPassword = errors.New("current password is incorrect")
)

// Messages shown to clients for the errors above.
const (
	MemoryLimitMessage       = "Memory limit reached. Upgrade to Premium for unlimited memories."
	AIFeaturesMessage        = "AI features require a Premium subscription"
	AlreadyPremiumMessage    = "User already has premium subscription"
	AlreadyFreeMessage       = "User already has free subscription"
	AssociatedMemoryMessage  = "Associated memory not found"
	IncorrectPasswordMessage = "Current password is incorrect"
	EmailInUseMessage        = "Email already in use"
	PasswordsRequiredMessage = "Current and new passwords are required"
	NewPasswordLengthMessage = "New password must be at least 8 characters long"
	downgradeBlockedFormat   = "Cannot downgrade: You have %d memories. Please delete some to get under the %d memory limit for free accounts."
)

// QuotaError reports a tier limit together with the client-facing message.
type QuotaError struct {
	Count   int
	Limit   int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *QuotaError) Error() string {
	return e.Message
}

// Unwrap returns ErrQuotaExceeded or ErrDowngradeBlocked.
func (e *QuotaError) Unwrap() error {
	return e.Err
}

func newMemoryLimitError(count int) *QuotaError {
	return &QuotaError{
		Count:   count,
		Limit:   domain.FreeMemoryLimit,
		Message: MemoryLimitMessage,
		Err:     ErrQuotaExceeded,
	}
}

func newDowngradeBlockedError(count int) *QuotaError {
	return &QuotaError{
		Count:   count,
		Limit:   domain.FreeMemoryLimit,
		Message: fmt.Sprintf(downgradeBlockedFormat, count, domain.FreeMemoryLimit),
		Err:     ErrDowngradeBlocked,
	}
}

// ServiceError wraps errors from a service with context.
type ServiceError struct {
	// Service is the service that failed (e.g., "memory", "reminder")
	Service string
	// Operation is the operation that failed (e.g., "create", "complete")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a ServiceError. Errors that already carry a
// client-facing meaning are returned unchanged.
func NewServiceError(service, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	var quotaErr *QuotaError
	if errors.As(err, &validationErr) || errors.As(err, &quotaErr) ||
		errors.Is(err, ErrFeatureUnavailable) || errors.Is(err, ErrInsightsDisabled) ||
		errors.Is(err, ErrIncorrectPassword) {
		return err
	}

	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
