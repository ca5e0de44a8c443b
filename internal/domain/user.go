package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinPasswordLength is the shortest password accepted at registration and on change.
const MinPasswordLength = 8

// MaxPasswordLength is the longest password in bytes that bcrypt can hash.
const MaxPasswordLength = 72

// PasswordTooLongMessage is reported for passwords over MaxPasswordLength.
const PasswordTooLongMessage = "Password must be at most 72 bytes long"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User represents a registered account.
type User struct {
	ID               uuid.UUID        `json:"id"`
	Email            string           `json:"email"`
	Name             string           `json:"name"`
	Password         string           `json:"-"` // Plaintext, only set between input parsing and hashing
	HashedPassword   string           `json:"-"`
	SubscriptionType SubscriptionType `json:"subscription_type"`
	IsActive         bool             `json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// NewUser creates an active free-tier user from registration input.
// The email is normalized before validation. The caller must hash the
// password before the user is stored.
func NewUser(email, password, name string, now time.Time) (*User, error) {
	user := &User{
		ID:               uuid.New(),
		Email:            NormalizeEmail(email),
		Name:             strings.TrimSpace(name),
		Password:         password,
		SubscriptionType: SubscriptionFree,
		IsActive:         true,
		CreatedAt:        now.UTC(),
		UpdatedAt:        now.UTC(),
	}

	if user.Email == "" || user.Password == "" {
		return nil, NewValidationError("email", "Email and password are required", ErrValidation)
	}
	if err := ValidateEmail(user.Email); err != nil {
		return nil, err
	}
	if err := ValidatePasswordStrength(user.Password); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks the fields required before persisting a user.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "user ID cannot be empty", ErrValidation)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "hashed password cannot be empty", ErrInvalidPassword)
	}
	if !u.SubscriptionType.Valid() {
		return NewValidationError("subscription_type", "unknown subscription type", ErrValidation)
	}
	return validateText("name", u.Name)
}

// IsPremium reports whether the user is on the premium tier.
func (u *User) IsPremium() bool {
	return u.SubscriptionType == SubscriptionPremium
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already-normalized email against the accepted pattern.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "Email is required", ErrInvalidEmail)
	}
	if !emailPattern.MatchString(email) {
		return NewValidationError("email", "Invalid email format", ErrInvalidEmail)
	}
	return nil
}

// ValidatePasswordLength rejects passwords longer than MaxPasswordLength bytes.
func ValidatePasswordLength(field, password string) error {
	if len(password) > MaxPasswordLength {
		return NewValidationError(field, PasswordTooLongMessage, ErrInvalidPassword)
	}
	return nil
}

// ValidatePasswordStrength enforces the registration policy: at least
// MinPasswordLength characters with a lowercase letter, an uppercase letter
// and a digit, and no more than MaxPasswordLength bytes.
func ValidatePasswordStrength(password string) error {
	if err := ValidatePasswordLength("password", password); err != nil {
		return err
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}

	if len(password) < MinPasswordLength || !lower || !upper || !digit {
		return NewValidationError(
			"password",
			"Password must be at least 8 characters with uppercase, lowercase, and number",
			ErrInvalidPassword,
		)
	}
	return nil
}
