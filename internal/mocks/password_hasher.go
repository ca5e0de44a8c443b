package mocks

import (
	"errors"
	"strings"
)

// ErrPasswordMismatch is returned by MockPasswordHasher.Compare by default.
var ErrPasswordMismatch = errors.New("password mismatch")

const mockHashPrefix = "hashed:"

// MockPasswordHasher is a fast reversible stand-in for bcrypt.
type MockPasswordHasher struct {
	HashFn    func(password string) (string, error)
	CompareFn func(hashedPassword, password string) error
}

// Hash returns "hashed:" + password unless HashFn is set.
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	return MockHash(password), nil
}

// Compare succeeds when hashedPassword equals MockHash(password).
func (m *MockPasswordHasher) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if !strings.HasPrefix(hashedPassword, mockHashPrefix) || hashedPassword != MockHash(password) {
		return ErrPasswordMismatch
	}
	return nil
}

// MockHash is the hash MockPasswordHasher produces for password.
func MockHash(password string) string {
	return mockHashPrefix + password
}
