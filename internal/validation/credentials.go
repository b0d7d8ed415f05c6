// Package validation holds the register form rules.
package validation

import (
	"errors"
	"fmt"
)

// MaxPasswordBytes is bcrypt's input limit; longer passwords cannot be hashed.
const MaxPasswordBytes = 72

var (
	ErrCredentialsRequired = errors.New("Username and password are required.")
	ErrPasswordMismatch    = errors.New("Passwords do not match.")
)

// ValidateRegistration checks a trimmed username and the submitted passwords.
// Usernames are otherwise free-form; profile URLs escape them.
func ValidateRegistration(username, password, confirm string) error {
	if username == "" || password == "" {
		return ErrCredentialsRequired
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("Password must be at most %d bytes.", MaxPasswordBytes)
	}
	return nil
}
