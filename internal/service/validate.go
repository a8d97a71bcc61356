package service

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrValidation tags user-input validation failures on the auth
// surface; the message carries the reason.
var ErrValidation = errors.New("validation failed")

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func ValidateUsername(username string) error {
	if len(username) < 3 {
		return fmt.Errorf("%w: username must be at least 3 characters long", ErrValidation)
	}
	if len(username) > 20 {
		return fmt.Errorf("%w: username must be less than 20 characters", ErrValidation)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username can only contain letters, numbers, and underscores", ErrValidation)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters long", ErrValidation)
	}
	if len(password) > 128 {
		return fmt.Errorf("%w: password must be less than 128 characters", ErrValidation)
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}
