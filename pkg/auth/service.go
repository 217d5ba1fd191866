package auth

import (
	"errors"
)

var (
	ErrMissingServiceToken = errors.New("service token not provided")
	ErrInvalidServiceToken = errors.New("invalid service token")
)

// ValidateServiceToken validates a shared-secret token used by internal
// triggers (e.g. the scheduled post dispatch endpoint).
func ValidateServiceToken(token string, expectedToken string) error {
	if token == "" {
		return ErrMissingServiceToken
	}

	if token != expectedToken {
		return ErrInvalidServiceToken
	}

	return nil
}
