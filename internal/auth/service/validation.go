package service

import (
	"regexp"
	"unicode"

	"github.com/inklet-app/inklet/backend/internal/common/constants"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func validateCredentials(username, password string) error {
	if len(username) < constants.UsernameMinLength || len(username) > constants.UsernameMaxLength {
		return &ValidationError{Err: ErrValidationUsername}
	}

	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return &ValidationError{Err: ErrValidationPassword}
	}

	if !isValidUsername(username) {
		return &ValidationError{Err: ErrValidationUsername}
	}

	if !isValidPassword(password) {
		return &ValidationError{Err: ErrValidationPassword}
	}

	return nil
}

func isValidUsername(value string) bool {
	if !usernameRegex.MatchString(value) {
		return false
	}

	if !unicode.IsLetter(rune(value[0])) && !unicode.IsDigit(rune(value[0])) {
		return false
	}

	if !unicode.IsLetter(rune(value[len(value)-1])) && !unicode.IsDigit(rune(value[len(value)-1])) {
		return false
	}

	return true
}

func isValidPassword(value string) bool {
	hasLetter := false
	hasDigit := false

	for _, r := range value {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if hasLetter && hasDigit {
			return true
		}
	}

	return false
}
