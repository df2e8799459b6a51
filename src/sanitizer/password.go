package sanitizer

import (
	"fmt"
	"unicode"
)

// MinPasswordLength is the shortest password ValidatePassword accepts.
const MinPasswordLength = 8

// ValidatePassword checks password strength and reports every failed rule.
func ValidatePassword(password string) MultiValidationResult {
	var upper, lower, digit bool
	n := 0
	for _, r := range password {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	errs := make([]string, 0, 4)
	if n < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	if !upper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !lower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !digit {
		errs = append(errs, "password must contain at least one number")
	}

	return MultiValidationResult{Valid: len(errs) == 0, Errors: errs}
}
