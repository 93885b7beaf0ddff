package services

import (
	"unicode"

	"github.com/you/accountsvc/domain"
)

const minPasswordLength = 8

// ValidatePassword checks the password complexity policy and reports every
// violated rule together, not just the first.
func ValidatePassword(password string) error {
	var violations []string

	if len(password) < minPasswordLength {
		violations = append(violations, "must be at least 8 characters")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		violations = append(violations, "must contain an uppercase letter")
	}
	if !hasLower {
		violations = append(violations, "must contain a lowercase letter")
	}
	if !hasDigit {
		violations = append(violations, "must contain a digit")
	}

	if len(violations) > 0 {
		return domain.ValidationError(violations)
	}
	return nil
}
