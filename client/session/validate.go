package session

import (
	"regexp"
	"strings"
	"unicode"
)

// emailPattern mirrors the sign-up form's email rule: a 1-256 char local
// part, then one or more dot-separated domain labels.
var emailPattern = regexp.MustCompile(
	`^[a-zA-Z0-9+._%\-]{1,256}` +
		`@` +
		`[a-zA-Z0-9][a-zA-Z0-9\-]{0,64}` +
		`(\.[a-zA-Z0-9][a-zA-Z0-9\-]{0,25})+$`)

func ValidateEmail(email string) bool {
	return strings.TrimSpace(email) != "" && emailPattern.MatchString(email)
}

// ValidatePassword requires at least 8 characters, 1 uppercase letter & 1 digit.
func ValidatePassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasDigit bool
	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
	}

	return hasUpper && hasDigit
}

// ValidatePhone requires at least 10 characters, digits only.
func ValidatePhone(phone string) bool {
	if len(phone) < 10 {
		return false
	}

	for _, char := range phone {
		if !unicode.IsDigit(char) {
			return false
		}
	}

	return true
}

type StrengthLevel string

const (
	WEAK_PASSWORD   = StrengthLevel("weak")
	MEDIUM_PASSWORD = StrengthLevel("medium")
	STRONG_PASSWORD = StrengthLevel("strong")
)

// PasswordStrength scores a password between 0 and 1. The score is
// informational only - it never gates submission.
func PasswordStrength(password string) float64 {
	score := float64(len(password)) * 0.05
	if score > 0.4 {
		score = 0.4
	}

	var hasUpper, hasDigit, hasSymbol bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsDigit(char):
			hasDigit = true
		case !unicode.IsLetter(char):
			hasSymbol = true
		}
	}

	if hasUpper {
		score += 0.2
	}
	if hasDigit {
		score += 0.2
	}
	if hasSymbol {
		score += 0.2
	}

	return score
}

func StrengthLevelOf(score float64) StrengthLevel {
	switch {
	case score >= 0.8:
		return STRONG_PASSWORD
	case score >= 0.5:
		return MEDIUM_PASSWORD
	default:
		return WEAK_PASSWORD
	}
}
