package service

import (
	"regexp"
	"strings"
)

// emailPattern accepts local@domain.tld: one or more non-space/non-@
// characters, an @, more of the same, a dot, more of the same.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// passwordSymbols is the full set of special characters a password may
// contain. Anything outside the letter/digit/symbol alphabet makes the
// password invalid; this is policy, not an oversight.
const passwordSymbols = "@$!%*?&"

// IsValidEmail reports whether email has a plausible address shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword reports whether password satisfies the policy: at
// least 8 characters, at least one uppercase letter, one lowercase
// letter, one digit and one symbol from passwordSymbols, and no
// characters outside those classes.
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, c):
			hasSymbol = true
		default:
			return false
		}
	}

	return hasUpper && hasLower && hasDigit && hasSymbol
}
