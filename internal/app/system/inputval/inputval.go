// internal/app/system/inputval/inputval.go
package inputval

import (
	"net/mail"
	"strings"
)

// Passwords are hashed with bcrypt, which ignores bytes past 72.
const (
	MinPasswordLen = 8
	MaxPasswordLen = 72
)

func dotsOK(part string) bool {
	return part != "" &&
		!strings.HasPrefix(part, ".") &&
		!strings.HasSuffix(part, ".") &&
		!strings.Contains(part, "..")
}

// IsValidEmail accepts a bare addr-spec (no display name). Single-label
// domains such as "localhost" are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>\"(),;:") || strings.Count(s, "@") != 1 {
		return false
	}
	at := strings.IndexByte(s, '@')
	if !dotsOK(s[:at]) || !dotsOK(s[at+1:]) {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

// IsValidPassword reports whether pw fits the length policy.
func IsValidPassword(pw string) bool {
	return len(pw) >= MinPasswordLen && len(pw) <= MaxPasswordLen
}
