package domain

import (
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lower-cases an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether email is a bare addr-spec such as a@x.com.
// Display names and angle brackets are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndexByte(email, '@')
	return at > 0 && strings.Contains(email[at+1:], ".")
}

// IsValidMobile reports whether mobile is exactly ten ASCII digits.
func IsValidMobile(mobile string) bool {
	if len(mobile) != 10 {
		return false
	}
	for i := 0; i < len(mobile); i++ {
		if mobile[i] < '0' || mobile[i] > '9' {
			return false
		}
	}
	return true
}
