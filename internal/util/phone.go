package util

import (
	"regexp"
	"strings"
)

// MinPhoneDigits is the shortest number accepted by ValidPhone.
const MinPhoneDigits = 10

var phoneChars = regexp.MustCompile(`^[0-9+\-\s()]+$`)

// ValidPhone accepts digits, '+', '-', spaces and parentheses with at least
// MinPhoneDigits digits, e.g. "+91 98765 43210" or "(022) 4000-1234".
func ValidPhone(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" || !phoneChars.MatchString(s) {
		return false
	}
	return PhoneDigits(s) >= MinPhoneDigits
}

// PhoneDigits counts the digits in raw.
func PhoneDigits(raw string) int {
	n := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
