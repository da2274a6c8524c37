package email

import (
	"regexp"
	"strings"
)

// MaxLength is the longest address accepted (RFC 5321 path limit).
const MaxLength = 254

var addressPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Normalize trims and lower-cases an address.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Valid reports whether address has the local@domain.tld shape and fits MaxLength.
func Valid(address string) bool {
	if address == "" || len(address) > MaxLength {
		return false
	}
	return addressPattern.MatchString(address)
}
