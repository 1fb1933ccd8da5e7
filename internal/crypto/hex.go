package crypto

import (
	"encoding/hex"
	"strings"
)

// ToHex renders bytes as a lowercase hexadecimal string.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex parses a hexadecimal string, ignoring ASCII whitespace so
// that dump files with line breaks and spacing parse as-is. Both nibble
// cases are accepted; anything else is an error.
func FromHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
