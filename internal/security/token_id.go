package security

import (
	"crypto/rand"
	"fmt"
	"strings"
)

const (
	tokenIDLength   = 24
	tokenIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"
)

// NewTokenID returns the jti for an issued bearer token.
func NewTokenID() (string, error) {
	return drawFromAlphabet(tokenIDLength, tokenIDAlphabet)
}

// ValidTokenID reports whether id could have come from NewTokenID.
func ValidTokenID(id string) bool {
	if len(id) != tokenIDLength {
		return false
	}
	for _, char := range id {
		if !strings.ContainsRune(tokenIDAlphabet, char) {
			return false
		}
	}
	return true
}

// drawFromAlphabet rejects random bytes above the largest multiple of the
// alphabet size, so every character is equally likely.
func drawFromAlphabet(length int, alphabet string) (string, error) {
	if length <= 0 || len(alphabet) == 0 || len(alphabet) > 256 {
		return "", fmt.Errorf("draw %d chars from %d-char alphabet", length, len(alphabet))
	}
	limit := 256 - 256%len(alphabet)

	out := make([]byte, 0, length)
	buffer := make([]byte, length*2)
	for len(out) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, value := range buffer {
			if int(value) >= limit {
				continue
			}
			out = append(out, alphabet[int(value)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
