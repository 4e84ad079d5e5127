package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"encoding/base64"
)

// NewAPIKey returns a fresh URL-safe credential with 256 bits of randomness.
func NewAPIKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// SafeEqual compares two secrets in constant time.
func SafeEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
