package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateState returns a URL-safe random string used as the OAuth
// anti-CSRF state value.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
