package security

import (
	"crypto/rand"
	"encoding/base64"
)

// NewOpaqueToken returns 256 random bits, base64url encoded. Used for emailed reset links.
func NewOpaqueToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewID returns a random identifier for token jti claims and OAuth nonces.
func NewID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
