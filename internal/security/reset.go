package security

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const DevResetPrefix = "dev-reset-token-"

// MakeDevResetToken builds the predictable development reset token for a user id.
// It grants a password reset to whoever holds it and must only be enabled outside production.
func MakeDevResetToken(userID string) string {
	return DevResetPrefix + userID
}

// ParseDevResetToken strips the prefix. ok is false when the prefix is missing.
func ParseDevResetToken(tok string) (userID string, ok bool) {
	if !strings.HasPrefix(tok, DevResetPrefix) {
		return "", false
	}
	return strings.TrimPrefix(tok, DevResetPrefix), true
}

// HashToken is how opaque tokens are stored at rest.
func HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
