package security

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen   = 6
	// MaxPasswordBytes is the most bcrypt will look at.
	MaxPasswordBytes = 72
	bcryptCost       = 12
)

// PasswordTooShort counts characters, not bytes.
func PasswordTooShort(pw string) bool { return utf8.RuneCountInString(pw) < MinPasswordLen }

func PasswordTooLong(pw string) bool { return len(pw) > MaxPasswordBytes }

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
