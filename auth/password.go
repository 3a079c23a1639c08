package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor of new password hashes.
var BcryptCost = 12

const passwordSpecials = "!@#$%^&*"

// PasswordPolicy describes StrongPassword to API clients.
const PasswordPolicy = "Password must be at least 8 characters and contain A-Z, a-z, 0-9 and one of !@#$%^&*"

func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func VerifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// StrongPassword requires at least 8 characters with a lower case letter,
// an upper case letter, a digit and a special character.
func StrongPassword(p string) bool {
	if utf8.RuneCountInString(p) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case unicode.IsDigit(r) && r < utf8.RuneSelf:
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}
