package auth

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rpupo63/blog-platform-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	specialCharacters = `!@#$%^&*(),.?":{}|<>`
)

// ValidatePassword checks the strength rules in order and reports the first one that fails.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return errs.NewWeakPasswordError("Password must be at least 6 characters long.")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case unicode.IsDigit(c):
			hasDigit = true
		case strings.ContainsRune(specialCharacters, c):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return errs.NewWeakPasswordError("Password must contain at least one uppercase letter.")
	case !hasLower:
		return errs.NewWeakPasswordError("Password must contain at least one lowercase letter.")
	case !hasDigit:
		return errs.NewWeakPasswordError("Password must contain at least one digit.")
	case !hasSpecial:
		return errs.NewWeakPasswordError("Password must contain at least one special character.")
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.NewInternalErrorWithCause("failed to hash password", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
