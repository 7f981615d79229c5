package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/bayegaspard/datasite/internal/model"
)

const bcryptCost = 12

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// validatePassword enforces the password policy: at least 8 characters with
// an uppercase letter, a lowercase letter and a digit.
func validatePassword(password string) error {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if len(password) < 8 || !upper || !lower || !digit {
		return &model.PolicyError{
			Field: "password",
			Msg:   "password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number",
		}
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &model.PolicyError{Field: "email", Msg: fmt.Sprintf("%q is not a valid email address", email)}
	}
	return nil
}

const (
	tokenLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenDigits  = "0123456789"
)

// generateResetToken draws a random token from the configured alphabet using
// crypto/rand.
func generateResetToken(cfg ResetTokenConfig) (string, error) {
	var alphabet string
	if cfg.ASCII {
		alphabet += tokenLetters
	}
	if cfg.Numbers {
		alphabet += tokenDigits
	}
	if alphabet == "" || cfg.Length <= 0 {
		return "", fmt.Errorf("reset token alphabet or length is not configured")
	}

	token := make([]byte, cfg.Length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range token {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random token character: %w", err)
		}
		token[i] = alphabet[n.Int64()]
	}
	return string(token), nil
}
