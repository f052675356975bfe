package service

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Reglas de lockout: 5 intentos fallidos bloquean la cuenta 15 minutos.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 // minutos
)

// HashPassword deriva un hash bcrypt con costo fijo. Cada llamada produce un
// digest distinto para la misma entrada.
func HashPassword(plaintext string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword compara un plaintext contra su digest.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// ValidatePasswordStrength exige mínimo 8 caracteres con mayúscula, minúscula
// y dígito. Devuelve la primera regla violada.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return &ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
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
	if !upper {
		return &ValidationError{Field: "password", Reason: "must contain an uppercase letter"}
	}
	if !lower {
		return &ValidationError{Field: "password", Reason: "must contain a lowercase letter"}
	}
	if !digit {
		return &ValidationError{Field: "password", Reason: "must contain a digit"}
	}
	return nil
}
