package service

import (
	"errors"
	"fmt"
)

// Errores de sesión y autenticación. Los handlers los mapean a códigos HTTP
// con errors.Is / errors.As.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountLocked       = errors.New("account temporarily locked")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrAccountDeactivated  = errors.New("account deactivated")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrVerificationInvalid = errors.New("verification code invalid")
	ErrVerificationExpired = errors.New("verification code expired")
	ErrEmailSendFailure    = errors.New("email send failed")
	ErrRateLimited         = errors.New("rate limited")
)

// ValidationError nombra la primera regla de entrada violada.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// DuplicateFieldError nombra el campo único que colisionó.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}
