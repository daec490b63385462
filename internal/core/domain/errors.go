package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCredentialCreation = errors.New("failed to create user")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTooManyAttempts    = errors.New("too many sign-in attempts")
)

// ErrInvalidRole is returned for any role outside the enumerated set.
var ErrInvalidRole error = &ValidationError{Msg: "invalid role"}

// ValidationError carries a client-facing message for malformed input.
// errors.Is(err, ErrValidation) holds for every ValidationError.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a ValidationError with msg.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}
