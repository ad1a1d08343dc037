package common

import (
	"errors"
	"fmt"
)

// Kinds. Every error a service returns on purpose wraps exactly one of these,
// so transports can map them with errors.Is.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("conflict")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
)

// Auth errors (invalid, malformed or expired token).
var (
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrorUnauthorized)
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrorUnauthorized)
)

// User errors.
var (
	ErrUsernameRequired = fmt.Errorf("%w: username is required", ErrValidation)
	ErrPasswordRequired = fmt.Errorf("%w: password is required", ErrValidation)
	ErrUsernameTaken    = fmt.Errorf("%w: username is taken", ErrConflict)
	ErrUserNotFound     = fmt.Errorf("%w: user", ErrorNotFound)
)

// Note errors.
var (
	ErrTextRequired     = fmt.Errorf("%w: text is required", ErrValidation)
	ErrUserIDRequired   = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrInvalidImage     = fmt.Errorf("%w: invalid image", ErrValidation)
	ErrNoteNotFound     = fmt.Errorf("%w: note", ErrorNotFound)
	ErrNoteAccessDenied = fmt.Errorf("%w: no access to note", ErrForbidden)
)
