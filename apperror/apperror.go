// Package apperror defines the error categories surfaced by the HTTP API and
// their status codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an application error.
type ErrorType int

const (
	// InternalError covers store and network failures. Its message never leaves the server.
	InternalError ErrorType = iota
	// UnauthenticatedError is a missing credential.
	UnauthenticatedError
	// ForbiddenError is a credential that failed verification.
	ForbiddenError
	// ValidationError is malformed or missing input.
	ValidationError
	// NotFoundError is a referenced entity that does not exist.
	NotFoundError
	// ConflictError is a state conflict such as an existing like or follow edge.
	ConflictError
)

// AppError carries a public message and an optional underlying cause.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches sentinel AppErrors by type and message so wrapped copies still compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.Message == e.Message
}

// StatusCode returns the HTTP status for the error type.
// Conflicts are reported as 400, which is what existing clients of this API expect.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case UnauthenticatedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case ValidationError, ConflictError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the message safe to send to clients.
func (e *AppError) PublicMessage() string {
	if e.Type == InternalError {
		return InternalMessage
	}
	return e.Message
}

// InternalMessage is the only message clients see for internal failures.
const InternalMessage = "Server error"

func New(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

func NewUnauthenticated(message string, err error) *AppError {
	return New(UnauthenticatedError, message, err)
}

func NewForbidden(message string, err error) *AppError {
	return New(ForbiddenError, message, err)
}

func NewValidation(message string, err error) *AppError {
	return New(ValidationError, message, err)
}

func NewNotFound(message string, err error) *AppError {
	return New(NotFoundError, message, err)
}

func NewConflict(message string, err error) *AppError {
	return New(ConflictError, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(InternalError, message, err)
}

// Sentinels returned by the services. Compare with errors.Is.
var (
	ErrUserExists       = NewConflict("User already exists", nil)
	ErrUserNotFound     = NewNotFound("User not found", nil)
	ErrInvalidPassword  = NewUnauthenticated("Invalid password", nil)
	ErrPostNotFound     = NewNotFound("Post not found", nil)
	ErrAlreadyLiked     = NewConflict("You have already liked this post", nil)
	ErrAlreadyFollowing = NewConflict("You are already following this user", nil)
	ErrUnauthenticated  = NewUnauthenticated("Unauthorized", nil)
)

// FromError extracts the first AppError in err's chain.
func FromError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Normalize converts any error into an AppError, treating unknown errors as internal.
func Normalize(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := FromError(err); ok {
		return appErr
	}
	return NewInternal(InternalMessage, err)
}

func IsType(err error, t ErrorType) bool {
	appErr, ok := FromError(err)
	return ok && appErr.Type == t
}
