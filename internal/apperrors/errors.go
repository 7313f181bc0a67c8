package apperrors

import (
	"errors"
	"fmt"
)

// AppError represents an application error with additional context
type AppError struct {
	Kind    string // Error kind for callers
	Message string // Human-readable message
	Err     error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Error kinds
const (
	// KindInvalidCredentials is a 401 on a login attempt: the caller's
	// email/password pair was wrong. Stored credentials are untouched.
	KindInvalidCredentials = "INVALID_CREDENTIALS"
	// KindSessionExpired is a 401 on any authenticated call: the stored
	// credential is no longer accepted and has been cleared.
	KindSessionExpired = "SESSION_EXPIRED"
	// KindUpstream is a transport failure or non-2xx from the glowdesk API.
	KindUpstream = "UPSTREAM_ERROR"
	// KindDecode is a response body that could not be interpreted.
	KindDecode = "DECODE_ERROR"
	// KindNotFound is a missing resource.
	KindNotFound = "NOT_FOUND"
	// KindTimeout is a bounded operation that exhausted its attempts.
	KindTimeout = "TIMEOUT"
)

// New creates a new AppError
func New(kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// InvalidCredentials creates an invalid-credentials error
func InvalidCredentials(message string) *AppError {
	return &AppError{
		Kind:    KindInvalidCredentials,
		Message: message,
	}
}

// SessionExpired creates a session-expired error
func SessionExpired(message string) *AppError {
	return &AppError{
		Kind:    KindSessionExpired,
		Message: message,
	}
}

// Upstream creates an upstream error
func Upstream(message string, err error) *AppError {
	return &AppError{
		Kind:    KindUpstream,
		Message: message,
		Err:     err,
	}
}

// Decode creates a decode error
func Decode(message string, err error) *AppError {
	return &AppError{
		Kind:    KindDecode,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// Timeout creates a timeout error
func Timeout(message string) *AppError {
	return &AppError{
		Kind:    KindTimeout,
		Message: message,
	}
}

// IsKind reports whether err is (or wraps) an AppError of the given kind
func IsKind(err error, kind string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
