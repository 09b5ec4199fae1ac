// Package errors provides unified error handling for the publish engine
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code represents an error code for categorization
type Code string

// PublishError represents a unified error with code, message, and context
type PublishError struct {
	Code      Code           `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Platform  string         `json:"platform,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Cause     error          `json:"-"`
}

// Error implements the error interface
func (e *PublishError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error by code
func (e *PublishError) Is(target error) bool {
	if pubErr, ok := target.(*PublishError); ok {
		return e.Code == pubErr.Code
	}
	return false
}

// WithDetails adds details to the error
func (e *PublishError) WithDetails(details string) *PublishError {
	e.Details = details
	return e
}

// WithPlatform tags the error with the platform it occurred on
func (e *PublishError) WithPlatform(platform string) *PublishError {
	e.Platform = platform
	return e
}

// WithContext adds context information to the error
func (e *PublishError) WithContext(key string, value any) *PublishError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithCause sets the underlying cause error
func (e *PublishError) WithCause(cause error) *PublishError {
	e.Cause = cause
	return e
}

// IsRetryable returns true if the error indicates a transient condition
// that another attempt may succeed on.
func (e *PublishError) IsRetryable() bool {
	switch e.Code {
	case ErrTimeout, ErrConnection, ErrNavigationFailed, ErrTransportProtocol:
		return true
	default:
		return false
	}
}

// IsFatal returns true if the error should abort the remaining automated
// strategies in a chain (invalid or expired session material).
func (e *PublishError) IsFatal() bool {
	return e.Code == ErrLoginRequired
}

// New creates a new PublishError
func New(code Code, message string) *PublishError {
	return &PublishError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a PublishError
func Wrap(cause error, code Code, message string) *PublishError {
	return &PublishError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

// AsPublishError extracts a *PublishError from err's chain, or nil.
func AsPublishError(err error) *PublishError {
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr
	}
	return nil
}

// transientMarkers are substrings that identify a transient failure when an
// error carries no code. They mirror the failure text produced by browser
// automation and plain HTTP transports.
var transientMarkers = []string{
	"timeout",
	"timed out",
	"connection reset",
	"connection refused",
	"network",
	"failed to fetch",
	"navigation",
}

// IsTransient classifies an arbitrary error as retryable. Coded errors are
// classified by code, everything else by matching the transient markers
// against the error string.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if pubErr := AsPublishError(err); pubErr != nil {
		return pubErr.IsRetryable()
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsFatal reports whether err carries the login-required signal.
func IsFatal(err error) bool {
	if pubErr := AsPublishError(err); pubErr != nil {
		return pubErr.IsFatal()
	}
	return false
}

// IsDuplicate reports whether err is the duplicate-publish signal.
func IsDuplicate(err error) bool {
	if pubErr := AsPublishError(err); pubErr != nil {
		return pubErr.Code == ErrDuplicatePublish
	}
	return false
}
