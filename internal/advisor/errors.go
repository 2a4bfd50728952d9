package advisor

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of error that occurred
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, DNS, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates the request or its context deadline expired
	ErrTypeTimeout
	// ErrTypeAuth indicates the API key was missing or rejected
	ErrTypeAuth
	// ErrTypeHTTP indicates a non-200 status code other than auth failures
	ErrTypeHTTP
	// ErrTypeParse indicates a malformed response body
	ErrTypeParse
	// ErrTypeEmpty indicates a well-formed response that carried no text
	ErrTypeEmpty
	// ErrTypeConfig indicates the advisor is not configured (no key, bad endpoint)
	ErrTypeConfig
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeEmpty:
		return "Empty Response"
	case ErrTypeConfig:
		return "Configuration Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// AdviceError represents a failed advice request
type AdviceError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *AdviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *AdviceError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError analyzes a transport error and returns a typed error
func ClassifyNetworkError(err error) *AdviceError {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return &AdviceError{Type: ErrTypeTimeout, Message: "Request timed out", Err: err}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &AdviceError{
			Type:    ErrTypeNetwork,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &AdviceError{Type: ErrTypeNetwork, Message: "Connection refused", Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != err {
		return ClassifyNetworkError(urlErr.Err)
	}

	return &AdviceError{Type: ErrTypeNetwork, Message: "Network error occurred", Err: err}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *AdviceError {
	classified := ClassifyNetworkError(err)
	if classified == nil {
		return &AdviceError{Type: ErrTypeNetwork, Message: message}
	}
	classified.Message = message
	return classified
}

// NewAuthError creates an authentication error
func NewAuthError(statusCode int, message string) *AdviceError {
	if statusCode == 0 {
		statusCode = http.StatusUnauthorized
	}
	return &AdviceError{Type: ErrTypeAuth, Message: message, StatusCode: statusCode}
}

// NewHTTPError creates an HTTP-level error
func NewHTTPError(statusCode int, message string) *AdviceError {
	return &AdviceError{Type: ErrTypeHTTP, Message: message, StatusCode: statusCode}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *AdviceError {
	return &AdviceError{Type: ErrTypeParse, Message: message, Err: err}
}

// NewEmptyError creates an error for a response without any text
func NewEmptyError(message string) *AdviceError {
	return &AdviceError{Type: ErrTypeEmpty, Message: message}
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *AdviceError {
	return &AdviceError{Type: ErrTypeConfig, Message: message}
}

func errorType(err error) (ErrorType, bool) {
	var adviceErr *AdviceError
	if errors.As(err, &adviceErr) {
		return adviceErr.Type, true
	}
	return 0, false
}

// IsNetworkError checks if an error is a network error (including timeout)
func IsNetworkError(err error) bool {
	t, ok := errorType(err)
	return ok && (t == ErrTypeNetwork || t == ErrTypeTimeout)
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeAuth
}

// IsHTTPError checks if an error is an HTTP error
func IsHTTPError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeHTTP
}

// IsParseError checks if an error is a parse error
func IsParseError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeParse
}

// IsEmptyError checks if an error reports an empty response
func IsEmptyError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeEmpty
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	t, ok := errorType(err)
	return ok && t == ErrTypeConfig
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var adviceErr *AdviceError
	if !errors.As(err, &adviceErr) {
		return err.Error()
	}

	switch adviceErr.Type {
	case ErrTypeTimeout:
		return "Assistant not responding (timeout)"
	case ErrTypeNetwork:
		return "Network error - check connection"
	case ErrTypeAuth:
		return "Assistant rejected the API key"
	case ErrTypeHTTP:
		return fmt.Sprintf("Assistant error (HTTP %d)", adviceErr.StatusCode)
	case ErrTypeParse:
		return "Failed to parse assistant response"
	case ErrTypeEmpty:
		return "Assistant returned no text"
	case ErrTypeConfig:
		return adviceErr.Message
	default:
		return adviceErr.Message
	}
}
