package tmdb

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error kind sentinels. Every *Error matches exactly one of them with errors.Is.
var (
	// ErrInvalidRequest indicates the request could not be constructed
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoData indicates an empty or unreadable response body
	ErrNoData = errors.New("no data")
	// ErrDecoding indicates a body that does not match the expected schema
	ErrDecoding = errors.New("decoding error")
	// ErrNetwork indicates a transport failure or an unsuccessful HTTP status
	ErrNetwork = errors.New("network error")
)

// ErrInvalidConfig indicates invalid client configuration
var ErrInvalidConfig = errors.New("invalid tmdb configuration")

// ErrorKind classifies catalog failures
type ErrorKind int

const (
	// KindUnknown is reported for errors that did not originate in this package
	KindUnknown ErrorKind = iota
	// KindInvalidRequest see ErrInvalidRequest
	KindInvalidRequest
	// KindNoData see ErrNoData
	KindNoData
	// KindDecoding see ErrDecoding
	KindDecoding
	// KindNetwork see ErrNetwork
	KindNetwork
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindNoData:
		return "no data"
	case KindDecoding:
		return "decoding error"
	case KindNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindInvalidRequest:
		return ErrInvalidRequest
	case KindNoData:
		return ErrNoData
	case KindDecoding:
		return ErrDecoding
	case KindNetwork:
		return ErrNetwork
	default:
		return nil
	}
}

// Error is returned by every Client operation
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tmdb %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("tmdb %s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf classifies err. Errors not produced by this package yield KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// APIError represents a non-2xx response from TMDB
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb API error: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// newAPIError builds an APIError from TMDB's {status_code, status_message} body
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	var payload struct {
		StatusCode    int    `json:"status_code"`
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.StatusMessage != "" {
		apiErr.Code = payload.StatusCode
		apiErr.Message = payload.StatusMessage
		return apiErr
	}

	apiErr.Message = http.StatusText(statusCode)
	return apiErr
}
