package api

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/alexanderramin/shiftdash/internal/contract"
)

var (
	// ErrNotAuthenticated indicates no session token is available. It is
	// returned before any request is sent.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnavailable indicates the backend could not be reached.
	ErrUnavailable = errors.New("allowance api unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("allowance api request timed out")

	// ErrStatus indicates the backend answered with a non-success status.
	ErrStatus = errors.New("unexpected status")

	// ErrDecode indicates the response body did not have the expected shape.
	ErrDecode = errors.New("malformed response")
)

// StatusError is a non-2xx response. Detail is set when the body carried a
// structured {"detail": ...} object.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
	Detail     contract.UploadErrorDetail
	Structured bool
}

// DecodeError is a response body that did not have the expected shape. It
// matches ErrDecode and unwraps to the decoder's error.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, ErrDecode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

func newStatusError(endpoint string, code int, body []byte) *StatusError {
	e := &StatusError{Endpoint: endpoint, StatusCode: code, Body: body}
	e.Detail, e.Structured = contract.DecodeUploadError(body)
	return e
}

func (e *StatusError) Error() string {
	if e.Structured && e.Detail.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode), e.Detail.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Endpoint, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is matches ErrStatus for every status error and ErrNotAuthenticated for
// 401 responses.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrStatus:
		return true
	case ErrNotAuthenticated:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// Message is the text to show the user for this error.
func (e *StatusError) Message() string {
	if e.Structured && e.Detail.Message != "" {
		return e.Detail.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	return !errors.Is(err, ErrDecode)
}

func errorCode(err error) string {
	var se *StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP_%d", se.StatusCode)
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrDecode):
		return "DECODE"
	case errors.Is(err, ErrNotAuthenticated):
		return "UNAUTHENTICATED"
	default:
		return "UNKNOWN"
	}
}
