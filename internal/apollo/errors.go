package apollo

import (
	"errors"
	"fmt"
)

// Error kinds the client maps provider status codes onto. Callers classify
// with errors.Is.
var (
	ErrUnauthorized = errors.New("provider rejected the API key")
	ErrForbidden    = errors.New("provider plan does not allow this operation")
	ErrNotFound     = errors.New("person not found at provider")
	ErrRateLimited  = errors.New("provider rate limit exceeded")
	ErrServer       = errors.New("provider server error")
)

// APIError carries the provider's HTTP status alongside the mapped kind.
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider returned %d", e.StatusCode)
}

// Unwrap exposes the mapped kind for errors.Is.
func (e *APIError) Unwrap() error {
	return e.kind
}

// NewAPIError maps an HTTP status onto the matching error kind.
func NewAPIError(status int, message string) *APIError {
	err := &APIError{StatusCode: status, Message: message}
	switch {
	case status == 401:
		err.kind = ErrUnauthorized
	case status == 403:
		err.kind = ErrForbidden
	case status == 404:
		err.kind = ErrNotFound
	case status == 429:
		err.kind = ErrRateLimited
	case status >= 500:
		err.kind = ErrServer
	}
	return err
}

// Chargeable reports whether a failed provider call still consumes credits.
// Server-side failures (5xx) are charged because the provider may have done
// work; client-side failures (4xx) are not.
func Chargeable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
