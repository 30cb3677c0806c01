package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by 401 and 403 responses and by requests
	// made with an expired token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by 404 responses.
	ErrNotFound = errors.New("not found")
	// ErrTokenExpired is returned without contacting the server when the
	// stored token's exp claim has passed.
	ErrTokenExpired = fmt.Errorf("token expired: %w", ErrUnauthorized)
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Is maps the status to ErrUnauthorized or ErrNotFound.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}
