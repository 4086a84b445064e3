package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrCoinNotFound is returned when the upstream API does not know the coin id.
	ErrCoinNotFound = errors.New("coin not found")
	// ErrUpstream is returned for any other non-2xx upstream answer.
	ErrUpstream = errors.New("upstream api error")
	// ErrInvalidPayload is returned when a response does not match its schema.
	ErrInvalidPayload = errors.New("invalid payload")
)

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrCoinNotFound
	}
	return ErrUpstream
}
