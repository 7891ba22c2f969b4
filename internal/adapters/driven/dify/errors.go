package dify

import (
	"errors"
	"fmt"
)

// TransportError wraps a network-level failure (connection refused, DNS,
// TLS). The request never produced an HTTP status.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dify: transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response after any applicable retries.
type APIError struct {
	Status int
	Body   string
	URL    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dify: API error %d at %s: %s", e.Status, e.URL, e.Body)
}

// AuthError indicates missing or rejected console credentials.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("dify: auth error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("dify: auth error: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// IsServerError checks if the error is a 5xx response.
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 500
}

// IsAuthError checks if the error is an authentication failure.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransportError checks if the error is a network-level failure.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
