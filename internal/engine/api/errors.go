package api

import (
	"errors"
	"fmt"
)

// RateLimitError indicates the service asked us to slow down.
type RateLimitError struct {
	StatusCode int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (status %d)", e.StatusCode)
}

// TransportError covers everything that prevents a well-formed answer from
// arriving: network failures, non-JSON bodies, bare error statuses.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ServiceError is a well-formed response with success=false.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("service error (status %d): %s", e.StatusCode, e.Message)
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsService reports whether err is (or wraps) a ServiceError.
func IsService(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
