package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rendis/restfinder/internal/engine/api"
)

var (
	// ErrBusy is returned when a request is already outstanding.
	ErrBusy = errors.New("a search is already in progress")
	// ErrNoMorePages is returned by LoadNextPage when the service said there is nothing left.
	ErrNoMorePages = errors.New("no more pages")
	// ErrStale is returned when a response arrives for a request the
	// controller no longer waits for. The session is left untouched.
	ErrStale = errors.New("stale response discarded")
)

// ValidationError rejects criteria before any request is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

const (
	msgUnreachable = "service unreachable, please try again later"
	msgFailed      = "search failed"
)

// UserMessage turns any controller error into the line shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var se *api.ServiceError
	if errors.As(err, &se) {
		if se.Message == "" {
			return msgFailed
		}
		return se.Message
	}

	switch {
	case errors.Is(err, ErrBusy):
		return "a search is already running, press esc to abandon it"
	case errors.Is(err, ErrNoMorePages):
		return "no more results"
	case errors.Is(err, ErrStale):
		return "search abandoned"
	case errors.Is(err, context.Canceled):
		return "search cancelled"
	case api.IsTransport(err), errors.Is(err, context.DeadlineExceeded):
		return msgUnreachable
	}
	return err.Error()
}
