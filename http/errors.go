package http

import (
	"errors"
	"os"
)

var (
	ErrMalformedHeader   = errors.New("http: malformed header line")
	ErrHeaderTooLarge    = errors.New("http: header block too large")
	ErrBadContentLength  = errors.New("http: invalid content-length")
	ErrBodyTooLarge      = errors.New("http: body too large")
	ErrIncompleteBody    = errors.New("http: stream closed before the declared body length")
	ErrTimeout           = errors.New("http: timeout")
	ErrNoRequest         = errors.New("http: connection closed before a request line")
	ErrServerClosed      = errors.New("http: server closed")
	ErrInvalidStatusCode = errors.New("http: handler returned a status outside 100-599")
	ErrHandlerPanic      = errors.New("http: handler panicked")
)

// StatusForError maps a request reading failure onto the status sent back to the client.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, ErrTimeout), errors.Is(err, os.ErrDeadlineExceeded):
		return StatusRequestTimeout
	case errors.Is(err, ErrHeaderTooLarge):
		return StatusRequestHeaderFieldsTooLarge
	case errors.Is(err, ErrBodyTooLarge):
		return StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadContentLength), errors.Is(err, ErrIncompleteBody):
		return StatusBadRequest
	default:
		return StatusInternalServerError
	}
}
