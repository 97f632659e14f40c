package errors

import (
	"errors"
)

// indicates an unrecoverable error
var ErrPermanentFailure = errors.New("permanent failure, do not retry")

var (
	// ErrTransport covers network failures, timeouts and non-success responses.
	ErrTransport = errors.New("transport error")

	// ErrNotFound means the job id is unknown to the remote side.
	ErrNotFound = errors.New("job not found")

	// ErrMalformedSnapshot means a report was missing required fields.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	ErrInvalidJobID = errors.New("invalid job id")
)

type Kind string

const (
	KindTransport Kind = "transport"
	KindNotFound  Kind = "not_found"
	KindMalformed Kind = "malformed"
	KindInvalid   Kind = "invalid"
	KindUnknown   Kind = "unknown"
)

// KindOf classifies err by the sentinel it wraps.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrMalformedSnapshot):
		return KindMalformed
	case errors.Is(err, ErrInvalidJobID):
		return KindInvalid
	case errors.Is(err, ErrTransport):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Transient reports whether polling may carry on after err.
func Transient(err error) bool {
	return err != nil && !errors.Is(err, ErrPermanentFailure)
}
