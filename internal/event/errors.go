// Package event coordinates the remote calendar with the local anchor
// records that attachments and reports hang off of.
package event

import (
	"errors"
)

var (
	// ErrNotFound is returned when a lookup (remote event, local record, or
	// location) has no match.
	ErrNotFound = errors.New("not found")

	// ErrSeriesNotFound is returned when a recurrence instance is discovered
	// but its series was never anchored locally; the instance cannot be
	// attached without a known series root.
	ErrSeriesNotFound = errors.New("recurrence series not anchored locally")

	// ErrMalformedTimestamp is returned when a provider timestamp cannot be
	// parsed while rendering the calendar feed.
	ErrMalformedTimestamp = errors.New("malformed event timestamp")
)

// RemoteError wraps any failure from the calendar provider. It is never
// recovered locally; callers decide whether to retry.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return "remote calendar " + e.Op + ": " + e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
