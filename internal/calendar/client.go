// Package calendar provides access to the remote calendar provider that
// owns the authoritative copy of every event.
package calendar

import (
	"context"
	"time"
)

// Event is a single event as reported by the remote provider. Start and End
// carry the provider's own timestamp representation: an RFC 3339 datetime, or
// a bare YYYY-MM-DD date for all-day events.
type Event struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Start                string `json:"start"`
	End                  string `json:"end"`
	AllDay               bool   `json:"all_day"`
	Status               string `json:"status"`
	Location             string `json:"location,omitempty"`
	IsRecurrenceInstance bool   `json:"is_recurrence_instance"`
	ParentExternalID     string `json:"parent_external_id,omitempty"`
}

// StatusCancelled is the provider status that marks an event as removed on
// the remote side.
const StatusCancelled = "cancelled"

// EventFields carries the writable fields for create and update calls.
type EventFields struct {
	Title      string
	Start      time.Time
	End        time.Time
	AllDay     bool
	Location   string
	Recurrence string // RRULE body, e.g. "FREQ=WEEKLY;COUNT=10"; empty for one-off events
}

// DateRange is the payload for a dates-only update (drag/resize on the
// calendar widget).
type DateRange struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// Client is the contract with the remote calendar provider. Lookups return
// (nil, nil) when the provider has no such event; all other failures are
// returned as errors.
type Client interface {
	// Find retrieves a single event by its provider ID.
	Find(ctx context.Context, externalID string) (*Event, error)

	// List retrieves all events on the provider calendar.
	List(ctx context.Context) ([]Event, error)

	// ListByIDs retrieves the given events. When includeRecurrences is set,
	// discovered instances of recurring series are included as well.
	ListByIDs(ctx context.Context, externalIDs []string, includeRecurrences bool) ([]Event, error)

	// ListRecurrences retrieves all instances of a recurring series.
	ListRecurrences(ctx context.Context, seriesExternalID string) ([]Event, error)

	// Create creates a new remote event and returns it.
	Create(ctx context.Context, fields EventFields) (*Event, error)

	// Update rewrites the writable fields of an existing remote event.
	Update(ctx context.Context, externalID string, fields EventFields) (*Event, error)

	// UpdateDates moves an existing remote event without touching its other fields.
	UpdateDates(ctx context.Context, externalID string, dates DateRange) (*Event, error)

	// Delete removes the remote event.
	Delete(ctx context.Context, externalID string) error
}
