package calendar

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
)

// maxInstances caps recurrence expansion so an unbounded RRULE cannot
// materialize forever.
const maxInstances = 100

// MemoryClient is an in-process Client used by tests and by dev mode. It
// mimics the provider's observable behavior: deletes mark events cancelled
// instead of removing them, and recurrence instances are materialized lazily
// with the provider's seriesID_timestamp naming.
type MemoryClient struct {
	mu     sync.RWMutex
	events map[string]*memoryEvent

	// CreateErr and DeleteErr, when set, make the corresponding call fail.
	// Tests use these to simulate provider outages.
	CreateErr error
	DeleteErr error
}

type memoryEvent struct {
	Event
	recurrence string
	duration   time.Duration
}

// NewMemoryClient creates an empty in-memory provider.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{events: make(map[string]*memoryEvent)}
}

// Find retrieves an event by ID, or (nil, nil) when unknown.
func (c *MemoryClient) Find(ctx context.Context, externalID string) (*Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ev, ok := c.events[externalID]
	if !ok {
		return nil, nil
	}

	out := ev.Event
	return &out, nil
}

// List returns all known events ordered by start.
func (c *MemoryClient) List(ctx context.Context) ([]Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	events := make([]Event, 0, len(c.events))
	for _, ev := range c.events {
		events = append(events, ev.Event)
	}

	sort.Slice(events, func(i, j int) bool { return events[i].Start < events[j].Start })
	return events, nil
}

// ListByIDs returns the requested events, with their recurrence instances
// when asked for. Unknown IDs are skipped.
func (c *MemoryClient) ListByIDs(ctx context.Context, externalIDs []string, includeRecurrences bool) ([]Event, error) {
	var events []Event

	for _, id := range externalIDs {
		c.mu.RLock()
		ev, ok := c.events[id]
		c.mu.RUnlock()
		if !ok {
			continue
		}

		events = append(events, ev.Event)

		if includeRecurrences && ev.recurrence != "" {
			instances, err := c.ListRecurrences(ctx, id)
			if err != nil {
				return nil, err
			}
			events = append(events, instances...)
		}
	}

	return events, nil
}

// ListRecurrences expands the series RRULE and materializes each instance so
// that a later Find on the instance ID succeeds.
func (c *MemoryClient) ListRecurrences(ctx context.Context, seriesExternalID string) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	series, ok := c.events[seriesExternalID]
	if !ok || series.recurrence == "" {
		return nil, nil
	}

	start, err := time.Parse(time.RFC3339, series.Start)
	if err != nil {
		return nil, err
	}

	rule, err := rrule.StrToRRule(series.recurrence)
	if err != nil {
		return nil, err
	}
	rule.DTStart(start)

	occurrences := rule.Between(start, start.AddDate(2, 0, 0), true)
	if len(occurrences) > maxInstances {
		occurrences = occurrences[:maxInstances]
	}

	var events []Event
	for _, occ := range occurrences {
		id := seriesExternalID + "_" + occ.UTC().Format("20060102T150405Z")

		instance, ok := c.events[id]
		if !ok {
			instance = &memoryEvent{
				Event: Event{
					ID:                   id,
					Title:                series.Title,
					Start:                occ.Format(time.RFC3339),
					End:                  occ.Add(series.duration).Format(time.RFC3339),
					AllDay:               series.AllDay,
					Status:               "confirmed",
					Location:             series.Location,
					IsRecurrenceInstance: true,
					ParentExternalID:     seriesExternalID,
				},
			}
			c.events[id] = instance
		}

		events = append(events, instance.Event)
	}

	return events, nil
}

// Create stores a new event under a fresh ID.
func (c *MemoryClient) Create(ctx context.Context, fields EventFields) (*Event, error) {
	if c.CreateErr != nil {
		return nil, c.CreateErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ev := &memoryEvent{
		Event: Event{
			ID:       uuid.NewString(),
			Title:    fields.Title,
			Start:    formatTimestamp(fields.Start, fields.AllDay),
			End:      formatTimestamp(fields.End, fields.AllDay),
			AllDay:   fields.AllDay,
			Status:   "confirmed",
			Location: fields.Location,
		},
		recurrence: fields.Recurrence,
		duration:   fields.End.Sub(fields.Start),
	}
	c.events[ev.ID] = ev

	out := ev.Event
	return &out, nil
}

// Update rewrites the writable fields of an event.
func (c *MemoryClient) Update(ctx context.Context, externalID string, fields EventFields) (*Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := c.events[externalID]
	if !ok {
		return nil, nil
	}

	ev.Title = fields.Title
	ev.Location = fields.Location
	ev.Start = formatTimestamp(fields.Start, fields.AllDay)
	ev.End = formatTimestamp(fields.End, fields.AllDay)
	ev.AllDay = fields.AllDay
	ev.duration = fields.End.Sub(fields.Start)
	if fields.Recurrence != "" {
		ev.recurrence = fields.Recurrence
	}

	out := ev.Event
	return &out, nil
}

// UpdateDates moves an event without touching its other fields.
func (c *MemoryClient) UpdateDates(ctx context.Context, externalID string, dates DateRange) (*Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ev, ok := c.events[externalID]
	if !ok {
		return nil, nil
	}

	ev.Start = formatTimestamp(dates.Start, dates.AllDay)
	ev.End = formatTimestamp(dates.End, dates.AllDay)
	ev.AllDay = dates.AllDay
	ev.duration = dates.End.Sub(dates.Start)

	out := ev.Event
	return &out, nil
}

// Delete marks an event cancelled, matching the provider's tombstone
// behavior. Unknown IDs are a no-op.
func (c *MemoryClient) Delete(ctx context.Context, externalID string) error {
	if c.DeleteErr != nil {
		return c.DeleteErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ev, ok := c.events[externalID]; ok {
		ev.Status = StatusCancelled
	}
	return nil
}

// Cancel marks an event cancelled without going through Delete's failure
// injection. Tests use it to stage reconciliation input.
func (c *MemoryClient) Cancel(externalID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ev, ok := c.events[externalID]; ok {
		ev.Status = StatusCancelled
	}
}

func formatTimestamp(t time.Time, allDay bool) string {
	if allDay {
		return t.Format(dateOnly)
	}
	return t.Format(time.RFC3339)
}
