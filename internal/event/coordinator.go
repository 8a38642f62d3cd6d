package event

import (
	"context"
	"fmt"
	"time"

	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/location"
	"github.com/maintenance-manager/backend/internal/metrics"
	"github.com/maintenance-manager/backend/internal/storage"
	"github.com/maintenance-manager/backend/internal/storage/models"
)

// LocationResolver is the slice of the location collaborator the coordinator
// needs: ID in, trail out.
type LocationResolver interface {
	Resolve(ctx context.Context, id string) (*location.Location, error)
}

// Input carries the caller-supplied fields for creating or updating an event.
type Input struct {
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	AllDay     bool      `json:"all_day"`
	Recurrence string    `json:"recurrence,omitempty"`
	LocationID *string   `json:"location_id,omitempty"`
}

// Coordinator orchestrates a single event's lifecycle across the remote
// calendar and the local anchor store. The remote side is authoritative for
// event content; the local side exists so attachments stay anchored to a
// stable identity. Local existence implies remote existence, never the
// reverse.
type Coordinator struct {
	remote     calendar.Client
	events     *storage.EventRepository
	locations  LocationResolver
	resolver   *Resolver
	reconciler *Reconciler
}

// NewCoordinator creates an event coordinator.
func NewCoordinator(remote calendar.Client, events *storage.EventRepository, locations LocationResolver) *Coordinator {
	return &Coordinator{
		remote:     remote,
		events:     events,
		locations:  locations,
		resolver:   NewResolver(events),
		reconciler: NewReconciler(events),
	}
}

// Create creates the remote event first and anchors it locally on success.
// A remote failure leaves no local state behind.
func (c *Coordinator) Create(ctx context.Context, ownerID string, input Input) (*calendar.Event, error) {
	fields, locationID, err := c.buildFields(ctx, input)
	if err != nil {
		return nil, err
	}

	ev, err := c.remote.Create(ctx, fields)
	if err != nil {
		return nil, remoteErr("create", err)
	}

	if _, err := c.events.Create(ctx, ownerID, ev.ID, nil, locationID); err != nil {
		return nil, fmt.Errorf("anchoring event %s: %w", ev.ID, err)
	}

	return ev, nil
}

// FindByExternalID fetches an event from the remote calendar. Fetching a
// recurrence instance anchors it locally as a side effect, so that the
// caller can immediately attach reports to it.
func (c *Coordinator) FindByExternalID(ctx context.Context, externalID string) (*calendar.Event, error) {
	ev, err := c.remote.Find(ctx, externalID)
	if err != nil {
		return nil, remoteErr("find", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("event %s: %w", externalID, ErrNotFound)
	}

	if ev.IsRecurrenceInstance {
		if _, err := c.resolver.Resolve(ctx, *ev); err != nil {
			return nil, err
		}
	}

	return ev, nil
}

// FindLocalByExternalID reads the local anchor record with its attachments.
// It never reaches out to the remote side.
func (c *Coordinator) FindLocalByExternalID(ctx context.Context, externalID string) (*models.EventWithAttachments, error) {
	record, err := c.events.GetWithAttachments(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("event %s: %w", externalID, ErrNotFound)
	}

	return record, nil
}

// UpdateByExternalID rewrites the remote event's fields. The local record is
// immutable and stays untouched.
func (c *Coordinator) UpdateByExternalID(ctx context.Context, externalID string, input Input) (*calendar.Event, error) {
	fields, _, err := c.buildFields(ctx, input)
	if err != nil {
		return nil, err
	}

	ev, err := c.remote.Update(ctx, externalID, fields)
	if err != nil {
		return nil, remoteErr("update", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("event %s: %w", externalID, ErrNotFound)
	}

	return ev, nil
}

// UpdateDates moves the remote event; no local effect.
func (c *Coordinator) UpdateDates(ctx context.Context, externalID string, dates calendar.DateRange) (*calendar.Event, error) {
	ev, err := c.remote.UpdateDates(ctx, externalID, dates)
	if err != nil {
		return nil, remoteErr("update dates", err)
	}
	if ev == nil {
		return nil, fmt.Errorf("event %s: %w", externalID, ErrNotFound)
	}

	return ev, nil
}

// DestroyByExternalID deletes the local record, then the remote event. The
// local delete is not rolled back when the remote delete fails; the remote
// event then dangles until a later operator retry.
func (c *Coordinator) DestroyByExternalID(ctx context.Context, externalID string) error {
	if _, err := c.events.DeleteByExternalID(ctx, externalID); err != nil {
		return fmt.Errorf("removing local record %s: %w", externalID, err)
	}

	if err := c.remote.Delete(ctx, externalID); err != nil {
		return remoteErr("delete", err)
	}

	return nil
}

// Sync runs a reconciliation pass over a batch of remote events.
func (c *Coordinator) Sync(ctx context.Context, events []calendar.Event) (int, error) {
	return c.reconciler.Reconcile(ctx, events)
}

// SyncFromRemote fetches the current remote state of every locally anchored
// series, recurrence instances included, and reconciles against it.
func (c *Coordinator) SyncFromRemote(ctx context.Context) (int, error) {
	records, err := c.events.ListSeries(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing anchored series: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ExternalID)
	}

	events, err := c.remote.ListByIDs(ctx, ids, true)
	if err != nil {
		return 0, remoteErr("list", err)
	}

	return c.Sync(ctx, events)
}

// ListSeries returns the remote events for every locally anchored series,
// without recurrences. This backs the event table in the UI.
func (c *Coordinator) ListSeries(ctx context.Context) ([]calendar.Event, error) {
	records, err := c.events.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing anchored series: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ExternalID)
	}

	events, err := c.remote.ListByIDs(ctx, ids, false)
	if err != nil {
		return nil, remoteErr("list", err)
	}

	return events, nil
}

// Recurrences returns the remote instances of a recurring series.
func (c *Coordinator) Recurrences(ctx context.Context, seriesExternalID string) ([]calendar.Event, error) {
	events, err := c.remote.ListRecurrences(ctx, seriesExternalID)
	if err != nil {
		return nil, remoteErr("list recurrences", err)
	}

	return events, nil
}

// buildFields assembles the remote event fields, resolving the location into
// stripped plain text the provider can display.
func (c *Coordinator) buildFields(ctx context.Context, input Input) (calendar.EventFields, *string, error) {
	fields := calendar.EventFields{
		Title:      input.Title,
		Start:      input.Start,
		End:        input.End,
		AllDay:     input.AllDay,
		Recurrence: input.Recurrence,
	}

	if input.LocationID == nil {
		return fields, nil, nil
	}

	loc, err := c.locations.Resolve(ctx, *input.LocationID)
	if err != nil {
		return fields, nil, fmt.Errorf("resolving location: %w", err)
	}
	if loc == nil {
		return fields, nil, fmt.Errorf("location %s: %w", *input.LocationID, ErrNotFound)
	}

	fields.Location = location.StripTags(loc.Trail)
	return fields, input.LocationID, nil
}

func remoteErr(op string, err error) error {
	metrics.RemoteErrors.WithLabelValues(op).Inc()
	return &RemoteError{Op: op, Err: err}
}
