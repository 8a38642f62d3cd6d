package event

import (
	"context"
	"fmt"

	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/storage"
	"github.com/maintenance-manager/backend/internal/storage/models"
)

// Resolver anchors discovered recurrence instances to their local series
// record. Instances are discovered lazily, on the first read of a specific
// occurrence; nothing eagerly materializes a whole series.
type Resolver struct {
	events *storage.EventRepository
}

// NewResolver creates a recurrence resolver.
func NewResolver(events *storage.EventRepository) *Resolver {
	return &Resolver{events: events}
}

// Resolve ensures a local record exists for the given recurrence instance,
// linked to the series record and owned by the series owner. Ownership is
// inherited from the series, never taken from the caller. Idempotent.
func (r *Resolver) Resolve(ctx context.Context, ev calendar.Event) (*models.Event, error) {
	if !ev.IsRecurrenceInstance {
		return nil, fmt.Errorf("event %s is not a recurrence instance", ev.ID)
	}

	parent, err := r.events.GetByExternalID(ctx, ev.ParentExternalID)
	if err != nil {
		return nil, fmt.Errorf("looking up series record: %w", err)
	}
	if parent == nil {
		return nil, fmt.Errorf("series %s: %w", ev.ParentExternalID, ErrSeriesNotFound)
	}

	record, err := r.events.FindOrCreateRecurrence(ctx, parent.OwnerID, ev.ID, parent.ID)
	if err != nil {
		return nil, fmt.Errorf("anchoring recurrence %s: %w", ev.ID, err)
	}

	return record, nil
}
