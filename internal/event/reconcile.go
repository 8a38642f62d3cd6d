package event

import (
	"context"
	"fmt"

	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/storage"
)

// Reconciler removes local anchor records whose remote counterpart has been
// cancelled. Remote truth wins; the pass is one-directional and never writes
// to the provider.
type Reconciler struct {
	events *storage.EventRepository
}

// NewReconciler creates a sync reconciler.
func NewReconciler(events *storage.EventRepository) *Reconciler {
	return &Reconciler{events: events}
}

// Reconcile deletes the local record of every cancelled event in the batch.
// Cancelled events with no local record are a no-op; events with any other
// status are left untouched. Returns the number of records removed.
func (r *Reconciler) Reconcile(ctx context.Context, events []calendar.Event) (int, error) {
	removed := 0

	for _, ev := range events {
		if ev.Status != calendar.StatusCancelled {
			continue
		}

		n, err := r.events.DeleteByExternalID(ctx, ev.ID)
		if err != nil {
			return removed, fmt.Errorf("removing cancelled event %s: %w", ev.ID, err)
		}
		removed += int(n)
	}

	return removed, nil
}
