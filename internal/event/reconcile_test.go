package event

import (
	"context"
	"testing"

	"github.com/maintenance-manager/backend/internal/calendar"
)

func TestReconcileRemovesOnlyCancelled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := env.events.Create(ctx, "user-1", "ext-live", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := env.events.Create(ctx, "user-1", "ext-dead", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reconciler := NewReconciler(env.events)

	removed, err := reconciler.Reconcile(ctx, []calendar.Event{
		{ID: "ext-live", Status: "confirmed"},
		{ID: "ext-dead", Status: calendar.StatusCancelled},
		{ID: "ext-unknown", Status: calendar.StatusCancelled},
	})
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if record, _ := env.events.GetByExternalID(ctx, "ext-live"); record == nil {
		t.Error("confirmed event was removed")
	}
	if record, _ := env.events.GetByExternalID(ctx, "ext-dead"); record != nil {
		t.Error("cancelled event still anchored")
	}
}

func TestReconcileEmptyBatch(t *testing.T) {
	env := newTestEnv(t)

	removed, err := NewReconciler(env.events).Reconcile(context.Background(), nil)
	if err != nil {
		t.Fatalf("Reconcile failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}
}
