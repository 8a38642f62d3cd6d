package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestEventRepositoryCreateAndGet(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	locID := "loc-1"
	created, err := repo.Create(ctx, "user-1", "ext-1", nil, &locID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated ID")
	}

	got, err := repo.GetByExternalID(ctx, "ext-1")
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}
	if got.ID != created.ID || got.OwnerID != "user-1" || got.LocationID == nil || *got.LocationID != "loc-1" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.ParentID != nil {
		t.Errorf("expected nil parent, got %v", *got.ParentID)
	}

	missing, err := repo.GetByExternalID(ctx, "ext-unknown")
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown external ID, got %+v", missing)
	}
}

func TestEventRepositoryCreateConflict(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, "user-1", "ext-1", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := repo.Create(ctx, "user-2", "ext-1", nil, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestFindOrCreateRecurrenceIdempotent(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	series, err := repo.Create(ctx, "user-1", "series-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	first, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID)
	if err != nil {
		t.Fatalf("FindOrCreateRecurrence failed: %v", err)
	}
	if first.ParentID == nil || *first.ParentID != series.ID {
		t.Fatalf("expected parent %s, got %+v", series.ID, first.ParentID)
	}

	second, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID)
	if err != nil {
		t.Fatalf("second FindOrCreateRecurrence failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same record, got %s and %s", first.ID, second.ID)
	}
}

func TestFindOrCreateRecurrenceConcurrent(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	series, err := repo.Create(ctx, "user-1", "series-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	const racers = 8
	results := make([]string, racers)
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			record, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = record.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < racers; i++ {
		if errs[i] != nil {
			t.Fatalf("racer %d failed: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("racers observed different records: %s and %s", results[0], results[i])
		}
	}

	var count int
	if err := repo.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE external_id = ?`, "series-1_inst").Scan(&count); err != nil {
		t.Fatalf("counting records: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly one record, got %d", count)
	}
}

func TestFindOrCreateRecurrenceDepth(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	series, err := repo.Create(ctx, "user-1", "series-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	instance, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID)
	if err != nil {
		t.Fatalf("FindOrCreateRecurrence failed: %v", err)
	}

	_, err = repo.FindOrCreateRecurrence(ctx, series.OwnerID, "nested-inst", instance.ID)
	if !errors.Is(err, ErrRecurrenceDepth) {
		t.Fatalf("expected ErrRecurrenceDepth, got %v", err)
	}
}

func TestFindOrCreateRecurrenceMissingParent(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))

	_, err := repo.FindOrCreateRecurrence(context.Background(), "user-1", "inst", "no-such-id")
	if err == nil {
		t.Fatal("expected error for missing series record")
	}
}

func TestDeleteByExternalID(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	series, err := repo.Create(ctx, "user-1", "series-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID); err != nil {
		t.Fatalf("FindOrCreateRecurrence failed: %v", err)
	}

	n, err := repo.DeleteByExternalID(ctx, "series-1")
	if err != nil {
		t.Fatalf("DeleteByExternalID failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 row deleted, got %d", n)
	}

	// Recurrence records cascade with their series.
	orphan, err := repo.GetByExternalID(ctx, "series-1_inst")
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if orphan != nil {
		t.Errorf("expected recurrence record to cascade, got %+v", orphan)
	}

	n, err = repo.DeleteByExternalID(ctx, "series-1")
	if err != nil {
		t.Fatalf("second DeleteByExternalID failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows deleted, got %d", n)
	}
}

func TestListSeries(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	series, err := repo.Create(ctx, "user-1", "series-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, "user-1", "single-1", nil, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.FindOrCreateRecurrence(ctx, series.OwnerID, "series-1_inst", series.ID); err != nil {
		t.Fatalf("FindOrCreateRecurrence failed: %v", err)
	}

	records, err := repo.ListSeries(ctx)
	if err != nil {
		t.Fatalf("ListSeries failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 series records, got %d", len(records))
	}
	for _, record := range records {
		if record.IsRecurrence() {
			t.Errorf("recurrence record %s should not be listed", record.ExternalID)
		}
	}
}

func TestGetWithAttachments(t *testing.T) {
	repo := NewEventRepository(newTestDB(t))
	ctx := context.Background()

	ev, err := repo.Create(ctx, "user-1", "ext-1", nil, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.AttachAsset(ctx, ev.ID, "asset-1"); err != nil {
		t.Fatalf("AttachAsset failed: %v", err)
	}
	// Attaching the same asset twice is a no-op.
	if err := repo.AttachAsset(ctx, ev.ID, "asset-1"); err != nil {
		t.Fatalf("repeated AttachAsset failed: %v", err)
	}
	if err := repo.AttachInventoryDraw(ctx, ev.ID, "inv-1", 2); err != nil {
		t.Fatalf("AttachInventoryDraw failed: %v", err)
	}
	// A repeated draw replaces the quantity.
	if err := repo.AttachInventoryDraw(ctx, ev.ID, "inv-1", 5); err != nil {
		t.Fatalf("repeated AttachInventoryDraw failed: %v", err)
	}
	if err := repo.AttachWorkOrder(ctx, ev.ID, "wo-1"); err != nil {
		t.Fatalf("AttachWorkOrder failed: %v", err)
	}

	got, err := repo.GetWithAttachments(ctx, "ext-1")
	if err != nil {
		t.Fatalf("GetWithAttachments failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected record, got nil")
	}

	if len(got.AssetIDs) != 1 || got.AssetIDs[0] != "asset-1" {
		t.Errorf("unexpected assets: %v", got.AssetIDs)
	}
	if len(got.InventoryDraws) != 1 || got.InventoryDraws[0].Quantity != 5 {
		t.Errorf("unexpected inventory draws: %v", got.InventoryDraws)
	}
	if len(got.WorkOrderIDs) != 1 || got.WorkOrderIDs[0] != "wo-1" {
		t.Errorf("unexpected work orders: %v", got.WorkOrderIDs)
	}

	missing, err := repo.GetWithAttachments(ctx, "ext-unknown")
	if err != nil {
		t.Fatalf("GetWithAttachments failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown external ID, got %+v", missing)
	}
}
