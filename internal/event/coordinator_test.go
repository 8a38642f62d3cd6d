package event

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/location"
	"github.com/maintenance-manager/backend/internal/storage"
)

type testEnv struct {
	coordinator *Coordinator
	remote      *calendar.MemoryClient
	events      *storage.EventRepository
	locations   *storage.LocationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	remote := calendar.NewMemoryClient()
	events := storage.NewEventRepository(db)
	locations := storage.NewLocationRepository(db)

	return &testEnv{
		coordinator: NewCoordinator(remote, events, location.NewStoreResolver(locations)),
		remote:      remote,
		events:      events,
		locations:   locations,
	}
}

func testInput(title string) Input {
	start := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	return Input{
		Title: title,
		Start: start,
		End:   start.Add(time.Hour),
	}
}

func TestCoordinatorCreateAnchorsLocally(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ev, err := env.coordinator.Create(ctx, "user-1", testInput("Boiler inspection"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	remote, err := env.remote.Find(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if remote == nil || remote.Title != "Boiler inspection" {
		t.Fatalf("remote event missing or wrong: %+v", remote)
	}

	record, err := env.events.GetByExternalID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record == nil {
		t.Fatal("no local anchor record after create")
	}
	if record.OwnerID != "user-1" {
		t.Errorf("owner = %q, want user-1", record.OwnerID)
	}
	if record.ParentID != nil {
		t.Errorf("series record must have no parent, got %v", *record.ParentID)
	}
}

func TestCoordinatorCreateStripsLocationMarkup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	building, err := env.locations.Create(ctx, "Building A", "<b>Building A</b>", nil)
	if err != nil {
		t.Fatalf("creating location: %v", err)
	}
	room, err := env.locations.Create(ctx, "Room 2", "Room 2", &building.ID)
	if err != nil {
		t.Fatalf("creating location: %v", err)
	}

	input := testInput("Filter change")
	input.LocationID = &room.ID

	ev, err := env.coordinator.Create(ctx, "user-1", input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if want := "Building A > Room 2"; ev.Location != want {
		t.Errorf("remote location = %q, want %q", ev.Location, want)
	}

	record, err := env.events.GetByExternalID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record.LocationID == nil || *record.LocationID != room.ID {
		t.Errorf("local record location = %v, want %s", record.LocationID, room.ID)
	}
}

func TestCoordinatorCreateRemoteFailureLeavesNoLocalState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.remote.CreateErr = errors.New("provider unavailable")

	_, err := env.coordinator.Create(ctx, "user-1", testInput("Doomed"))
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remoteErr.Op != "create" {
		t.Errorf("op = %q, want create", remoteErr.Op)
	}

	series, err := env.events.ListSeries(ctx)
	if err != nil {
		t.Fatalf("ListSeries failed: %v", err)
	}
	if len(series) != 0 {
		t.Errorf("remote failure left %d local records behind", len(series))
	}
}

func TestCoordinatorCreateUnknownLocation(t *testing.T) {
	env := newTestEnv(t)

	input := testInput("Nowhere")
	missing := "no-such-location"
	input.LocationID = &missing

	_, err := env.coordinator.Create(context.Background(), "user-1", input)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCoordinatorFindNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.coordinator.FindByExternalID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCoordinatorFindRecurrenceAnchorsInstance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := testInput("Weekly check")
	input.Recurrence = "FREQ=WEEKLY;COUNT=3"

	series, err := env.coordinator.Create(ctx, "user-1", input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	instances, err := env.coordinator.Recurrences(ctx, series.ID)
	if err != nil {
		t.Fatalf("Recurrences failed: %v", err)
	}
	if len(instances) != 3 {
		t.Fatalf("expected 3 instances, got %d", len(instances))
	}

	found, err := env.coordinator.FindByExternalID(ctx, instances[1].ID)
	if err != nil {
		t.Fatalf("FindByExternalID failed: %v", err)
	}
	if !found.IsRecurrenceInstance {
		t.Fatal("instance not flagged as recurrence")
	}

	record, err := env.events.GetByExternalID(ctx, instances[1].ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record == nil {
		t.Fatal("finding a recurrence instance must anchor it locally")
	}
	if record.OwnerID != "user-1" {
		t.Errorf("instance owner = %q, want the series owner user-1", record.OwnerID)
	}
	if record.ParentID == nil {
		t.Fatal("instance record must point at the series record")
	}

	parent, err := env.events.GetByExternalID(ctx, series.ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if *record.ParentID != parent.ID {
		t.Errorf("instance parent = %q, want %q", *record.ParentID, parent.ID)
	}

	// A second find reuses the anchor instead of creating another one.
	if _, err := env.coordinator.FindByExternalID(ctx, instances[1].ID); err != nil {
		t.Fatalf("second FindByExternalID failed: %v", err)
	}
	again, err := env.events.GetByExternalID(ctx, instances[1].ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if again.ID != record.ID {
		t.Errorf("repeated find created a new record: %q then %q", record.ID, again.ID)
	}
}

func TestCoordinatorFindRecurrenceUnanchoredSeries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Series exists remotely but was never anchored locally.
	start := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	series, err := env.remote.Create(ctx, calendar.EventFields{
		Title:      "Orphan series",
		Start:      start,
		End:        start.Add(time.Hour),
		Recurrence: "FREQ=DAILY;COUNT=2",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	instances, err := env.remote.ListRecurrences(ctx, series.ID)
	if err != nil {
		t.Fatalf("ListRecurrences failed: %v", err)
	}

	_, err = env.coordinator.FindByExternalID(ctx, instances[0].ID)
	if !errors.Is(err, ErrSeriesNotFound) {
		t.Fatalf("expected ErrSeriesNotFound, got %v", err)
	}
}

func TestCoordinatorDestroy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ev, err := env.coordinator.Create(ctx, "user-1", testInput("Short lived"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.coordinator.DestroyByExternalID(ctx, ev.ID); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	record, err := env.events.GetByExternalID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record != nil {
		t.Error("local record survived destroy")
	}

	remote, err := env.remote.Find(ctx, ev.ID)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if remote == nil || remote.Status != calendar.StatusCancelled {
		t.Errorf("remote event not cancelled: %+v", remote)
	}
}

func TestCoordinatorDestroyRemoteFailureStillRemovesLocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ev, err := env.coordinator.Create(ctx, "user-1", testInput("Stuck"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	env.remote.DeleteErr = errors.New("provider unavailable")

	err = env.coordinator.DestroyByExternalID(ctx, ev.ID)
	var remoteErr *RemoteError
	if !errors.As(err, &remoteErr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	// The local delete is not rolled back.
	record, err := env.events.GetByExternalID(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetByExternalID failed: %v", err)
	}
	if record != nil {
		t.Error("local record survived a failed remote delete")
	}
}

func TestCoordinatorSyncFromRemote(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kept, err := env.coordinator.Create(ctx, "user-1", testInput("Kept"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	gone, err := env.coordinator.Create(ctx, "user-1", testInput("Gone"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	env.remote.Cancel(gone.ID)

	removed, err := env.coordinator.SyncFromRemote(ctx)
	if err != nil {
		t.Fatalf("SyncFromRemote failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	if record, _ := env.events.GetByExternalID(ctx, gone.ID); record != nil {
		t.Error("cancelled event still anchored after sync")
	}
	if record, _ := env.events.GetByExternalID(ctx, kept.ID); record == nil {
		t.Error("sync removed a live event")
	}

	// A second pass finds nothing left to remove.
	removed, err = env.coordinator.SyncFromRemote(ctx)
	if err != nil {
		t.Fatalf("SyncFromRemote failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("second pass removed = %d, want 0", removed)
	}
}

func TestCoordinatorListSeries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	input := testInput("Weekly check")
	input.Recurrence = "FREQ=WEEKLY;COUNT=3"

	series, err := env.coordinator.Create(ctx, "user-1", input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Anchor one instance so there is a recurrence record to exclude.
	instances, err := env.coordinator.Recurrences(ctx, series.ID)
	if err != nil {
		t.Fatalf("Recurrences failed: %v", err)
	}
	if _, err := env.coordinator.FindByExternalID(ctx, instances[0].ID); err != nil {
		t.Fatalf("FindByExternalID failed: %v", err)
	}

	listed, err := env.coordinator.ListSeries(ctx)
	if err != nil {
		t.Fatalf("ListSeries failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected only the series, got %d events", len(listed))
	}
	if listed[0].ID != series.ID {
		t.Errorf("listed %q, want %q", listed[0].ID, series.ID)
	}
}
