package event

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/maintenance-manager/backend/internal/metrics"
	"github.com/maintenance-manager/backend/internal/websocket"
)

// Scheduler drives periodic reconciliation against the remote calendar. The
// coordinator itself never schedules anything; this is the external caller
// the sync pass expects.
type Scheduler struct {
	cron        *cron.Cron
	coordinator *Coordinator
	broadcaster *websocket.EventBroadcaster
	schedule    string
}

// NewScheduler creates a sync scheduler. The schedule accepts standard cron
// syntax or "@every" intervals.
func NewScheduler(coordinator *Coordinator, hub *websocket.Hub, schedule string) *Scheduler {
	if schedule == "" {
		schedule = "@every 15m"
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:        cron.New(),
		coordinator: coordinator,
		broadcaster: broadcaster,
		schedule:    schedule,
	}
}

// Start begins periodic syncing.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runSync); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Event sync scheduler started (%s)", s.schedule)
	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running pass.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Event sync scheduler stopped")
}

// TriggerSync runs a sync pass in the background, outside the schedule.
func (s *Scheduler) TriggerSync() {
	go s.runSync()
}

func (s *Scheduler) runSync() {
	ctx := context.Background()

	removed, err := s.coordinator.SyncFromRemote(ctx)
	if err != nil {
		log.Printf("Event sync failed: %v", err)
		metrics.SyncRuns.WithLabelValues("error").Inc()
		if s.broadcaster != nil {
			s.broadcaster.BroadcastSyncError(err)
		}
		return
	}

	log.Printf("Event sync completed: %d local records removed", removed)
	metrics.SyncRuns.WithLabelValues("success").Inc()
	metrics.EventsRemoved.Add(float64(removed))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSyncCompleted(removed)
	}
}
