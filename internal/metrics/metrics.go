// Package metrics exposes Prometheus counters for event synchronization.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts completed sync passes by outcome ("success" or "error").
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_sync_runs_total",
		Help: "Completed event sync passes, labelled by outcome.",
	}, []string{"outcome"})

	// EventsRemoved counts local records removed by reconciliation.
	EventsRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "event_sync_removed_total",
		Help: "Local event records removed because the remote event was cancelled.",
	})

	// RemoteErrors counts failures from the calendar provider by operation.
	RemoteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "remote_calendar_errors_total",
		Help: "Remote calendar provider failures, labelled by operation.",
	}, []string{"op"})
)
