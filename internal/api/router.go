// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maintenance-manager/backend/internal/api/handlers"
	"github.com/maintenance-manager/backend/internal/api/middleware"
	"github.com/maintenance-manager/backend/internal/event"
	"github.com/maintenance-manager/backend/internal/storage"
	"github.com/maintenance-manager/backend/internal/websocket"
)

// Services bundles the collaborators the router wires into handlers.
type Services struct {
	DB          *storage.DB
	Events      *storage.EventRepository
	Locations   *storage.LocationRepository
	Coordinator *event.Coordinator
	Scheduler   *event.Scheduler
	Hub         *websocket.Hub
	StaticDir   string
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)
	r.Use(middleware.Identity)

	// Metrics for the scrape endpoint, outside the /api prefix
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(s.Coordinator)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(s.Coordinator, s.Hub)).Methods("POST")
	api.HandleFunc("/events/sync", handlers.SyncEvents(s.Scheduler)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.GetEvent(s.Coordinator)).Methods("GET")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(s.Coordinator)).Methods("PATCH")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(s.Coordinator, s.Hub)).Methods("DELETE")
	api.HandleFunc("/events/{id}/dates", handlers.UpdateEventDates(s.Coordinator)).Methods("PATCH")
	api.HandleFunc("/events/{id}/local", handlers.GetLocalEvent(s.Coordinator)).Methods("GET")
	api.HandleFunc("/events/{id}/recurrences", handlers.GetRecurrences(s.Coordinator)).Methods("GET")
	api.HandleFunc("/events/{id}/assets", handlers.AttachAsset(s.Events)).Methods("POST")
	api.HandleFunc("/events/{id}/inventory", handlers.AttachInventoryDraw(s.Events)).Methods("POST")
	api.HandleFunc("/events/{id}/work-orders", handlers.AttachWorkOrder(s.Events)).Methods("POST")

	// Calendar widget feed
	api.HandleFunc("/calendar", handlers.CalendarFeed(s.Coordinator)).Methods("GET")

	// Location endpoints
	api.HandleFunc("/locations", handlers.CreateLocation(s.Locations)).Methods("POST")
	api.HandleFunc("/locations/{id}", handlers.GetLocation(s.Locations)).Methods("GET")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(s.StaticDir)))

	return r
}
