// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/maintenance-manager/backend/internal/api/middleware"
	"github.com/maintenance-manager/backend/internal/calendar"
	"github.com/maintenance-manager/backend/internal/event"
	"github.com/maintenance-manager/backend/internal/storage"
	ws "github.com/maintenance-manager/backend/internal/websocket"
)

// UpdateDatesRequest is the body for the dates-only update (widget drag/resize).
type UpdateDatesRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	AllDay bool      `json:"all_day"`
}

// ListEvents returns the remote events for every locally anchored series.
func ListEvents(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := c.ListSeries(r.Context())
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		if events == nil {
			events = []calendar.Event{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// CreateEvent creates a remote event and anchors it locally.
func CreateEvent(c *event.Coordinator, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := middleware.UserID(r)
		if user == "" {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Acting user is required")
			return
		}

		var input event.Input
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if input.Title == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title is required")
			return
		}
		if !input.End.After(input.Start) {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "End must be after start")
			return
		}

		created, err := c.Create(r.Context(), user, input)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		if hub != nil {
			ws.NewEventBroadcaster(hub).BroadcastEventCreated(created.ID, created.Title)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

// GetEvent fetches one event from the remote calendar. Reading a recurrence
// instance anchors it locally as a side effect.
func GetEvent(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := c.FindByExternalID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ev)
	}
}

// GetLocalEvent returns the local anchor record with its attachments,
// without touching the remote side.
func GetLocalEvent(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := c.FindLocalByExternalID(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(record)
	}
}

// GetRecurrences returns the remote instances of a recurring series.
func GetRecurrences(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := c.Recurrences(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		if events == nil {
			events = []calendar.Event{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(events)
	}
}

// UpdateEvent rewrites the remote event's fields; the local record is immutable.
func UpdateEvent(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input event.Input
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		updated, err := c.UpdateByExternalID(r.Context(), mux.Vars(r)["id"], input)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

// UpdateEventDates moves the remote event.
func UpdateEventDates(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpdateDatesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		updated, err := c.UpdateDates(r.Context(), mux.Vars(r)["id"], calendar.DateRange{
			Start:  req.Start,
			End:    req.End,
			AllDay: req.AllDay,
		})
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(updated)
	}
}

// DeleteEvent removes the local record and then the remote event.
func DeleteEvent(c *event.Coordinator, hub *ws.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := c.DestroyByExternalID(r.Context(), id); err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		if hub != nil {
			ws.NewEventBroadcaster(hub).BroadcastEventDeleted(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// SyncEvents triggers a reconciliation pass in the background.
func SyncEvents(scheduler *event.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if scheduler == nil {
			middleware.WriteError(w, http.StatusServiceUnavailable, middleware.ErrInternalError, "Sync is not configured")
			return
		}

		scheduler.TriggerSync()
		w.WriteHeader(http.StatusAccepted)
	}
}

// CalendarFeed renders the anchored events for the front-end calendar widget.
func CalendarFeed(c *event.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := c.ListSeries(r.Context())
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		feed, err := event.RenderWidget(events)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(feed)
	}
}

// Attachment request bodies.

type attachAssetRequest struct {
	AssetID string `json:"asset_id"`
}

type attachInventoryRequest struct {
	InventoryID string  `json:"inventory_id"`
	Quantity    float64 `json:"quantity"`
}

type attachWorkOrderRequest struct {
	WorkOrderID string `json:"work_order_id"`
}

// AttachAsset records an asset against an anchored event.
func AttachAsset(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attachAssetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AssetID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "asset_id is required")
			return
		}

		attachToEvent(w, r, events, func(eventID string) error {
			return events.AttachAsset(r.Context(), eventID, req.AssetID)
		})
	}
}

// AttachInventoryDraw records an inventory draw against an anchored event.
func AttachInventoryDraw(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attachInventoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InventoryID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "inventory_id is required")
			return
		}
		if req.Quantity <= 0 {
			req.Quantity = 1
		}

		attachToEvent(w, r, events, func(eventID string) error {
			return events.AttachInventoryDraw(r.Context(), eventID, req.InventoryID, req.Quantity)
		})
	}
}

// AttachWorkOrder records a work order against an anchored event.
func AttachWorkOrder(events *storage.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req attachWorkOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WorkOrderID == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "work_order_id is required")
			return
		}

		attachToEvent(w, r, events, func(eventID string) error {
			return events.AttachWorkOrder(r.Context(), eventID, req.WorkOrderID)
		})
	}
}

// attachToEvent resolves the anchor record for the {id} path variable and
// runs the attach callback against its internal ID. Attachments hang off the
// internal ID, never the external one.
func attachToEvent(w http.ResponseWriter, r *http.Request, events *storage.EventRepository, attach func(eventID string) error) {
	record, err := events.GetByExternalID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteServiceError(w, err)
		return
	}
	if record == nil {
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event is not anchored locally")
		return
	}

	if err := attach(record.ID); err != nil {
		middleware.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
