package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/maintenance-manager/backend/internal/api/middleware"
	"github.com/maintenance-manager/backend/internal/location"
	"github.com/maintenance-manager/backend/internal/storage"
)

// CreateLocationRequest is the body for creating a location node.
type CreateLocationRequest struct {
	Name     string  `json:"name"`
	Label    string  `json:"label"`
	ParentID *string `json:"parent_id,omitempty"`
}

// CreateLocation adds a node to the location hierarchy.
func CreateLocation(locations *storage.LocationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateLocationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name is required")
			return
		}
		if req.Label == "" {
			req.Label = req.Name
		}

		loc, err := locations.Create(r.Context(), req.Name, req.Label, req.ParentID)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(loc)
	}
}

// LocationResponse is a location together with its resolved trail, both the
// raw label form and the plain text the calendar provider receives.
type LocationResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Trail      string `json:"trail"`
	PlainTrail string `json:"plain_trail"`
}

// GetLocation returns a location with its hierarchical trail.
func GetLocation(locations *storage.LocationRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		loc, err := locations.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}
		if loc == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Location not found")
			return
		}

		trail, err := locations.Trail(r.Context(), id)
		if err != nil {
			middleware.WriteServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LocationResponse{
			ID:         loc.ID,
			Name:       loc.Name,
			Trail:      trail,
			PlainTrail: location.StripTags(trail),
		})
	}
}
