// Package location resolves location records into the plain-text trails the
// remote calendar can display.
package location

import (
	"context"
	"fmt"

	"github.com/maintenance-manager/backend/internal/storage"
)

// Location is a resolved location: its ID and the hierarchical trail label,
// markup included, e.g. "<b>Building A</b> > Room 2".
type Location struct {
	ID    string
	Trail string
}

// Resolver looks up a location by ID. Returns (nil, nil) when unknown.
type Resolver interface {
	Resolve(ctx context.Context, id string) (*Location, error)
}

// StoreResolver resolves locations from the local database.
type StoreResolver struct {
	locations *storage.LocationRepository
}

// NewStoreResolver creates a resolver backed by the location repository.
func NewStoreResolver(locations *storage.LocationRepository) *StoreResolver {
	return &StoreResolver{locations: locations}
}

// Resolve returns the location with its full ancestor trail.
func (r *StoreResolver) Resolve(ctx context.Context, id string) (*Location, error) {
	trail, err := r.locations.Trail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("building location trail: %w", err)
	}
	if trail == "" {
		return nil, nil
	}

	return &Location{ID: id, Trail: trail}, nil
}
