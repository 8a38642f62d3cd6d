package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/maintenance-manager/backend/internal/storage/models"
)

// maxTrailDepth bounds the ancestor walk so a corrupted parent chain cannot
// loop forever.
const maxTrailDepth = 32

// LocationRepository provides data access for the location hierarchy.
type LocationRepository struct {
	BaseRepository
}

// NewLocationRepository creates a new location repository.
func NewLocationRepository(db *DB) *LocationRepository {
	return &LocationRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new location node.
func (r *LocationRepository) Create(ctx context.Context, name, label string, parentID *string) (*models.Location, error) {
	loc := &models.Location{
		ID:        GenerateID(),
		ParentID:  parentID,
		Name:      name,
		Label:     label,
		CreatedAt: r.Now(),
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO locations (id, parent_id, name, label, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		loc.ID, loc.ParentID, loc.Name, loc.Label, loc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting location: %w", err)
	}

	return loc, nil
}

// GetByID retrieves a location by its ID. Returns (nil, nil) when absent.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	loc := &models.Location{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, parent_id, name, label, created_at FROM locations WHERE id = ?
	`, id).Scan(&loc.ID, &loc.ParentID, &loc.Name, &loc.Label, &loc.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying location: %w", err)
	}

	return loc, nil
}

// Trail builds the hierarchical label of a location by walking its ancestor
// chain root-first, e.g. "<b>Building A</b> > Room 2".
// Returns ("", nil) when the location does not exist.
func (r *LocationRepository) Trail(ctx context.Context, id string) (string, error) {
	var labels []string

	current := &id
	for depth := 0; current != nil && depth < maxTrailDepth; depth++ {
		loc, err := r.GetByID(ctx, *current)
		if err != nil {
			return "", err
		}
		if loc == nil {
			if depth == 0 {
				return "", nil
			}
			break
		}

		labels = append([]string{loc.Label}, labels...)
		current = loc.ParentID
	}

	return strings.Join(labels, " > "), nil
}
