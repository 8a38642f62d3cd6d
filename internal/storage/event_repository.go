package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maintenance-manager/backend/internal/storage/models"
)

const selectEvent = `
	SELECT id, external_id, parent_id, owner_id, location_id, created_at
	FROM events
`

// EventRepository provides data access for local event anchor records.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new anchor record. Returns ErrConflict when a record with
// this external ID already exists; callers racing on the same remote event
// must use FindOrCreateRecurrence instead.
func (r *EventRepository) Create(ctx context.Context, ownerID, externalID string, parentID, locationID *string) (*models.Event, error) {
	ev := &models.Event{
		ID:         GenerateID(),
		ExternalID: externalID,
		ParentID:   parentID,
		OwnerID:    ownerID,
		LocationID: locationID,
		CreatedAt:  r.Now(),
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO events (id, external_id, parent_id, owner_id, location_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		ev.ID, ev.ExternalID, ev.ParentID, ev.OwnerID, ev.LocationID, ev.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("event %s: %w", externalID, ErrConflict)
		}
		return nil, fmt.Errorf("inserting event: %w", err)
	}

	return ev, nil
}

// GetByExternalID retrieves an anchor record by the remote event ID.
// Returns (nil, nil) when no record exists.
func (r *EventRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	ev, err := scanEvent(r.DB().QueryRowContext(ctx, selectEvent+`WHERE external_id = ?`, externalID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	return ev, nil
}

// FindOrCreateRecurrence returns the anchor record for a discovered
// recurrence instance, creating it if it does not exist yet. The insert is a
// single conditional statement against the external_id unique constraint, so
// concurrent discoveries of the same instance converge on one record.
// The parent must be a series record; attaching to a record that is itself a
// recurrence fails with ErrRecurrenceDepth.
func (r *EventRepository) FindOrCreateRecurrence(ctx context.Context, ownerID, externalID, parentID string) (*models.Event, error) {
	var ev *models.Event

	err := r.Transaction(func(tx *sql.Tx) error {
		var parentParent sql.NullString
		err := tx.QueryRowContext(ctx, `SELECT parent_id FROM events WHERE id = ?`, parentID).Scan(&parentParent)
		if err == sql.ErrNoRows {
			return fmt.Errorf("series record %s does not exist", parentID)
		}
		if err != nil {
			return fmt.Errorf("querying series record: %w", err)
		}
		if parentParent.Valid {
			return fmt.Errorf("record %s: %w", parentID, ErrRecurrenceDepth)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO events (id, external_id, parent_id, owner_id, created_at)
			VALUES (?, ?, ?, ?, ?)
		`,
			GenerateID(), externalID, parentID, ownerID, r.Now(),
		)
		if err != nil {
			return fmt.Errorf("inserting recurrence: %w", err)
		}

		ev, err = scanEvent(tx.QueryRowContext(ctx, selectEvent+`WHERE external_id = ?`, externalID))
		if err != nil {
			return fmt.Errorf("reading recurrence: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ev, nil
}

// DeleteByExternalID removes an anchor record and, via cascade, its
// discovered recurrence records and attachments. Returns the number of rows
// deleted (0 or 1).
func (r *EventRepository) DeleteByExternalID(ctx context.Context, externalID string) (int64, error) {
	result, err := r.DB().ExecContext(ctx, `DELETE FROM events WHERE external_id = ?`, externalID)
	if err != nil {
		return 0, fmt.Errorf("deleting event: %w", err)
	}

	return result.RowsAffected()
}

// ListSeries retrieves all series records, i.e. every anchor that is not a
// recurrence instance.
func (r *EventRepository) ListSeries(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, selectEvent+`WHERE parent_id IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("querying series events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		ev, err := scanEventRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		events = append(events, *ev)
	}

	return events, rows.Err()
}

// GetWithAttachments retrieves an anchor record together with the assets,
// inventory draws and work orders recorded against it.
// Returns (nil, nil) when no record exists.
func (r *EventRepository) GetWithAttachments(ctx context.Context, externalID string) (*models.EventWithAttachments, error) {
	ev, err := r.GetByExternalID(ctx, externalID)
	if err != nil || ev == nil {
		return nil, err
	}

	out := &models.EventWithAttachments{Event: *ev}

	rows, err := r.DB().QueryContext(ctx, `SELECT asset_id FROM event_assets WHERE event_id = ? ORDER BY asset_id`, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("querying event assets: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var assetID string
		if err := rows.Scan(&assetID); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		out.AssetIDs = append(out.AssetIDs, assetID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB().QueryContext(ctx, `SELECT inventory_id, quantity FROM event_inventory_draws WHERE event_id = ? ORDER BY inventory_id`, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("querying inventory draws: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var draw models.InventoryDraw
		if err := rows.Scan(&draw.InventoryID, &draw.Quantity); err != nil {
			return nil, fmt.Errorf("scanning inventory draw: %w", err)
		}
		out.InventoryDraws = append(out.InventoryDraws, draw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.DB().QueryContext(ctx, `SELECT work_order_id FROM event_work_orders WHERE event_id = ? ORDER BY work_order_id`, ev.ID)
	if err != nil {
		return nil, fmt.Errorf("querying work orders: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var workOrderID string
		if err := rows.Scan(&workOrderID); err != nil {
			return nil, fmt.Errorf("scanning work order: %w", err)
		}
		out.WorkOrderIDs = append(out.WorkOrderIDs, workOrderID)
	}

	return out, rows.Err()
}

// AttachAsset records an asset against an event. Attaching the same asset
// twice is a no-op.
func (r *EventRepository) AttachAsset(ctx context.Context, eventID, assetID string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT OR IGNORE INTO event_assets (event_id, asset_id) VALUES (?, ?)
	`, eventID, assetID)
	if err != nil {
		return fmt.Errorf("attaching asset: %w", err)
	}
	return nil
}

// AttachInventoryDraw records an inventory draw against an event, replacing
// the quantity if the item was already drawn.
func (r *EventRepository) AttachInventoryDraw(ctx context.Context, eventID, inventoryID string, quantity float64) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO event_inventory_draws (event_id, inventory_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT(event_id, inventory_id) DO UPDATE SET quantity = excluded.quantity
	`, eventID, inventoryID, quantity)
	if err != nil {
		return fmt.Errorf("attaching inventory draw: %w", err)
	}
	return nil
}

// AttachWorkOrder records a work order against an event. Attaching the same
// work order twice is a no-op.
func (r *EventRepository) AttachWorkOrder(ctx context.Context, eventID, workOrderID string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT OR IGNORE INTO event_work_orders (event_id, work_order_id) VALUES (?, ?)
	`, eventID, workOrderID)
	if err != nil {
		return fmt.Errorf("attaching work order: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row *sql.Row) (*models.Event, error) {
	return scanEventRow(row)
}

func scanEventRow(row rowScanner) (*models.Event, error) {
	ev := &models.Event{}
	if err := row.Scan(&ev.ID, &ev.ExternalID, &ev.ParentID, &ev.OwnerID, &ev.LocationID, &ev.CreatedAt); err != nil {
		return nil, err
	}
	return ev, nil
}
