// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Event is the local anchor record for a remote calendar event. The record
// itself is immutable after creation; everything the calendar shows (title,
// dates, location text) lives on the remote side and is keyed back to this
// record by ExternalID.
type Event struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	OwnerID    string    `json:"owner_id"`
	LocationID *string   `json:"location_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsRecurrence reports whether this record is a discovered instance of a
// recurring series.
func (e *Event) IsRecurrence() bool {
	return e.ParentID != nil
}

// InventoryDraw is a quantity of inventory stock taken out against an event.
type InventoryDraw struct {
	InventoryID string  `json:"inventory_id"`
	Quantity    float64 `json:"quantity"`
}

// EventWithAttachments is an event record joined with everything recorded
// against its internal ID.
type EventWithAttachments struct {
	Event
	AssetIDs       []string        `json:"asset_ids"`
	InventoryDraws []InventoryDraw `json:"inventory_draws"`
	WorkOrderIDs   []string        `json:"work_order_ids"`
}
