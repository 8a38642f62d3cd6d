package models

import (
	"time"
)

// Location is a node in the location hierarchy. Label is the display label
// as rendered by the web UI and may contain HTML markup; anything sent to
// the remote calendar must be stripped first.
type Location struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Name      string    `json:"name"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}
