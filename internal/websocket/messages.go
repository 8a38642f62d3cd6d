package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventCreated  MessageType = "event.created"
	TypeEventDeleted  MessageType = "event.deleted"
	TypeSyncCompleted MessageType = "sync.completed"
	TypeSyncError     MessageType = "sync.error"
	TypeNotification  MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// EventPayload is the payload for event.created and event.deleted messages.
type EventPayload struct {
	ExternalID string `json:"external_id"`
	Title      string `json:"title,omitempty"`
}

// SyncPayload is the payload for sync.completed messages.
type SyncPayload struct {
	Status         string    `json:"status"`
	RecordsRemoved int       `json:"records_removed"`
	SyncedAt       time.Time `json:"synced_at"`
}

// SyncErrorPayload is the payload for sync.error messages.
type SyncErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NotificationPayload is the payload for notification messages.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
