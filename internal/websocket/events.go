package websocket

import (
	"log"
	"time"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastEventCreated announces a newly anchored event.
func (b *EventBroadcaster) BroadcastEventCreated(externalID, title string) {
	b.broadcast(NewMessage(TypeEventCreated, EventPayload{
		ExternalID: externalID,
		Title:      title,
	}))
}

// BroadcastEventDeleted announces an event removed by the user.
func (b *EventBroadcaster) BroadcastEventDeleted(externalID string) {
	b.broadcast(NewMessage(TypeEventDeleted, EventPayload{
		ExternalID: externalID,
	}))
}

// BroadcastSyncCompleted announces a finished reconciliation pass.
func (b *EventBroadcaster) BroadcastSyncCompleted(recordsRemoved int) {
	b.broadcast(NewMessage(TypeSyncCompleted, SyncPayload{
		Status:         "success",
		RecordsRemoved: recordsRemoved,
		SyncedAt:       time.Now().UTC(),
	}))
}

// BroadcastSyncError announces a failed reconciliation pass.
func (b *EventBroadcaster) BroadcastSyncError(err error) {
	b.broadcast(NewMessage(TypeSyncError, SyncErrorPayload{
		Error:   "sync_error",
		Message: err.Error(),
	}))
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
