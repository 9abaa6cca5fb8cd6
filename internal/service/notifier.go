package service

import (
	"github.com/google/uuid"

	"github.com/juajobs/juajobs-backend/internal/logger"
)

// Notifier pushes an event to a user. The WebSocket hub implements it;
// the hub also persists the event through its notification saver.
type Notifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data any) error
}

// notify pushes an event and logs the failure. Workflow outcomes never
// depend on notification delivery.
func notify(n Notifier, userID uuid.UUID, event string, data any) {
	if n == nil {
		return
	}
	if err := n.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"user_id": userID,
			"event":   event,
			"error":   err.Error(),
		}).Warn("notification delivery failed")
	}
}
