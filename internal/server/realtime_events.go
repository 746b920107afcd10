package server

import (
	"context"
	"errors"

	"kumatter/internal/middleware"
	"kumatter/internal/notifications"
)

// Event types pushed over /api/ws.
const (
	EventPostCreated   = "post_created"
	EventLikeUpdated   = "like_updated"
	EventFollowUpdated = "follow_updated"
)

var errRealtimeUnavailable = errors.New("realtime notifications unavailable")

// publishUserEvent sends an event to every connection of userID. Events go
// through Redis when a notifier is configured so every instance's hub sees
// them; the local hub receives them back through its subscription. Without
// Redis they reach this instance's connections only.
func (s *Server) publishUserEvent(userID uint, eventType string, payload interface{}) {
	message, err := notifications.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		middleware.Logger.Error("failed to encode event", "type", eventType, "error", err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishUser(context.Background(), userID, message); err != nil {
			middleware.Logger.Warn("failed to publish event", "type", eventType, "user_id", userID, "error", err)
		}
		return
	}
	s.hub.Broadcast(userID, message)
}

func (s *Server) publishBroadcastEvent(eventType string, payload interface{}) {
	message, err := notifications.Event{Type: eventType, Payload: payload}.Encode()
	if err != nil {
		middleware.Logger.Error("failed to encode event", "type", eventType, "error", err)
		return
	}
	if s.notifier != nil {
		if err := s.notifier.PublishBroadcast(context.Background(), message); err != nil {
			middleware.Logger.Warn("failed to publish event", "type", eventType, "error", err)
		}
		return
	}
	s.hub.BroadcastAll(message)
}
