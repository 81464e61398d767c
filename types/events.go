package types

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SaveNTravel/saventravel-backend/errors"
)

type EventType string

const (
	CategoryFriend = "FRIEND"
	CategorySplit  = "SPLIT"
	CategoryTrip   = "TRIP"
)

const (
	// Friendship events
	EventTypeFriendRequestSent     EventType = CategoryFriend + "_REQUEST_SENT"
	EventTypeFriendRequestAccepted EventType = CategoryFriend + "_REQUEST_ACCEPTED"

	// Ledger events
	EventTypeSplitCreated EventType = CategorySplit + "_CREATED"

	// Trip events
	EventTypeTripCreated EventType = CategoryTrip + "_CREATED"
	EventTypeTripJoined  EventType = CategoryTrip + "_JOINED"
	EventTypeTripLeft    EventType = CategoryTrip + "_LEFT"
	EventTypeTripDeleted EventType = CategoryTrip + "_DELETED"
)

// BaseEvent carries the fields common to every published event.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Version   int       `json:"version"`
}

// EventMetadata for tracking and debugging.
type EventMetadata struct {
	CorrelationID string `json:"correlationId,omitempty"`
	Source        string `json:"source"`
}

// Event is the envelope published on the event bus.
type Event struct {
	BaseEvent
	Metadata EventMetadata   `json:"metadata"`
	Payload  json.RawMessage `json:"payload"`
}

// Validate checks the event has the fields every consumer relies on.
func (e Event) Validate() error {
	if e.Type == "" {
		return errors.ValidationFailed("invalid event", "event type is required")
	}
	if e.Timestamp.IsZero() {
		return errors.ValidationFailed("invalid event", "timestamp is required")
	}
	return nil
}

// EventPublisher publishes domain events to a named channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, event Event) error
}
