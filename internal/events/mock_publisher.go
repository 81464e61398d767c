package events

import (
	"context"
	"sync"

	"github.com/SaveNTravel/saventravel-backend/types"
)

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	// PublishErr, when set, is returned by every Publish call.
	PublishErr error
}

// PublishedEvent pairs an event with the channel it was published on.
type PublishedEvent struct {
	Channel string
	Event   types.Event
}

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event.
func (m *MockPublisher) Publish(_ context.Context, channel string, event types.Event) error {
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, PublishedEvent{Channel: channel, Event: event})
	return nil
}

// Events returns a copy of everything published so far.
func (m *MockPublisher) Events() []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedEvent, len(m.events))
	copy(out, m.events)
	return out
}
