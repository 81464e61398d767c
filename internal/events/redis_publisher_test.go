package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func fixedEvent() types.Event {
	return types.Event{
		BaseEvent: types.BaseEvent{
			ID:        "evt-1",
			Type:      types.EventTypeFriendRequestSent,
			UserID:    "alice@example.com",
			Timestamp: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
			Version:   1,
		},
		Metadata: types.EventMetadata{Source: "friendship_service"},
		Payload:  json.RawMessage(`{"from":"alice@example.com","to":"bob@example.com"}`),
	}
}

func TestPublish_SendsToChannel(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(rdb)

	event := fixedEvent()
	data, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("user:bob@example.com", data).SetVal(1)

	err = pub.Publish(context.Background(), "user:bob@example.com", event)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_RejectsInvalidEvent(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(rdb)

	event := fixedEvent()
	event.Type = ""

	err := pub.Publish(context.Background(), "user:bob@example.com", event)
	assert.Error(t, err)
	// Nothing reaches Redis for an invalid event.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_PropagatesRedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	pub := NewRedisPublisher(rdb)

	event := fixedEvent()
	data, err := json.Marshal(event)
	require.NoError(t, err)

	mock.ExpectPublish("user:bob@example.com", data).SetErr(errors.New("connection refused"))

	err = pub.Publish(context.Background(), "user:bob@example.com", event)
	assert.Error(t, err)
}
