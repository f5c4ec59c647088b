package outbox_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/svenhofer/timegrid/internal/shared/domain"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/eventbus"
	"github.com/svenhofer/timegrid/internal/shared/infrastructure/outbox"
)

func TestNewMessageFromDomainEvent(t *testing.T) {
	aggregateID := uuid.New()
	event := domain.NewBaseEvent(aggregateID, "meeting", "meetings.meeting.created")

	msg, err := outbox.NewMessage(event)
	require.NoError(t, err)

	assert.Equal(t, event.EventID(), msg.EventID)
	assert.Equal(t, aggregateID, msg.AggregateID)
	assert.Equal(t, "meeting", msg.AggregateType)
	assert.Equal(t, "meetings.meeting.created", msg.RoutingKey)
	assert.Equal(t, "meetings.meeting.created", msg.EventType)
	assert.Equal(t, event.OccurredAt(), msg.CreatedAt)
	assert.False(t, msg.IsPublished())

	var envelope eventbus.ConsumedEvent
	require.NoError(t, json.Unmarshal(msg.Payload, &envelope))
	assert.Equal(t, event.EventID(), envelope.EventID)
	assert.Equal(t, aggregateID, envelope.AggregateID)
	assert.Equal(t, "meetings.meeting.created", envelope.RoutingKey)
}

func TestMessageCanRetry(t *testing.T) {
	msg := &outbox.Message{RetryCount: 2}
	assert.True(t, msg.CanRetry(3))
	assert.False(t, msg.CanRetry(2))
}
