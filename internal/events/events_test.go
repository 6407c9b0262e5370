package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler counts deliveries and returns a configurable error.
type recordingHandler struct {
	lastEvent *TaskRequestEvent
	err       error
	handled   int
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.lastEvent = event
	h.handled++
	return h.err
}

func TestNewTaskRequestEvent(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	event, err := NewTaskRequestEvent("deck_rebuild", payload{Name: "verbs", Count: 40})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, "deck_rebuild", event.Type)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	var decoded payload
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	assert.Equal(t, "verbs", decoded.Name)
	assert.Equal(t, 40, decoded.Count)
}

func TestNewTaskRequestEvent_UnserializablePayload(t *testing.T) {
	_, err := NewTaskRequestEvent("bad", func() {})
	require.Error(t, err)
}

func TestNewOptimizationRequestedEvent(t *testing.T) {
	userID := uuid.New()

	event, err := NewOptimizationRequestedEvent(userID, 137)
	require.NoError(t, err)

	assert.Equal(t, TypeOptimizationRequested, event.Type)
	assert.NotEqual(t, uuid.Nil, event.ID)

	var payload OptimizationRequestedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, userID, payload.UserID)
	assert.Equal(t, 137, payload.ReviewCount)
}

func TestUnmarshalPayloadTypeMismatch(t *testing.T) {
	event, err := NewTaskRequestEvent("typed", map[string]any{"user_id": 12345})
	require.NoError(t, err)

	var payload OptimizationRequestedPayload
	err = event.UnmarshalPayload(&payload)
	require.Error(t, err, "a numeric user_id cannot decode into a UUID")
}

func TestRecordingHandlerContract(t *testing.T) {
	handler := &recordingHandler{}
	event, err := NewOptimizationRequestedEvent(uuid.New(), 5)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Equal(t, 1, handler.handled)
	assert.Equal(t, event, handler.lastEvent)

	handler.err = errors.New("handler error")
	err = handler.HandleEvent(context.Background(), event)
	assert.EqualError(t, err, "handler error")
	assert.Equal(t, 2, handler.handled)
}
