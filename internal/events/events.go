package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TypeOptimizationRequested asks for a parameter-fitting pass over one
// user's accumulated review history.
const TypeOptimizationRequested = "optimization_requested"

// TaskRequestEvent asks some registered handler to start a background
// task. The payload stays opaque JSON, so emitting packages never import
// the task implementations that consume it.
type TaskRequestEvent struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewTaskRequestEvent wraps payload in an event of the given type.
func NewTaskRequestEvent(eventType string, payload any) (*TaskRequestEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   raw,
		CreatedAt: time.Now(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *TaskRequestEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// OptimizationRequestedPayload is the payload of a
// TypeOptimizationRequested event.
type OptimizationRequestedPayload struct {
	// UserID identifies whose review history should be fitted.
	UserID uuid.UUID `json:"user_id"`

	// ReviewCount is the user's review tally at emit time.
	ReviewCount int `json:"review_count"`
}

// NewOptimizationRequestedEvent builds an optimization request for one
// user.
func NewOptimizationRequestedEvent(userID uuid.UUID, reviewCount int) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypeOptimizationRequested, OptimizationRequestedPayload{
		UserID:      userID,
		ReviewCount: reviewCount,
	})
}

// EventHandler consumes events. Handlers that do not recognize an event's
// type are expected to ignore it without error.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter publishes events to whoever is registered to handle them.
type EventEmitter interface {
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
