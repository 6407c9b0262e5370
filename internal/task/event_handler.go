package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmadrazo97/studek-app-sub001/internal/events"
)

// taskFactory is the factory surface the event handler needs.
type taskFactory interface {
	CreateTask(userID uuid.UUID) (Task, error)
}

// taskSubmitter is the runner surface the event handler needs.
type taskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// OptimizationEventHandler implements the events.EventHandler interface:
// it turns optimization_requested events into submitted optimization tasks.
type OptimizationEventHandler struct {
	factory taskFactory
	runner  taskSubmitter
	logger  *slog.Logger
}

// NewOptimizationEventHandler creates a new event handler that uses the given
// factory to create tasks and submits them to the provided runner.
func NewOptimizationEventHandler(
	factory taskFactory,
	runner taskSubmitter,
	logger *slog.Logger,
) *OptimizationEventHandler {
	return &OptimizationEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "optimization_event_handler"),
	}
}

// HandleEvent processes events by creating and submitting optimization tasks.
// Events of other types are ignored so further handler kinds can share the
// same emitter.
func (h *OptimizationEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.TypeOptimizationRequested {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.OptimizationRequestedPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.UserID == uuid.Nil {
		h.logger.Error("invalid user ID in payload", "event_id", event.ID)
		return fmt.Errorf("invalid user ID: %w", ErrEmptyUserID)
	}

	h.logger.Debug("creating optimization task",
		"user_id", payload.UserID,
		"review_count", payload.ReviewCount,
		"event_id", event.ID)
	task, err := h.factory.CreateTask(payload.UserID)
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"user_id", payload.UserID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"user_id", payload.UserID,
		"event_id", event.ID)
	return nil
}

// Compile-time interface check.
var _ events.EventHandler = (*OptimizationEventHandler)(nil)
