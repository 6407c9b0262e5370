package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
)

// Common errors
var (
	ErrNilReviewSource = errors.New("review source cannot be nil")
	ErrNilResultSink   = errors.New("result sink cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
)

// ReviewSource supplies the review history an optimization runs against.
// Implementations decide where the history lives; the task only needs the
// logs themselves.
type ReviewSource interface {
	// ReviewHistory returns every review log recorded for the user.
	ReviewHistory(ctx context.Context, userID uuid.UUID) ([]domain.ReviewLog, error)
}

// ResultSink receives a finished optimization result.
type ResultSink interface {
	// DeliverResult hands the fitted weights and fit metrics back to
	// whoever owns the user's parameters.
	DeliverResult(ctx context.Context, userID uuid.UUID, result optimizer.Result) error
}

// optimizationPayload represents the serialized data stored in the task
type optimizationPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// OptimizationTask implements the Task interface for fitting scheduler
// weights to one user's review history.
type OptimizationTask struct {
	id     uuid.UUID
	userID uuid.UUID
	source ReviewSource
	sink   ResultSink
	opt    *optimizer.Optimizer
	logger *slog.Logger
	status TaskStatus
}

// NewOptimizationTask creates a new optimization task for the given user.
func NewOptimizationTask(
	userID uuid.UUID,
	source ReviewSource,
	sink ResultSink,
	config optimizer.Config,
	logger *slog.Logger,
) (*OptimizationTask, error) {
	// Validate dependencies
	if source == nil {
		return nil, ErrNilReviewSource
	}
	if sink == nil {
		return nil, ErrNilResultSink
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return &OptimizationTask{
		id:     uuid.New(),
		userID: userID,
		source: source,
		sink:   sink,
		opt:    optimizer.New(config),
		logger: logger.With("task_type", TaskTypeOptimization, "user_id", userID),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *OptimizationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *OptimizationTask) Type() string {
	return TaskTypeOptimization
}

// Payload returns the task data as a byte slice
func (t *OptimizationTask) Payload() []byte {
	payload := optimizationPayload{
		UserID: t.userID,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *OptimizationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the optimization task: it loads the user's review history,
// fits the weights, and delivers the result to the sink. Each step updates
// the task status and wraps its failure.
func (t *OptimizationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting parameter optimization task")

	// Check for context cancellation
	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Load the review history
	logs, err := t.source.ReviewHistory(ctx, t.userID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to load review history", "error", err)
		return fmt.Errorf("failed to load review history: %w", err)
	}

	t.logger.Info("loaded review history", "review_count", len(logs))

	// 2. Fit the weights
	result, err := t.opt.Optimize(ctx, logs)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("optimization failed", "error", err)
		return fmt.Errorf("optimization failed: %w", err)
	}

	t.logger.Info("optimization finished",
		"iterations", result.Iterations,
		"sample_size", result.SampleSize,
		"log_loss", result.LogLoss,
		"rmse", result.RMSE)

	// 3. Deliver the result
	if err := t.sink.DeliverResult(ctx, t.userID, result); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to deliver optimization result", "error", err)
		return fmt.Errorf("failed to deliver optimization result: %w", err)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("parameter optimization task completed successfully")
	return nil
}
