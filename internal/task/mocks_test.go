package task

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
)

// newDiscardLogger returns a logger that swallows all output.
func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// mockTask is a controllable implementation of the Task interface.
type mockTask struct {
	id        uuid.UUID
	taskType  string
	payload   []byte
	status    TaskStatus
	executeFn func(ctx context.Context) error
}

func newMockTask() *mockTask {
	return &mockTask{
		id:        uuid.New(),
		taskType:  "mock_task",
		status:    TaskStatusPending,
		executeFn: func(ctx context.Context) error { return nil },
	}
}

func (t *mockTask) ID() uuid.UUID {
	return t.id
}

func (t *mockTask) Type() string {
	return t.taskType
}

func (t *mockTask) Payload() []byte {
	return t.payload
}

func (t *mockTask) Status() TaskStatus {
	return t.status
}

func (t *mockTask) Execute(ctx context.Context) error {
	return t.executeFn(ctx)
}

// mockReviewSource implements ReviewSource with a pluggable function.
type mockReviewSource struct {
	historyFn func(ctx context.Context, userID uuid.UUID) ([]domain.ReviewLog, error)
	called    bool
}

func (s *mockReviewSource) ReviewHistory(ctx context.Context, userID uuid.UUID) ([]domain.ReviewLog, error) {
	s.called = true
	return s.historyFn(ctx, userID)
}

// mockResultSink implements ResultSink and records what it receives.
type mockResultSink struct {
	deliverFn  func(ctx context.Context, userID uuid.UUID, result optimizer.Result) error
	called     bool
	lastUserID uuid.UUID
	lastResult optimizer.Result
}

func (s *mockResultSink) DeliverResult(ctx context.Context, userID uuid.UUID, result optimizer.Result) error {
	s.called = true
	s.lastUserID = userID
	s.lastResult = result
	if s.deliverFn != nil {
		return s.deliverFn(ctx, userID, result)
	}
	return nil
}
