package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Queue submission errors.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory task buffer. Enqueue never blocks: a
// full buffer is an error surfaced to the submitter rather than
// backpressure on the submitting goroutine.
type TaskQueue struct {
	tasks  chan Task
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewTaskQueue builds a queue holding at most size tasks.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// Enqueue hands a task to the queue. Returns ErrQueueClosed after Close,
// or ErrQueueFull when the buffer is at capacity.
func (q *TaskQueue) Enqueue(task Task) error {
	// Sending under the mutex keeps Close from slipping between the
	// closed check and the send.
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.Int("queue_len", len(q.tasks)),
			slog.Int("queue_cap", cap(q.tasks)))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Close stops further submissions. Tasks already queued remain readable
// until drained.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed")
	}
}

// GetChannel exposes the consumption side of the queue to workers.
func (q *TaskQueue) GetChannel() <-chan Task {
	return q.tasks
}
