package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// TaskRunnerConfig sizes the worker pool and its queue.
type TaskRunnerConfig struct {
	// WorkerCount is the number of goroutines draining the queue.
	WorkerCount int

	// QueueSize bounds how many submitted tasks may wait for a worker.
	QueueSize int
}

// DefaultTaskRunnerConfig returns the sizing used when the host supplies
// no configuration.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// TaskRunner drains a bounded queue with a fixed pool of workers. Every
// submitted task's progress lands in an in-memory registry that callers
// poll through TaskStatus; nothing is persisted, so a restart forgets all
// history.
type TaskRunner struct {
	queue      *TaskQueue
	registry   *StatusRegistry
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     TaskRunnerConfig
	logger     *slog.Logger
	errHandler func(task Task, err error)
}

// NewTaskRunner builds a runner. A non-positive worker count falls back to
// a single worker rather than a pool that would never drain.
func NewTaskRunner(config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", config.WorkerCount),
			slog.Int("default_count", 1))
		config.WorkerCount = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		queue:      NewTaskQueue(config.QueueSize, logger),
		registry:   NewStatusRegistry(),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
		errHandler: func(task Task, err error) {
			logger.Error("task execution failed",
				slog.String("task_id", task.ID().String()),
				slog.String("task_type", task.Type()),
				slog.Any("error", err))
		},
	}
}

// SetErrorHandler replaces the default log-only failure handler. Call it
// before Start; the handler runs on worker goroutines.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// Submit queues a task for execution. A task that cannot be queued is not
// tracked: the registry only ever describes tasks that entered the system.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.registry.Set(task.ID(), TaskStatusPending)

	if err := r.queue.Enqueue(task); err != nil {
		r.registry.Remove(task.ID())
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// TaskStatus reports the runner's view of a submitted task.
func (r *TaskRunner) TaskStatus(taskID uuid.UUID) (TaskStatus, bool) {
	return r.registry.StatusOf(taskID)
}

// Start launches the worker pool.
func (r *TaskRunner) Start() error {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	return nil
}

// Stop shuts the runner down immediately: in-flight task contexts are
// cancelled and anything still queued is abandoned.
func (r *TaskRunner) Stop() {
	r.cancelFunc()
	r.wg.Wait()
	r.queue.Close()
}

// Drain closes the queue, lets the workers finish everything already
// queued, and waits for them to exit.
func (r *TaskRunner) Drain() {
	r.queue.Close()
	r.wg.Wait()
	r.cancelFunc()
}

// worker consumes the queue until it closes or the runner stops.
func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", slog.Int("worker_id", id))

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("stopping worker", slog.Int("worker_id", id))
			return

		case task, ok := <-r.queue.GetChannel():
			if !ok {
				r.logger.Debug("task channel closed, stopping worker",
					slog.Int("worker_id", id))
				return
			}
			r.processTask(task, id)
		}
	}
}

// processTask executes one task and records the outcome.
func (r *TaskRunner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID),
	)

	r.registry.Set(task.ID(), TaskStatusProcessing)
	logger.Info("processing task")

	// The runner's context flows into the task so Stop cancels in-flight
	// work.
	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", slog.Any("error", err))
		r.registry.Set(task.ID(), TaskStatusFailed)
		r.errHandler(task, err)
		return
	}

	logger.Info("task completed")
	r.registry.Set(task.ID(), TaskStatusCompleted)
}
