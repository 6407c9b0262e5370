package task

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskRunner_Submit(t *testing.T) {
	t.Parallel()

	logger := newDiscardLogger()

	t.Run("successful submission", func(t *testing.T) {
		t.Parallel()

		runner := NewTaskRunner(DefaultTaskRunnerConfig(), logger)

		task := newMockTask()
		err := runner.Submit(context.Background(), task)
		assert.NoError(t, err)

		// The registry sees the task as pending until a worker picks it up
		status, ok := runner.TaskStatus(task.ID())
		require.True(t, ok)
		assert.Equal(t, TaskStatusPending, status)
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()

		config := DefaultTaskRunnerConfig()
		config.QueueSize = 1
		runner := NewTaskRunner(config, logger)

		// Fill the queue
		require.NoError(t, runner.Submit(context.Background(), newMockTask()))

		// The next submission bounces and is not tracked
		rejected := newMockTask()
		err := runner.Submit(context.Background(), rejected)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrQueueFull), "expected ErrQueueFull, got %v", err)

		_, ok := runner.TaskStatus(rejected.ID())
		assert.False(t, ok, "rejected task should not be tracked")
	})
}

func TestTaskRunner_StartAndProcessing(t *testing.T) {
	t.Parallel()

	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 2
	config.QueueSize = 10
	runner := NewTaskRunner(config, newDiscardLogger())

	// Create a channel to verify task execution
	taskCompletedChan := make(chan uuid.UUID, 5)

	var mu sync.Mutex
	taskIDs := make([]uuid.UUID, 0, 3)

	// Add some tasks with custom execution functions
	for i := 0; i < 3; i++ {
		task := newMockTask()

		mu.Lock()
		taskIDs = append(taskIDs, task.ID())
		mu.Unlock()

		task.executeFn = func(ctx context.Context) error {
			taskCompletedChan <- task.ID()
			return nil
		}

		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())

	// Collect completed tasks with a timeout
	completedTasks := make(map[uuid.UUID]bool)
	timeout := time.After(2 * time.Second)

taskWaitLoop:
	for len(completedTasks) < 3 {
		select {
		case taskID := <-taskCompletedChan:
			completedTasks[taskID] = true
		case <-timeout:
			break taskWaitLoop
		}
	}

	// Drain instead of Stop so status updates for in-flight tasks land
	runner.Drain()

	mu.Lock()
	defer mu.Unlock()

	for _, id := range taskIDs {
		assert.True(t, completedTasks[id], "Task %s should have been completed", id)

		status, ok := runner.TaskStatus(id)
		require.True(t, ok)
		assert.Equal(t, TaskStatusCompleted, status)
	}
	assert.Len(t, completedTasks, 3, "All 3 tasks should have been completed")
}

func TestTaskRunner_TaskFailure(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), newDiscardLogger())

	// Create a channel to track error handler calls
	errorChan := make(chan error, 1)
	runner.SetErrorHandler(func(task Task, err error) {
		errorChan <- err
	})

	// Create task that will fail
	task := newMockTask()
	task.executeFn = func(ctx context.Context) error {
		return errors.New("intentional test failure")
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())

	// Wait for error handler to be called
	select {
	case err := <-errorChan:
		assert.Contains(t, err.Error(), "intentional test failure")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for error handler to be called")
	}

	runner.Drain()

	status, ok := runner.TaskStatus(task.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, status)
}

func TestTaskRunner_StopCancelsInFlightTask(t *testing.T) {
	t.Parallel()

	runner := NewTaskRunner(DefaultTaskRunnerConfig(), newDiscardLogger())

	started := make(chan struct{})
	task := newMockTask()
	task.executeFn = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())

	// Wait until the task is actually executing
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for task to start")
	}

	// Stop cancels the execution context and waits for workers
	runner.Stop()

	status, ok := runner.TaskStatus(task.ID())
	require.True(t, ok)
	assert.Equal(t, TaskStatusFailed, status)
}

func TestTaskRunner_DrainProcessesQueuedTasks(t *testing.T) {
	t.Parallel()

	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 1
	runner := NewTaskRunner(config, newDiscardLogger())

	tasks := make([]*mockTask, 0, 5)
	for i := 0; i < 5; i++ {
		task := newMockTask()
		task.executeFn = func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			return nil
		}
		tasks = append(tasks, task)
		require.NoError(t, runner.Submit(context.Background(), task))
	}

	require.NoError(t, runner.Start())
	runner.Drain()

	// Everything queued before the drain ran to completion
	for _, task := range tasks {
		status, ok := runner.TaskStatus(task.ID())
		require.True(t, ok)
		assert.Equal(t, TaskStatusCompleted, status)
	}
}

func TestTaskRunner_InvalidWorkerCount(t *testing.T) {
	t.Parallel()

	config := DefaultTaskRunnerConfig()
	config.WorkerCount = 0
	runner := NewTaskRunner(config, newDiscardLogger())

	// The runner falls back to a single worker and still processes tasks
	done := make(chan struct{})
	task := newMockTask()
	task.executeFn = func(ctx context.Context) error {
		close(done)
		return nil
	}

	require.NoError(t, runner.Submit(context.Background(), task))
	require.NoError(t, runner.Start())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for task execution")
	}

	runner.Drain()
}
