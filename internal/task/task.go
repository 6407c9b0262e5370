package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypeOptimization names the background task that fits scheduler
// weights to a user's review history.
const TaskTypeOptimization = "parameter_optimization"

// Task is one unit of background work. A task is self-contained: it carries
// its serialized input and knows how to execute itself, so the runner needs
// no knowledge of individual task kinds.
type Task interface {
	// ID identifies this task instance across queue, registry, and logs.
	ID() uuid.UUID

	// Type names the kind of work, e.g. TaskTypeOptimization.
	Type() string

	// Payload returns the serialized task input.
	Payload() []byte

	// Status reports the task's own view of its lifecycle stage.
	Status() TaskStatus

	// Execute performs the work. It runs on a worker goroutine under the
	// runner's context, which is cancelled when the runner stops.
	Execute(ctx context.Context) error
}

// TaskStatus is a task's position in its lifecycle.
type TaskStatus string

// Lifecycle stages, in the order a healthy task moves through them.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)
