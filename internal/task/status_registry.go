package task

import (
	"sync"

	"github.com/google/uuid"
)

// StatusRegistry tracks the runner-side status of every task that has been
// submitted. It is the in-memory replacement for a persistent task store:
// callers can poll it to find out whether a background optimization has
// finished.
type StatusRegistry struct {
	mu       sync.RWMutex
	statuses map[uuid.UUID]TaskStatus
}

// NewStatusRegistry creates an empty StatusRegistry.
func NewStatusRegistry() *StatusRegistry {
	return &StatusRegistry{
		statuses: make(map[uuid.UUID]TaskStatus),
	}
}

// Set records the status for the given task ID, replacing any earlier value.
func (r *StatusRegistry) Set(taskID uuid.UUID, status TaskStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[taskID] = status
}

// StatusOf reports the recorded status of a task and whether the task is
// known to the registry at all.
func (r *StatusRegistry) StatusOf(taskID uuid.UUID) (TaskStatus, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	status, ok := r.statuses[taskID]
	return status, ok
}

// Remove forgets a task. Used when a submission is rejected before it ever
// reaches the queue.
func (r *StatusRegistry) Remove(taskID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.statuses, taskID)
}

// Counts returns the number of tasks currently recorded per status.
func (r *StatusRegistry) Counts() map[TaskStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[TaskStatus]int, 4)
	for _, status := range r.statuses {
		counts[status]++
	}
	return counts
}
