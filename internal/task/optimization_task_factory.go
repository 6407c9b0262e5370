package task

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
)

// OptimizationTaskFactory creates OptimizationTask instances bound to a
// fixed review source, result sink, and optimizer configuration.
type OptimizationTaskFactory struct {
	source ReviewSource
	sink   ResultSink
	config optimizer.Config
	logger *slog.Logger
}

// NewOptimizationTaskFactory creates a new factory for OptimizationTasks
func NewOptimizationTaskFactory(
	source ReviewSource,
	sink ResultSink,
	config optimizer.Config,
	logger *slog.Logger,
) *OptimizationTaskFactory {
	return &OptimizationTaskFactory{
		source: source,
		sink:   sink,
		config: config,
		logger: logger.With("component", "optimization_task_factory"),
	}
}

// CreateTask creates a new OptimizationTask for the specified user
func (f *OptimizationTaskFactory) CreateTask(userID uuid.UUID) (Task, error) {
	task, err := NewOptimizationTask(
		userID,
		f.source,
		f.sink,
		f.config,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}
