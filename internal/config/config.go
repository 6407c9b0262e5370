package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Optimizer OptimizerConfig `mapstructure:"optimizer" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
}

// LoggingConfig contains the logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// SchedulerConfig contains the scheduling knobs. Weights is either empty
// (use the stock weights or a previously optimized set supplied elsewhere)
// or a full 19-element vector.
type SchedulerConfig struct {
	Weights            []float64 `mapstructure:"weights"             validate:"omitempty,len=19"`
	RequestRetention   float64   `mapstructure:"request_retention"   validate:"required,gt=0,lt=1"`
	MaximumInterval    int       `mapstructure:"maximum_interval"    validate:"required,gte=1"`
	LearningSteps      []int     `mapstructure:"learning_steps"      validate:"omitempty,dive,gt=0"`
	RelearningSteps    []int     `mapstructure:"relearning_steps"    validate:"omitempty,dive,gt=0"`
	GraduatingInterval int       `mapstructure:"graduating_interval" validate:"required,gte=1"`
	EasyInterval       int       `mapstructure:"easy_interval"       validate:"required,gte=1"`
	FuzzFactor         float64   `mapstructure:"fuzz_factor"         validate:"gte=0,lt=1"`
	DisableFuzz        bool      `mapstructure:"disable_fuzz"`
	EnableShortTerm    bool      `mapstructure:"enable_short_term"`
}

// OptimizerConfig contains the parameter-fitting settings.
type OptimizerConfig struct {
	LearningRate         float64 `mapstructure:"learning_rate"         validate:"required,gt=0"`
	MaxIterations        int     `mapstructure:"max_iterations"        validate:"required,gte=1"`
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold" validate:"required,gt=0"`
	Epsilon              float64 `mapstructure:"epsilon"               validate:"required,gt=0"`
	L2Lambda             float64 `mapstructure:"l2_lambda"             validate:"gte=0"`
	MinReviews           int     `mapstructure:"min_reviews"           validate:"required,gte=1"`
	MinMatureReviews     int     `mapstructure:"min_mature_reviews"    validate:"required,gte=1"`
}

// TaskConfig contains the background task runner settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gte=1"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gte=1"`
}
