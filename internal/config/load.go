package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and, when configPath
// is non-empty, a YAML config file. Environment variables take precedence
// over file values. Returns a populated Config or an error if loading or
// validation fails.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("logging.level", "info")

	v.SetDefault("scheduler.request_retention", 0.9)
	v.SetDefault("scheduler.maximum_interval", 36500)
	v.SetDefault("scheduler.learning_steps", []int{1, 10})
	v.SetDefault("scheduler.relearning_steps", []int{10})
	v.SetDefault("scheduler.graduating_interval", 1)
	v.SetDefault("scheduler.easy_interval", 4)
	v.SetDefault("scheduler.fuzz_factor", 0.05)

	v.SetDefault("optimizer.learning_rate", 0.05)
	v.SetDefault("optimizer.max_iterations", 200)
	v.SetDefault("optimizer.convergence_threshold", 1e-5)
	v.SetDefault("optimizer.epsilon", 1e-4)
	v.SetDefault("optimizer.l2_lambda", 1e-5)
	v.SetDefault("optimizer.min_reviews", 50)
	v.SetDefault("optimizer.min_mature_reviews", 25)

	v.SetDefault("task.worker_count", 1)
	v.SetDefault("task.queue_size", 100)

	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// Configure environment variables
	v.SetEnvPrefix("SRS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables so they resolve even without
	// matching keys in a config file.
	bindEnvs := []struct {
		key    string
		envVar string
	}{
		{"logging.level", "SRS_LOGGING_LEVEL"},
		{"scheduler.request_retention", "SRS_SCHEDULER_REQUEST_RETENTION"},
		{"scheduler.maximum_interval", "SRS_SCHEDULER_MAXIMUM_INTERVAL"},
		{"scheduler.graduating_interval", "SRS_SCHEDULER_GRADUATING_INTERVAL"},
		{"scheduler.easy_interval", "SRS_SCHEDULER_EASY_INTERVAL"},
		{"scheduler.fuzz_factor", "SRS_SCHEDULER_FUZZ_FACTOR"},
		{"scheduler.disable_fuzz", "SRS_SCHEDULER_DISABLE_FUZZ"},
		{"scheduler.enable_short_term", "SRS_SCHEDULER_ENABLE_SHORT_TERM"},
		{"optimizer.learning_rate", "SRS_OPTIMIZER_LEARNING_RATE"},
		{"optimizer.max_iterations", "SRS_OPTIMIZER_MAX_ITERATIONS"},
		{"optimizer.convergence_threshold", "SRS_OPTIMIZER_CONVERGENCE_THRESHOLD"},
		{"optimizer.epsilon", "SRS_OPTIMIZER_EPSILON"},
		{"optimizer.l2_lambda", "SRS_OPTIMIZER_L2_LAMBDA"},
		{"optimizer.min_reviews", "SRS_OPTIMIZER_MIN_REVIEWS"},
		{"optimizer.min_mature_reviews", "SRS_OPTIMIZER_MIN_MATURE_REVIEWS"},
		{"task.worker_count", "SRS_TASK_WORKER_COUNT"},
		{"task.queue_size", "SRS_TASK_QUEUE_SIZE"},
	}

	for _, env := range bindEnvs {
		if err := v.BindEnv(env.key, env.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", env.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}
