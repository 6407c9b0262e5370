// Package cli implements the srs command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/config"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
	"github.com/rmadrazo97/studek-app-sub001/internal/platform/logger"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	retention   float64
	maxInterval int
	noFuzz      bool
	weightsFile string

	// Populated by initRoot before any command runs.
	rootCfg *config.Config
	rootLog *slog.Logger

	rootCmd = &cobra.Command{
		Use:   "srs",
		Short: "srs - spaced repetition scheduling and parameter fitting",
		Long: `srs schedules flashcard reviews on a power-law forgetting curve and fits
the model weights to a learner's review history.

Cards and review logs move between commands as JSON: simulate (or a host
application) produces them, optimize fits weights to the history, and
review, preview, curve, replay, and stats work the schedule under the
resulting parameters.

Configuration precedence: flags, then the config file (--config), then
SRS_-prefixed environment variables, then defaults.`,
		Version:           "0.1.0",
		SilenceUsage:      true,
		PersistentPreRunE: initRoot,
	}
)

// Execute runs the CLI. An interrupt cancels the active command's context;
// long loops such as optimize notice between iterations.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file path (default: environment variables only)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default: from config or env)")
	rootCmd.PersistentFlags().Float64Var(&retention, "retention", 0,
		"Target recall probability at review time, in (0, 1)")
	rootCmd.PersistentFlags().IntVar(&maxInterval, "max-interval", 0,
		"Upper bound on scheduled intervals, in days")
	rootCmd.PersistentFlags().BoolVar(&noFuzz, "no-fuzz", false,
		"Disable interval jitter for fully reproducible schedules")
	rootCmd.PersistentFlags().StringVar(&weightsFile, "weights", "",
		"JSON file carrying a 19-weight vector or an optimize result")
}

// initRoot loads configuration and sets up logging before any command runs.
func initRoot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	if err := applyFlagOverrides(cfg); err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	rootCfg = cfg
	rootLog = log
	return nil
}

// applyFlagOverrides lays explicitly set flags over the loaded configuration.
// The scheduler and optimizer constructors re-validate the merged result, so
// an out-of-range override still fails, just at command construction.
func applyFlagOverrides(cfg *config.Config) error {
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if retention > 0 {
		cfg.Scheduler.RequestRetention = retention
	}
	if maxInterval > 0 {
		cfg.Scheduler.MaximumInterval = maxInterval
	}
	if noFuzz {
		cfg.Scheduler.DisableFuzz = true
	}
	if weightsFile != "" {
		weights, err := loadWeightsFile(weightsFile)
		if err != nil {
			return err
		}
		cfg.Scheduler.Weights = weights
	}
	return nil
}

// loadWeightsFile reads a weight vector: either a bare JSON array of 19
// numbers or an optimize result object carrying a "weights" field.
func loadWeightsFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}

	var weights []float64
	if err := json.Unmarshal(data, &weights); err != nil {
		var result struct {
			Weights []float64 `json:"weights"`
		}
		if err := json.Unmarshal(data, &result); err != nil || result.Weights == nil {
			return nil, fmt.Errorf("failed to parse weights file %s", path)
		}
		weights = result.Weights
	}

	if len(weights) != srs.NumWeights {
		return nil, fmt.Errorf("weights file %s carries %d weights, want %d",
			path, len(weights), srs.NumWeights)
	}
	return weights, nil
}

// schedulerParams converts the scheduler section of the configuration into
// engine parameters. An absent weight vector means the stock weights.
func schedulerParams(cfg *config.Config) srs.Parameters {
	params := srs.Parameters{
		RequestRetention:   cfg.Scheduler.RequestRetention,
		MaximumInterval:    cfg.Scheduler.MaximumInterval,
		LearningSteps:      cfg.Scheduler.LearningSteps,
		RelearningSteps:    cfg.Scheduler.RelearningSteps,
		GraduatingInterval: cfg.Scheduler.GraduatingInterval,
		EasyInterval:       cfg.Scheduler.EasyInterval,
		FuzzFactor:         cfg.Scheduler.FuzzFactor,
		DisableFuzz:        cfg.Scheduler.DisableFuzz,
		EnableShortTerm:    cfg.Scheduler.EnableShortTerm,
	}
	if len(cfg.Scheduler.Weights) == srs.NumWeights {
		copy(params.Weights[:], cfg.Scheduler.Weights)
	} else {
		params.Weights = srs.DefaultWeights()
	}
	return params
}

// optimizerConfig converts the optimizer section, carrying the scheduler
// parameters as the descent's starting point.
func optimizerConfig(cfg *config.Config) optimizer.Config {
	return optimizer.Config{
		Parameters:           schedulerParams(cfg),
		LearningRate:         cfg.Optimizer.LearningRate,
		MaxIterations:        cfg.Optimizer.MaxIterations,
		ConvergenceThreshold: cfg.Optimizer.ConvergenceThreshold,
		Epsilon:              cfg.Optimizer.Epsilon,
		L2Lambda:             cfg.Optimizer.L2Lambda,
		MinReviews:           cfg.Optimizer.MinReviews,
		MinMatureReviews:     cfg.Optimizer.MinMatureReviews,
	}
}

// newScheduler builds a scheduler from the loaded configuration.
func newScheduler() (*srs.Scheduler, error) {
	scheduler, err := srs.NewScheduler(schedulerParams(rootCfg))
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler configuration: %w", err)
	}
	return scheduler, nil
}

// Collection is the JSON envelope tying a deck of cards to its review
// history. simulate produces it; stats and replay consume it, and the log
// readers of optimize and retention accept it in place of a bare array.
type Collection struct {
	Cards []domain.Card      `json:"cards"`
	Logs  []domain.ReviewLog `json:"logs"`
}

// readInput reads the named file, or the command's stdin when path is empty
// or "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// decodeLogs accepts either a bare review-log array or a Collection envelope.
func decodeLogs(data []byte) ([]domain.ReviewLog, error) {
	var logs []domain.ReviewLog
	if err := json.Unmarshal(data, &logs); err == nil {
		return logs, nil
	}

	var coll Collection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, fmt.Errorf("failed to parse review logs: %w", err)
	}
	return coll.Logs, nil
}

// loadLogs reads and decodes a review history.
func loadLogs(cmd *cobra.Command, path string) ([]domain.ReviewLog, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	return decodeLogs(data)
}

// loadCard reads and validates a single card.
func loadCard(cmd *cobra.Command, path string) (*domain.Card, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}

	var card domain.Card
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("failed to parse card: %w", err)
	}
	if err := card.Validate(); err != nil {
		return nil, fmt.Errorf("invalid card: %w", err)
	}
	return &card, nil
}

// parseAt interprets an --at value; empty means the current instant.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, want RFC3339: %w", value, err)
	}
	return t.UTC(), nil
}

// writeJSON writes v as indented JSON to the named file, or to the command's
// stdout when path is empty or "-".
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if path == "" || path == "-" {
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
