package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
)

var retentionInput string

var retentionCmd = &cobra.Command{
	Use:   "retention",
	Short: "Search for the cheapest desired-retention level",
	Long: `Estimate the desired-retention level that minimizes review time per
retained card. A synthetic deck is simulated through a year of reviews
under each candidate level, spending the answer durations and rating
habits observed in the history.

Histories below the minimum sample size return the configured retention
with used_default set; durations must be recorded for a log to count
toward the sample.

Examples:
  srs retention --input history.json`,
	RunE: runRetention,
}

func runRetention(cmd *cobra.Command, args []string) error {
	logs, err := loadLogs(cmd, retentionInput)
	if err != nil {
		return err
	}

	params := schedulerParams(rootCfg)
	opt := optimizer.New(optimizerConfig(rootCfg))

	result, err := opt.OptimalRetention(cmd.Context(), params.Weights, logs)
	if err != nil {
		return fmt.Errorf("retention search failed: %w", err)
	}

	rootLog.Info("retention search finished",
		slog.Float64("retention", result.Retention),
		slog.Bool("used_default", result.UsedDefault),
		slog.Int("sample_size", result.SampleSize))

	return writeJSON(cmd, "", result)
}

func init() {
	retentionCmd.Flags().StringVarP(&retentionInput, "input", "i", "", "Review log JSON file (default: stdin)")
	rootCmd.AddCommand(retentionCmd)
}
