package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/optimizer"
)

var (
	optimizeInput  string
	optimizeOutput string
	optimizeTrace  bool
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Fit scheduler weights to a review history",
	Long: `Fit the 19 model weights to a review history by gradient descent on the
cross-entropy between predicted recall and observed outcomes.

The input is a JSON array of review logs, or a simulate collection. Small
histories are not an error: below the configured minimums the starting
weights come back unchanged with iterations 0.

Examples:
  srs optimize --input history.json --output fitted.json
  srs simulate --cards 100 --days 365 | srs optimize`,
	RunE: runOptimize,
}

func runOptimize(cmd *cobra.Command, args []string) error {
	logs, err := loadLogs(cmd, optimizeInput)
	if err != nil {
		return err
	}

	opt := optimizer.New(optimizerConfig(rootCfg))
	result, err := opt.Optimize(cmd.Context(), logs)
	if err != nil {
		return fmt.Errorf("optimization failed: %w", err)
	}

	if !optimizeTrace {
		result.Trace = nil
	}

	rootLog.Info("optimization finished",
		slog.Int("reviews", len(logs)),
		slog.Int("sample_size", result.SampleSize),
		slog.Int("iterations", result.Iterations),
		slog.Float64("log_loss", result.LogLoss),
		slog.Float64("rmse", result.RMSE))

	return writeJSON(cmd, optimizeOutput, result)
}

func init() {
	optimizeCmd.Flags().StringVarP(&optimizeInput, "input", "i", "", "Review log JSON file (default: stdin)")
	optimizeCmd.Flags().StringVarP(&optimizeOutput, "output", "o", "", "Destination file for the result JSON (default: stdout)")
	optimizeCmd.Flags().BoolVar(&optimizeTrace, "trace", false, "Include the per-iteration loss trace in the output")
	rootCmd.AddCommand(optimizeCmd)
}
