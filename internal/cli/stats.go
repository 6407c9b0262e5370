package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/stats"
)

var (
	statsInput string
	statsAt    string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize a card collection",
	Long: `Print an aggregate snapshot of a collection: per-state counts, due
counts, memory-state means, and a reviews-per-day histogram.

The input is a collection envelope as produced by simulate:
{"cards": [...], "logs": [...]}.

Examples:
  srs stats --input deck.json
  srs simulate | srs stats`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, statsInput)
	if err != nil {
		return err
	}

	var coll Collection
	if err := json.Unmarshal(data, &coll); err != nil {
		return fmt.Errorf("failed to parse collection: %w", err)
	}

	at, err := parseAt(statsAt)
	if err != nil {
		return err
	}

	summary, err := stats.Snapshot(coll.Cards, coll.Logs, schedulerParams(rootCfg), at)
	if err != nil {
		return fmt.Errorf("stats failed: %w", err)
	}
	return writeJSON(cmd, "", summary)
}

func init() {
	statsCmd.Flags().StringVarP(&statsInput, "input", "i", "", "Collection JSON file (default: stdin)")
	statsCmd.Flags().StringVar(&statsAt, "at", "", "Snapshot instant as RFC3339 (default: now)")
	rootCmd.AddCommand(statsCmd)
}
