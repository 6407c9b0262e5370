package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	curveCard    string
	curveAt      string
	curveHorizon int
	curveSamples int
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Sample a card's forgetting curve",
	Long: `Print the card's modeled recall probability at evenly spaced offsets from
the given instant, for plotting how the memory decays under the current
parameters.

Examples:
  srs curve --card card.json --horizon 30 --samples 31`,
	RunE: runCurve,
}

func runCurve(cmd *cobra.Command, args []string) error {
	if curveHorizon < 1 {
		return fmt.Errorf("horizon must be at least 1 day, got %d", curveHorizon)
	}

	card, err := loadCard(cmd, curveCard)
	if err != nil {
		return err
	}
	at, err := parseAt(curveAt)
	if err != nil {
		return err
	}

	scheduler, err := newScheduler()
	if err != nil {
		return err
	}

	points := scheduler.ForgettingCurve(*card, at, curveHorizon, curveSamples)
	if points == nil {
		return errors.New("card has no review history to model")
	}
	return writeJSON(cmd, "", points)
}

func init() {
	curveCmd.Flags().StringVar(&curveCard, "card", "", "Card JSON file (default: stdin)")
	curveCmd.Flags().StringVar(&curveAt, "at", "", "Curve start as RFC3339 (default: now)")
	curveCmd.Flags().IntVar(&curveHorizon, "horizon", 30, "Days to sample past the start")
	curveCmd.Flags().IntVar(&curveSamples, "samples", 31, "Number of evenly spaced samples")
	rootCmd.AddCommand(curveCmd)
}
