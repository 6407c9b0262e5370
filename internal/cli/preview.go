package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	previewCard string
	previewAt   string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the four candidate schedules for a card",
	Long: `Simulate rating a card Again, Hard, Good, and Easy at a single instant and
print the resulting schedules. The card itself is not advanced.

Examples:
  srs preview --card card.json
  srs preview --card card.json --at 2026-01-15T08:00:00Z --no-fuzz`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	card, err := loadCard(cmd, previewCard)
	if err != nil {
		return err
	}
	at, err := parseAt(previewAt)
	if err != nil {
		return err
	}

	scheduler, err := newScheduler()
	if err != nil {
		return err
	}

	preview, err := scheduler.PreviewIntervals(*card, at)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}
	return writeJSON(cmd, "", preview)
}

func init() {
	previewCmd.Flags().StringVar(&previewCard, "card", "", "Card JSON file (default: stdin)")
	previewCmd.Flags().StringVar(&previewAt, "at", "", "Review instant as RFC3339 (default: now)")
	rootCmd.AddCommand(previewCmd)
}
