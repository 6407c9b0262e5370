package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

var (
	replayInput  string
	replayCardID string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Rebuild card state by replaying review history",
	Long: `Rebuild current card state from scratch by replaying each card's review
events through the scheduler. Run it after optimize to migrate a
collection onto new weights.

With --card-id the output is that single card; otherwise every card in
the history is rebuilt, in first-appearance order.

Examples:
  srs replay --input history.json --weights fitted.json
  srs replay --input history.json --card-id 70b9fcb3-3f9e-4b34-9b74-8c1e9a2f6d10`,
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
	logs, err := loadLogs(cmd, replayInput)
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		return errors.New("no review history to replay")
	}

	scheduler, err := newScheduler()
	if err != nil {
		return err
	}

	if replayCardID != "" {
		cardID, err := uuid.Parse(replayCardID)
		if err != nil {
			return fmt.Errorf("invalid card ID %q: %w", replayCardID, err)
		}

		var own []domain.ReviewLog
		for _, log := range logs {
			if log.CardID == cardID {
				own = append(own, log)
			}
		}

		card, err := scheduler.Reschedule(cardID, own)
		if err != nil {
			return fmt.Errorf("replay failed: %w", err)
		}
		return writeJSON(cmd, "", card)
	}

	// Group by card, keeping first-appearance order.
	order := make([]uuid.UUID, 0)
	byCard := make(map[uuid.UUID][]domain.ReviewLog)
	for _, log := range logs {
		if _, ok := byCard[log.CardID]; !ok {
			order = append(order, log.CardID)
		}
		byCard[log.CardID] = append(byCard[log.CardID], log)
	}

	cards := make([]domain.Card, 0, len(order))
	for _, cardID := range order {
		card, err := scheduler.Reschedule(cardID, byCard[cardID])
		if err != nil {
			return fmt.Errorf("replay failed for card %s: %w", cardID, err)
		}
		cards = append(cards, card)
	}

	rootLog.Info("replay finished",
		slog.Int("cards", len(cards)),
		slog.Int("reviews", len(logs)))

	return writeJSON(cmd, "", cards)
}

func init() {
	replayCmd.Flags().StringVarP(&replayInput, "input", "i", "", "Review log JSON file (default: stdin)")
	replayCmd.Flags().StringVar(&replayCardID, "card-id", "", "Rebuild only this card")
	rootCmd.AddCommand(replayCmd)
}
