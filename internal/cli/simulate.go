package cli

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
)

var (
	simulateCards  int
	simulateDays   int
	simulateSeed   uint64
	simulateStart  string
	simulateOutput string
)

// ratingDurations is the simulator's mean answer time per rating, in
// milliseconds. Failures take longest.
var ratingDurations = [4]float64{8000, 6500, 4200, 2600}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a synthetic review history",
	Long: `Generate a deck of synthetic cards and drive them through the scheduler
for a number of days, producing a collection the other commands can
consume. Recall success is drawn at the configured retention; rating
habits and answer durations follow fixed plausible distributions.

The same seed, start, and parameters always produce the same ratings and
timestamps; card and log IDs are random.

Examples:
  srs simulate --cards 100 --days 365 --output deck.json
  srs simulate | srs stats`,
	RunE: runSimulate,
}

func runSimulate(cmd *cobra.Command, args []string) error {
	if simulateCards < 1 || simulateDays < 1 {
		return fmt.Errorf("cards and days must be positive, got %d and %d",
			simulateCards, simulateDays)
	}

	start, err := parseStart(simulateStart, simulateDays)
	if err != nil {
		return err
	}

	scheduler, err := newScheduler()
	if err != nil {
		return err
	}

	coll, err := synthesize(scheduler, rootCfg.Scheduler.RequestRetention,
		simulateCards, simulateDays, simulateSeed, start)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	rootLog.Info("simulation finished",
		slog.Int("cards", len(coll.Cards)),
		slog.Int("reviews", len(coll.Logs)))

	return writeJSON(cmd, simulateOutput, coll)
}

// parseStart interprets a --start value; empty means the simulated window
// ends near the current instant.
func parseStart(value string, days int) (time.Time, error) {
	if value == "" {
		return time.Now().UTC().AddDate(0, 0, -days).Truncate(time.Hour), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start %q, want RFC3339: %w", value, err)
	}
	return t.UTC(), nil
}

// synthesize drives a deck of fresh cards through the scheduler from start
// until each card's schedule leaves the simulated window, recording a review
// log for every step.
func synthesize(scheduler *srs.Scheduler, retention float64, cards, days int, seed uint64, start time.Time) (*Collection, error) {
	rng := rand.New(rand.NewPCG(seed, 0))
	end := start.AddDate(0, 0, days)

	coll := &Collection{
		Cards: make([]domain.Card, 0, cards),
		Logs:  make([]domain.ReviewLog, 0),
	}

	for i := 0; i < cards; i++ {
		card, err := domain.NewCard(uuid.New(), start)
		if err != nil {
			return nil, err
		}

		current := *card
		now := start
		for !now.After(end) {
			rating := drawRating(rng, current.LastReview == nil, retention)

			log, err := domain.NewReviewLog(current.CardID, rating, current.State, now)
			if err != nil {
				return nil, err
			}
			log.ReviewDurationMs = drawDuration(rng, rating)
			coll.Logs = append(coll.Logs, *log)

			next, _, err := scheduler.ReviewCard(current, rating, now)
			if err != nil {
				return nil, err
			}
			current = next
			now = current.Due
		}
		coll.Cards = append(coll.Cards, current)
	}

	return coll, nil
}

// drawRating mimics a learner: first encounters skew toward Good with some
// failures; later reviews succeed at the target retention.
func drawRating(rng *rand.Rand, first bool, retention float64) domain.Rating {
	if first {
		switch p := rng.Float64(); {
		case p < 0.20:
			return domain.RatingAgain
		case p < 0.35:
			return domain.RatingHard
		case p < 0.90:
			return domain.RatingGood
		default:
			return domain.RatingEasy
		}
	}

	if rng.Float64() >= retention {
		return domain.RatingAgain
	}
	switch p := rng.Float64(); {
	case p < 0.15:
		return domain.RatingHard
	case p < 0.85:
		return domain.RatingGood
	default:
		return domain.RatingEasy
	}
}

// drawDuration jitters the mean duration for the rating by up to ±30%.
func drawDuration(rng *rand.Rand, rating domain.Rating) int {
	jitter := (rng.Float64()*2 - 1) * 0.3
	return int(ratingDurations[rating-1] * (1 + jitter))
}

func init() {
	simulateCmd.Flags().IntVar(&simulateCards, "cards", 10, "Number of cards to simulate")
	simulateCmd.Flags().IntVar(&simulateDays, "days", 90, "Length of the simulated window, in days")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 42, "Random seed for ratings and durations")
	simulateCmd.Flags().StringVar(&simulateStart, "start", "", "Window start as RFC3339 (default: --days ago)")
	simulateCmd.Flags().StringVarP(&simulateOutput, "output", "o", "", "Destination file for the collection JSON (default: stdout)")
	rootCmd.AddCommand(simulateCmd)
}
