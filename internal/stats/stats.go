package stats

import (
	"fmt"
	"time"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
)

// dayFormat keys the reviews-per-day histogram by UTC calendar date.
const dayFormat = "2006-01-02"

// StateCounts breaks a collection down by lifecycle stage.
type StateCounts struct {
	New        int `json:"new"`
	Learning   int `json:"learning"`
	Review     int `json:"review"`
	Relearning int `json:"relearning"`
}

// Summary is an aggregate snapshot of a card collection at a single instant.
//
// The means cover cards that have been reviewed at least once; a collection
// of only new cards reports zero for all three. DueNow counts cards whose due
// time has passed, DueToday everything due before the next UTC midnight, so
// DueToday always includes DueNow.
type Summary struct {
	TotalCards int         `json:"total_cards"`
	States     StateCounts `json:"states"`
	DueNow     int         `json:"due_now"`
	DueToday   int         `json:"due_today"`

	MeanDifficulty     float64 `json:"mean_difficulty"`
	MeanStability      float64 `json:"mean_stability"`
	MeanRetrievability float64 `json:"mean_retrievability"`

	TotalReviews int     `json:"total_reviews"`
	TotalReps    int     `json:"total_reps"`
	TotalLapses  int     `json:"total_lapses"`
	SuccessRate  float64 `json:"success_rate"` // share of reviews not rated Again

	ReviewsPerDay map[string]int `json:"reviews_per_day"`
	AsOf          time.Time      `json:"as_of"`
}

// Snapshot derives a Summary from the given cards and review logs as of now.
// Retrievability is modeled under params. The inputs are not mutated.
func Snapshot(cards []domain.Card, logs []domain.ReviewLog, params srs.Parameters, now time.Time) (*Summary, error) {
	scheduler, err := srs.NewScheduler(params)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}

	summary := &Summary{
		TotalCards:    len(cards),
		ReviewsPerDay: make(map[string]int),
		AsOf:          now,
	}

	endOfDay := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)

	reviewed := 0
	var difficultySum, stabilitySum, retrievabilitySum float64
	for i := range cards {
		card := cards[i]

		switch card.State {
		case domain.StateNew:
			summary.States.New++
		case domain.StateLearning:
			summary.States.Learning++
		case domain.StateReview:
			summary.States.Review++
		case domain.StateRelearning:
			summary.States.Relearning++
		}

		if !card.Due.After(now) {
			summary.DueNow++
		}
		if card.Due.Before(endOfDay) {
			summary.DueToday++
		}

		summary.TotalReps += card.Reps
		summary.TotalLapses += card.Lapses

		if card.Reviewed() {
			reviewed++
			difficultySum += card.Difficulty
			stabilitySum += card.Stability
			retrievabilitySum += scheduler.Retrievability(card, now)
		}
	}

	if reviewed > 0 {
		summary.MeanDifficulty = difficultySum / float64(reviewed)
		summary.MeanStability = stabilitySum / float64(reviewed)
		summary.MeanRetrievability = retrievabilitySum / float64(reviewed)
	}

	successes := 0
	for i := range logs {
		summary.ReviewsPerDay[logs[i].ReviewedAt.UTC().Format(dayFormat)]++
		if logs[i].Rating != domain.RatingAgain {
			successes++
		}
	}
	summary.TotalReviews = len(logs)
	if len(logs) > 0 {
		summary.SuccessRate = float64(successes) / float64(len(logs))
	}

	return summary, nil
}
