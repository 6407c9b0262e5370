package optimizer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
)

// retentionMinLogs is the smallest history that supports a workload
// simulation; below it the rating and duration estimates are too noisy.
const retentionMinLogs = 512

const (
	simulatedCards       = 1000
	simulatedHorizonDays = 365
)

// retentionCandidates are the desired-retention levels the search compares.
var retentionCandidates = []float64{0.70, 0.75, 0.80, 0.85, 0.90, 0.95}

// RetentionResult is the outcome of a desired-retention search. UsedDefault
// reports that the history was too small to simulate and the configured
// retention came back unchanged.
type RetentionResult struct {
	Retention   float64 `json:"retention"`
	CostMs      float64 `json:"cost_ms"`
	UsedDefault bool    `json:"used_default"`
	SampleSize  int     `json:"sample_size"`
}

// OptimalRetention estimates the desired-retention level that minimizes
// total review time per retained card: it simulates a year of reviews for a
// synthetic deck under each candidate level, spending the learner's observed
// per-rating review durations, and picks the cheapest. Rating probabilities
// come from all logs; durations from the logs that carry one.
func (o *Optimizer) OptimalRetention(ctx context.Context, weights srs.Weights, logs []domain.ReviewLog) (RetentionResult, error) {
	model := buildRatingModel(logs)
	if len(logs) < retentionMinLogs || model.samples < retentionMinLogs {
		return RetentionResult{
			Retention:   o.config.Parameters.RequestRetention,
			UsedDefault: true,
			SampleSize:  model.samples,
		}, nil
	}

	best := RetentionResult{CostMs: math.Inf(1), SampleSize: model.samples}
	for _, candidate := range retentionCandidates {
		if err := ctx.Err(); err != nil {
			return RetentionResult{}, err
		}
		cost, err := o.simulateCost(candidate, weights, model)
		if err != nil {
			return RetentionResult{}, err
		}
		if cost < best.CostMs {
			best.Retention = candidate
			best.CostMs = cost
		}
	}
	return best, nil
}

// simulateCost plays a synthetic deck through one year at the given
// retention and returns the average review time spent per retained card.
// Recall outcomes are drawn at the target retention itself: scheduling at a
// level means the learner succeeds at that rate.
func (o *Optimizer) simulateCost(retention float64, weights srs.Weights, model ratingModel) (float64, error) {
	params := o.config.Parameters.WithWeights(weights)
	params.RequestRetention = retention
	params.DisableFuzz = true

	scheduler, err := srs.NewScheduler(params)
	if err != nil {
		return 0, fmt.Errorf("building simulation scheduler: %w", err)
	}

	rng := rand.New(rand.NewPCG(42, 0))
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, simulatedHorizonDays)

	var totalMs float64
	for i := 0; i < simulatedCards; i++ {
		card, err := domain.NewCard(uuid.New(), start)
		if err != nil {
			return 0, err
		}

		current := *card
		now := start
		for !now.After(end) {
			var rating domain.Rating
			if current.LastReview == nil {
				rating = model.drawFirst(rng)
				totalMs += model.firstCost[rating-1]
			} else {
				if rng.Float64() < retention {
					rating = model.drawRecall(rng)
				} else {
					rating = domain.RatingAgain
				}
				totalMs += model.reviewCost[rating-1]
			}

			next, _, err := scheduler.ReviewCard(current, rating, now)
			if err != nil {
				return 0, err
			}
			current = next
			now = current.Due
		}
	}

	return totalMs / (retention * simulatedCards), nil
}

// ratingModel captures how a learner actually rates cards, split into the
// first review of each card and everything after.
type ratingModel struct {
	firstProbs  [4]float64 // Again..Easy over first reviews
	recallProbs [3]float64 // Hard..Easy among successful later reviews
	firstCost   [4]float64 // mean ms per rating, first reviews
	reviewCost  [4]float64 // mean ms per rating, later reviews
	samples     int        // logs carrying a duration
}

func (m ratingModel) drawFirst(rng *rand.Rand) domain.Rating {
	p := rng.Float64()
	acc := 0.0
	for i := 0; i < 3; i++ {
		acc += m.firstProbs[i]
		if p < acc {
			return domain.Rating(i + 1)
		}
	}
	return domain.RatingEasy
}

func (m ratingModel) drawRecall(rng *rand.Rand) domain.Rating {
	p := rng.Float64()
	acc := 0.0
	for i := 0; i < 2; i++ {
		acc += m.recallProbs[i]
		if p < acc {
			return domain.Rating(i + 2)
		}
	}
	return domain.RatingEasy
}

// buildRatingModel derives rating probabilities and mean durations from the
// history. Probabilities use every log; duration means use only logs that
// carry a positive duration.
func buildRatingModel(logs []domain.ReviewLog) ratingModel {
	data := buildDataset(logs)

	var model ratingModel
	var firstTotal, recallTotal float64
	var firstCount, laterCount [4]float64
	var firstDurSum, laterDurSum [4]float64
	var firstDurCount, laterDurCount [4]float64

	for _, cardID := range data.order {
		for i, rev := range data.cards[cardID] {
			idx := int(rev.rating) - 1
			hasDur := rev.durationMs > 0
			if hasDur {
				model.samples++
			}

			if i == 0 {
				firstTotal++
				firstCount[idx]++
				if hasDur {
					firstDurSum[idx] += rev.durationMs
					firstDurCount[idx]++
				}
				continue
			}

			if hasDur {
				laterDurSum[idx] += rev.durationMs
				laterDurCount[idx]++
			}
			laterCount[idx]++
			if rev.rating != domain.RatingAgain {
				recallTotal++
			}
		}
	}

	if firstTotal > 0 {
		for i := range model.firstProbs {
			model.firstProbs[i] = firstCount[i] / firstTotal
		}
	} else {
		for i := range model.firstProbs {
			model.firstProbs[i] = 0.25
		}
	}

	if recallTotal > 0 {
		for i := range model.recallProbs {
			model.recallProbs[i] = laterCount[i+1] / recallTotal
		}
	} else {
		for i := range model.recallProbs {
			model.recallProbs[i] = 1.0 / 3
		}
	}

	for i := range model.firstCost {
		if firstDurCount[i] > 0 {
			model.firstCost[i] = firstDurSum[i] / firstDurCount[i]
		}
		if laterDurCount[i] > 0 {
			model.reviewCost[i] = laterDurSum[i] / laterDurCount[i]
		}
	}

	return model
}
