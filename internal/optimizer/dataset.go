package optimizer

import (
	"bytes"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// review is one training observation: a recorded rating together with the
// gap that preceded it and the lifecycle state the card was in.
type review struct {
	rating      domain.Rating
	state       domain.State // state before the review, as recorded
	elapsedDays float64      // days since the previous review, 0 for the first
	label       float64      // 0 for Again, 1 otherwise
	durationMs  float64      // 0 when the log carried no duration
	reviewedAt  time.Time
}

// qualifies reports whether the observation belongs in the training set:
// a day-scale gap on a card already past the learning ladders. Micro-step
// and same-day reviews say nothing about day-scale forgetting.
func (r review) qualifies() bool {
	return r.elapsedDays >= 1 &&
		(r.state == domain.StateReview || r.state == domain.StateRelearning)
}

// dataset holds one learner's review history grouped by card, each
// trajectory in chronological order. The card order is fixed so that every
// replay walks the data identically.
type dataset struct {
	cards map[uuid.UUID][]review
	order []uuid.UUID
}

// buildDataset groups logs by card and sorts each group by review time.
func buildDataset(logs []domain.ReviewLog) *dataset {
	groups := make(map[uuid.UUID][]domain.ReviewLog)
	for _, log := range logs {
		groups[log.CardID] = append(groups[log.CardID], log)
	}

	data := &dataset{
		cards: make(map[uuid.UUID][]review, len(groups)),
		order: make([]uuid.UUID, 0, len(groups)),
	}
	for cardID, cardLogs := range groups {
		slices.SortStableFunc(cardLogs, func(a, b domain.ReviewLog) int {
			return a.ReviewedAt.Compare(b.ReviewedAt)
		})

		reviews := make([]review, len(cardLogs))
		for i, log := range cardLogs {
			var elapsed float64
			if i > 0 {
				elapsed = log.ReviewedAt.Sub(cardLogs[i-1].ReviewedAt).Hours() / 24
				if elapsed < 0 {
					elapsed = 0
				}
			}

			label := 1.0
			if log.Rating == domain.RatingAgain {
				label = 0
			}

			reviews[i] = review{
				rating:      log.Rating,
				state:       log.State,
				elapsedDays: elapsed,
				label:       label,
				durationMs:  float64(log.ReviewDurationMs),
				reviewedAt:  log.ReviewedAt,
			}
		}
		data.cards[cardID] = reviews
		data.order = append(data.order, cardID)
	}

	slices.SortFunc(data.order, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})
	return data
}

// matureReviews counts the observations that qualify for training.
func (d *dataset) matureReviews() int {
	count := 0
	for _, reviews := range d.cards {
		for _, r := range reviews {
			if r.qualifies() {
				count++
			}
		}
	}
	return count
}
