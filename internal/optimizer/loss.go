package optimizer

import (
	"math"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
)

// probabilityClamp keeps predictions away from 0 and 1 so the cross-entropy
// stays finite.
const probabilityClamp = 1e-7

// evaluation carries the unregularized fit metrics for one weight vector.
type evaluation struct {
	logLoss float64
	rmse    float64
	samples int
}

// evaluate replays every card trajectory under the given weights and scores
// the predicted retrievability against the observed outcome of each
// qualifying review. The trajectory is driven by the memory-model primitives
// alone; lifecycle bookkeeping does not affect difficulty or stability.
func evaluate(algo srs.Algorithm, enableShortTerm bool, data *dataset) evaluation {
	var bceSum, sqSum float64
	var n int

	for _, cardID := range data.order {
		var stability, difficulty float64
		seen := false

		for _, rev := range data.cards[cardID] {
			if !seen {
				stability = algo.InitialStability(rev.rating)
				difficulty = algo.InitialDifficulty(rev.rating)
				seen = true
				continue
			}

			// Prediction uses the stability before this review.
			retrievability := algo.Retrievability(rev.elapsedDays, stability)

			if rev.qualifies() {
				p := clampProbability(retrievability)
				bceSum += -(rev.label*math.Log(p) + (1-rev.label)*math.Log(1-p))
				diff := p - rev.label
				sqSum += diff * diff
				n++
			}

			stability = nextStability(algo, enableShortTerm, stability, difficulty, retrievability, rev)
			difficulty, _ = algo.NextDifficulty(difficulty, rev.rating)
		}
	}

	if n == 0 {
		return evaluation{}
	}
	return evaluation{
		logLoss: bceSum / float64(n),
		rmse:    math.Sqrt(sqSum / float64(n)),
		samples: n,
	}
}

func nextStability(algo srs.Algorithm, enableShortTerm bool, stability, difficulty, retrievability float64, rev review) float64 {
	if rev.elapsedDays < 1 && enableShortTerm {
		raw := algo.ShortTermStability(stability, rev.rating)
		if rev.rating == domain.RatingAgain {
			return math.Min(stability, raw)
		}
		return math.Max(stability, raw)
	}
	if rev.rating == domain.RatingAgain {
		next, _ := algo.ForgetStability(difficulty, stability, retrievability)
		return next
	}
	next, _ := algo.RecallStability(difficulty, stability, retrievability, rev.rating)
	return next
}

func clampProbability(p float64) float64 {
	return math.Max(probabilityClamp, math.Min(p, 1-probabilityClamp))
}

// lossValue is the optimization objective: mean cross-entropy plus L2
// regularization over the weights.
func lossValue(eval evaluation, weights srs.Weights, l2 float64) float64 {
	reg := 0.0
	for _, w := range weights {
		reg += w * w
	}
	return eval.logLoss + l2*reg
}
