package srs

import (
	"math"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// Algorithm evaluates the memory-model formulas for one weight vector. It is
// stateless beyond its configuration, so a single value may be shared across
// goroutines.
type Algorithm struct {
	weights Weights

	// factor makes Retrievability(S, S) equal 0.9: retrievability drops to
	// 90% when elapsed time reaches the stability.
	factor float64
}

// NewAlgorithm builds an Algorithm for the given weights.
func NewAlgorithm(weights Weights) Algorithm {
	return Algorithm{
		weights: weights,
		factor:  math.Pow(0.9, 1/decay) - 1,
	}
}

// Weights returns the weight vector the algorithm was built with.
func (a Algorithm) Weights() Weights {
	return a.weights
}

// Retrievability returns the probability of recall after elapsedDays given
// stability. Zero elapsed time always yields 1; a non-positive stability
// yields 0 for any positive elapsed time.
func (a Algorithm) Retrievability(elapsedDays, stability float64) float64 {
	if elapsedDays <= 0 {
		return 1
	}
	if stability <= 0 {
		return 0
	}
	return math.Pow(1+a.factor*elapsedDays/stability, decay)
}

// Interval returns the number of days after which retrievability decays to
// requestRetention, rounded to the nearest day and clamped to
// [1, maximumInterval].
func (a Algorithm) Interval(stability, requestRetention float64, maximumInterval int) int {
	raw := stability / a.factor * (math.Pow(requestRetention, 1/decay) - 1)
	days := int(math.Round(raw))
	if days < 1 {
		days = 1
	}
	if days > maximumInterval {
		days = maximumInterval
	}
	return days
}

// InitialStability returns the stability assigned by the first rating,
// floored at 0.1 days.
func (a Algorithm) InitialStability(rating domain.Rating) float64 {
	s := a.weights[rating-1]
	return math.Max(0.1, s)
}

// InitialDifficulty returns the difficulty assigned by the first rating,
// clamped to [1, 10].
func (a Algorithm) InitialDifficulty(rating domain.Rating) float64 {
	d := a.weights[4] - math.Exp(a.weights[5]*float64(rating-1)) + 1
	return clampDifficulty(d)
}

// NextDifficulty applies the per-review difficulty delta and the
// mean-reversion toward the initial Good difficulty. The returned flag
// reports whether the [1, 10] clamp changed the value.
func (a Algorithm) NextDifficulty(difficulty float64, rating domain.Rating) (float64, bool) {
	next := difficulty - a.weights[6]*float64(rating-3)
	target := a.InitialDifficulty(domain.RatingGood)
	next = a.weights[7]*target + (1-a.weights[7])*next
	clamped := clampDifficulty(next)
	return clamped, clamped != next
}

// RecallStability returns the stability after a successful review at the
// given retrievability. Growth shrinks as stability rises, as difficulty
// rises, and as retrievability rises; Hard and Easy scale the growth term by
// w15 and w16. The result never drops below the incoming stability; the flag
// reports whether that floor fired.
func (a Algorithm) RecallStability(difficulty, stability, retrievability float64, rating domain.Rating) (float64, bool) {
	hardPenalty := 1.0
	if rating == domain.RatingHard {
		hardPenalty = a.weights[15]
	}
	easyBonus := 1.0
	if rating == domain.RatingEasy {
		easyBonus = a.weights[16]
	}

	growth := math.Exp(a.weights[8]) *
		(11 - difficulty) *
		math.Pow(stability, -a.weights[9]) *
		(math.Exp((1-retrievability)*a.weights[10]) - 1) *
		hardPenalty * easyBonus

	next := stability * (1 + growth)
	if next < stability {
		return stability, true
	}
	return next, false
}

// ForgetStability returns the post-lapse stability. The result never exceeds
// the incoming stability; the flag reports whether that ceiling fired.
func (a Algorithm) ForgetStability(difficulty, stability, retrievability float64) (float64, bool) {
	next := a.weights[11] *
		math.Pow(difficulty, -a.weights[12]) *
		(math.Pow(stability+1, a.weights[13]) - 1) *
		math.Exp((1-retrievability)*a.weights[14])

	if next > stability {
		return stability, true
	}
	return next, false
}

// ShortTermStability returns the same-day stability update, used for reviews
// that arrive less than one day after the previous one. Callers clamp the
// result against the previous stability per rating.
func (a Algorithm) ShortTermStability(stability float64, rating domain.Rating) float64 {
	return stability * math.Exp(a.weights[17]*(float64(rating-3)+a.weights[18]))
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
