package srs

import (
	"time"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// CurvePoint is one sample of a card's forgetting curve.
type CurvePoint struct {
	Days           float64 `json:"days"`
	Retrievability float64 `json:"retrievability"`
}

// ForgettingCurve samples the card's modeled recall probability at evenly
// spaced offsets from now through now+horizonDays, endpoints included.
// Returns nil for a card with no review history or a non-positive horizon.
func (s *Scheduler) ForgettingCurve(card domain.Card, now time.Time, horizonDays, samples int) []CurvePoint {
	if card.LastReview == nil || horizonDays < 1 {
		return nil
	}
	if samples < 2 {
		samples = 2
	}

	base := now.Sub(*card.LastReview).Hours() / 24
	if base < 0 {
		base = 0
	}

	step := float64(horizonDays) / float64(samples-1)
	points := make([]CurvePoint, 0, samples)
	for i := 0; i < samples; i++ {
		offset := float64(i) * step
		points = append(points, CurvePoint{
			Days:           offset,
			Retrievability: s.algo.Retrievability(base+offset, card.Stability),
		})
	}
	return points
}
