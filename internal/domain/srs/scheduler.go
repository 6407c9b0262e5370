package srs

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// ErrNilCard is returned by Service methods when the card pointer is nil.
var ErrNilCard = errors.New("card cannot be nil")

// LogEntry records a review as the scheduler saw it: the rating, the state
// the card was in before the transition, the observed and assigned gaps, and
// the resulting memory values. The clamp flags report whether the stability
// or difficulty bounds changed a computed value.
type LogEntry struct {
	CardID            uuid.UUID     `json:"card_id"`
	Rating            domain.Rating `json:"rating"`
	State             domain.State  `json:"state"`
	ElapsedDays       float64       `json:"elapsed_days"`
	ScheduledDays     int           `json:"scheduled_days"`
	Stability         float64       `json:"stability"`
	Difficulty        float64       `json:"difficulty"`
	ReviewedAt        time.Time     `json:"reviewed_at"`
	StabilityClamped  bool          `json:"stability_clamped,omitempty"`
	DifficultyClamped bool          `json:"difficulty_clamped,omitempty"`
}

// Preview holds the four candidate outcomes of reviewing a card now, one per
// rating.
type Preview struct {
	Again domain.Card `json:"again"`
	Hard  domain.Card `json:"hard"`
	Good  domain.Card `json:"good"`
	Easy  domain.Card `json:"easy"`
}

// Scheduler turns review outcomes into next-due schedules. It is a pure
// function of its inputs: the same (card, rating, now) always produces the
// same result, including the fuzzed interval. Safe for concurrent use across
// independent cards; reviews of the same card must be applied sequentially
// by the caller.
type Scheduler struct {
	params Parameters
	algo   Algorithm
}

// NewScheduler validates the parameters and builds a Scheduler. Zero-valued
// fields in params are filled with defaults first, so Parameters{} yields
// the stock configuration.
func NewScheduler(params Parameters) (*Scheduler, error) {
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scheduler parameters: %w", err)
	}
	return &Scheduler{
		params: params,
		algo:   NewAlgorithm(params.Weights),
	}, nil
}

// Parameters returns the effective configuration, defaults filled in.
func (s *Scheduler) Parameters() Parameters {
	return s.params
}

// Algorithm exposes the formula primitives for callers that replay history,
// such as the optimizer.
func (s *Scheduler) Algorithm() Algorithm {
	return s.algo
}

// ReviewCard applies a rating to the card at the given time and returns the
// updated card together with a log entry describing the review. The input
// card is not mutated.
func (s *Scheduler) ReviewCard(card domain.Card, rating domain.Rating, now time.Time) (domain.Card, LogEntry, error) {
	if !rating.IsValid() {
		return domain.Card{}, LogEntry{}, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}
	if err := card.Validate(); err != nil {
		return domain.Card{}, LogEntry{}, fmt.Errorf("invalid card: %w", err)
	}

	prior := card
	next := card.Clone()

	elapsed := 0.0
	if next.LastReview != nil {
		elapsed = now.Sub(*next.LastReview).Hours() / 24
		if elapsed < 0 {
			elapsed = 0
		}
	}

	stabilityClamped, difficultyClamped := s.updateMemory(&next, rating, elapsed)
	interval := s.transition(&next, rating)

	// Fuzz only applies to day-scale intervals, which exist exactly when
	// the card landed in Review.
	if next.State == domain.StateReview {
		days := int(math.Round(interval.Hours() / 24))
		if !s.params.DisableFuzz {
			days = fuzzInterval(days, prior, s.params.FuzzFactor, s.params.MaximumInterval)
		}
		next.ScheduledDays = days
		interval = daysToDuration(days)
	} else {
		next.ScheduledDays = 0
	}

	reviewedAt := now
	next.ElapsedDays = elapsed
	next.Due = now.Add(interval)
	next.LastReview = &reviewedAt
	next.Reps++

	entry := LogEntry{
		CardID:            next.CardID,
		Rating:            rating,
		State:             prior.State,
		ElapsedDays:       elapsed,
		ScheduledDays:     next.ScheduledDays,
		Stability:         next.Stability,
		Difficulty:        next.Difficulty,
		ReviewedAt:        now,
		StabilityClamped:  stabilityClamped,
		DifficultyClamped: difficultyClamped,
	}
	return next, entry, nil
}

// PreviewIntervals simulates all four ratings against the card without
// mutating it, for "how long until next time" UI hints.
func (s *Scheduler) PreviewIntervals(card domain.Card, now time.Time) (Preview, error) {
	var preview Preview
	outcomes := []struct {
		rating domain.Rating
		target *domain.Card
	}{
		{domain.RatingAgain, &preview.Again},
		{domain.RatingHard, &preview.Hard},
		{domain.RatingGood, &preview.Good},
		{domain.RatingEasy, &preview.Easy},
	}
	for _, o := range outcomes {
		next, _, err := s.ReviewCard(card, o.rating, now)
		if err != nil {
			return Preview{}, err
		}
		*o.target = next
	}
	return preview, nil
}

// Retrievability returns the modeled probability that the card can still be
// recalled at the given time. A card that has never been reviewed carries no
// memory state and reports 0.
func (s *Scheduler) Retrievability(card domain.Card, now time.Time) float64 {
	if card.LastReview == nil {
		return 0
	}
	elapsed := now.Sub(*card.LastReview).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	return s.algo.Retrievability(elapsed, card.Stability)
}

// updateMemory recomputes stability and difficulty in place and reports
// whether either monotonicity clamp engaged. The first-ever review assigns
// the initial values instead.
func (s *Scheduler) updateMemory(next *domain.Card, rating domain.Rating, elapsedDays float64) (stabilityClamped, difficultyClamped bool) {
	if next.LastReview == nil || next.State == domain.StateNew {
		next.Stability = s.algo.InitialStability(rating)
		next.Difficulty = s.algo.InitialDifficulty(rating)
		return false, false
	}

	prev := next.Stability

	if elapsedDays < 1 && s.params.EnableShortTerm {
		raw := s.algo.ShortTermStability(prev, rating)
		switch {
		case rating == domain.RatingAgain && raw > prev:
			raw, stabilityClamped = prev, true
		case rating != domain.RatingAgain && raw < prev:
			raw, stabilityClamped = prev, true
		}
		next.Stability = raw
	} else {
		retrievability := s.algo.Retrievability(elapsedDays, prev)
		if rating == domain.RatingAgain {
			next.Stability, stabilityClamped = s.algo.ForgetStability(next.Difficulty, prev, retrievability)
		} else {
			next.Stability, stabilityClamped = s.algo.RecallStability(next.Difficulty, prev, retrievability, rating)
		}
	}

	next.Difficulty, difficultyClamped = s.algo.NextDifficulty(next.Difficulty, rating)
	return stabilityClamped, difficultyClamped
}

// transition advances the card's lifecycle state and returns the raw
// interval until the next review. Every (state, rating) pair has a defined
// outcome.
func (s *Scheduler) transition(next *domain.Card, rating domain.Rating) time.Duration {
	switch next.State {
	case domain.StateNew:
		return s.transitionNew(next, rating)
	case domain.StateLearning:
		return s.transitionLearning(next, rating)
	case domain.StateReview:
		return s.transitionReview(next, rating)
	case domain.StateRelearning:
		return s.transitionRelearning(next, rating)
	default:
		// Unreachable: Validate rejects unknown states.
		return 0
	}
}

func (s *Scheduler) transitionNew(next *domain.Card, rating domain.Rating) time.Duration {
	switch rating {
	case domain.RatingAgain, domain.RatingHard:
		return s.placeLearning(next, 0)
	case domain.RatingGood:
		return s.placeLearning(next, 1)
	default:
		return s.graduateEasy(next)
	}
}

func (s *Scheduler) transitionLearning(next *domain.Card, rating domain.Rating) time.Duration {
	switch rating {
	case domain.RatingAgain:
		return s.placeLearning(next, 0)
	case domain.RatingHard:
		return s.placeLearning(next, next.Step)
	case domain.RatingGood:
		return s.placeLearning(next, next.Step+1)
	default:
		return s.graduateEasy(next)
	}
}

func (s *Scheduler) transitionReview(next *domain.Card, rating domain.Rating) time.Duration {
	if rating == domain.RatingAgain {
		next.Lapses++
		return s.placeRelearning(next, 0)
	}
	next.State = domain.StateReview
	next.Step = 0
	return daysToDuration(s.NextInterval(next.Stability))
}

func (s *Scheduler) transitionRelearning(next *domain.Card, rating domain.Rating) time.Duration {
	switch rating {
	case domain.RatingAgain:
		return s.placeRelearning(next, 0)
	case domain.RatingHard:
		return s.placeRelearning(next, next.Step)
	case domain.RatingGood:
		return s.placeRelearning(next, next.Step+1)
	default:
		return s.graduateRelearning(next)
	}
}

// placeLearning puts the card on the given learning step, or graduates it to
// review when the ladder is empty or the step runs past its end. Graduation
// from learning always gets the fixed graduating interval rather than a
// stability-derived one.
func (s *Scheduler) placeLearning(next *domain.Card, step int) time.Duration {
	steps := s.params.LearningSteps
	if step >= len(steps) {
		next.State = domain.StateReview
		next.Step = 0
		return daysToDuration(s.params.GraduatingInterval)
	}
	next.State = domain.StateLearning
	next.Step = step
	return time.Duration(steps[step]) * time.Minute
}

// placeRelearning mirrors placeLearning for the relearning ladder.
// Graduation resumes the review cycle at the interval implied by the
// post-lapse stability.
func (s *Scheduler) placeRelearning(next *domain.Card, step int) time.Duration {
	steps := s.params.RelearningSteps
	if step >= len(steps) {
		return s.graduateRelearning(next)
	}
	next.State = domain.StateRelearning
	next.Step = step
	return time.Duration(steps[step]) * time.Minute
}

func (s *Scheduler) graduateRelearning(next *domain.Card) time.Duration {
	next.State = domain.StateReview
	next.Step = 0
	return daysToDuration(s.NextInterval(next.Stability))
}

func (s *Scheduler) graduateEasy(next *domain.Card) time.Duration {
	next.State = domain.StateReview
	next.Step = 0
	return daysToDuration(s.params.EasyInterval)
}

// NextInterval returns the review interval in days implied by the given
// stability under the scheduler's retention target, before fuzzing.
func (s *Scheduler) NextInterval(stability float64) int {
	return s.algo.Interval(stability, s.params.RequestRetention, s.params.MaximumInterval)
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
