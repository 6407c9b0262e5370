package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewLog
var (
	ErrEmptyLogID         = errors.New("review log ID cannot be empty")
	ErrEmptyLogCardID     = errors.New("review log card ID cannot be empty")
	ErrInvalidLogRating   = errors.New("review log rating must be between 1 and 4")
	ErrInvalidLogState    = errors.New("review log state is not a known lifecycle stage")
	ErrZeroReviewTime     = errors.New("review log timestamp cannot be zero")
	ErrNegativeLogDuration = errors.New("review log duration cannot be negative")
)

// ReviewLog is the immutable record of a single review event: which card was
// reviewed, how the learner rated it, the card's lifecycle state before the
// review, and when it happened. Review logs are append-only; they are the
// optimizer's training set and, together with the current Card state, the
// scheduler's sole external input.
type ReviewLog struct {
	ID         uuid.UUID `json:"id"`
	CardID     uuid.UUID `json:"card_id"`
	Rating     Rating    `json:"rating"`
	State      State     `json:"state"` // Card state before the review
	ReviewedAt time.Time `json:"reviewed_at"`

	// ReviewDurationMs is how long the learner spent answering, in
	// milliseconds. Zero means unrecorded; it is only consulted by the
	// desired-retention simulation.
	ReviewDurationMs int `json:"review_duration_ms,omitempty"`
}

// NewReviewLog creates a review log for a single review event.
func NewReviewLog(cardID uuid.UUID, rating Rating, stateBefore State, reviewedAt time.Time) (*ReviewLog, error) {
	log := &ReviewLog{
		ID:         uuid.New(),
		CardID:     cardID,
		Rating:     rating,
		State:      stateBefore,
		ReviewedAt: reviewedAt,
	}

	if err := log.Validate(); err != nil {
		return nil, err
	}

	return log, nil
}

// Validate checks if the ReviewLog has valid data.
// Returns an error if any field fails validation.
func (l *ReviewLog) Validate() error {
	if l.ID == uuid.Nil {
		return ErrEmptyLogID
	}

	if l.CardID == uuid.Nil {
		return ErrEmptyLogCardID
	}

	if !l.Rating.IsValid() {
		return ErrInvalidLogRating
	}

	if !l.State.IsValid() {
		return ErrInvalidLogState
	}

	if l.ReviewedAt.IsZero() {
		return ErrZeroReviewTime
	}

	if l.ReviewDurationMs < 0 {
		return ErrNegativeLogDuration
	}

	return nil
}
