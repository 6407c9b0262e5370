package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Card
var (
	ErrEmptyCardID          = errors.New("card ID cannot be empty")
	ErrInvalidCardState     = errors.New("card state is not a known lifecycle stage")
	ErrNegativeStep         = errors.New("card step cannot be negative")
	ErrNegativeCounters     = errors.New("card reps and lapses cannot be negative")
	ErrNegativeStability    = errors.New("card stability cannot be negative")
	ErrDifficultyOutOfRange = errors.New("card difficulty must be within [1, 10] once reviewed")
)

// Card is the persistent per-card memory state tracked by the scheduler.
// Difficulty and stability describe the forgetting-curve model; retrievability
// is derived from them at query time and never stored. A card starts in
// StateNew with zero stability and difficulty and is only ever advanced by
// applying review events in order.
type Card struct {
	CardID        uuid.UUID  `json:"card_id"`
	State         State      `json:"state"`
	Step          int        `json:"step"`                 // Index into the active learning/relearning ladder
	Stability     float64    `json:"stability"`            // Days until retrievability decays to the target retention
	Difficulty    float64    `json:"difficulty"`           // Inherent recall difficulty, [1, 10]
	Due           time.Time  `json:"due"`                  // Next scheduled review
	LastReview    *time.Time `json:"last_review,omitempty"` // Absent if never reviewed
	Reps          int        `json:"reps"`                 // Total reviews applied
	Lapses        int        `json:"lapses"`               // Failed recalls while in StateReview
	ElapsedDays   float64    `json:"elapsed_days"`         // Gap observed at the last review (diagnostic)
	ScheduledDays int        `json:"scheduled_days"`       // Interval assigned at the last review (diagnostic)
}

// NewCard creates a card in StateNew that is due for review immediately.
func NewCard(cardID uuid.UUID, now time.Time) (*Card, error) {
	card := &Card{
		CardID: cardID,
		State:  StateNew,
		Due:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.CardID == uuid.Nil {
		return ErrEmptyCardID
	}

	if !c.State.IsValid() {
		return ErrInvalidCardState
	}

	if c.Step < 0 {
		return ErrNegativeStep
	}

	if c.Reps < 0 || c.Lapses < 0 {
		return ErrNegativeCounters
	}

	if c.Stability < 0 {
		return ErrNegativeStability
	}

	if c.LastReview != nil && (c.Difficulty < 1 || c.Difficulty > 10) {
		return ErrDifficultyOutOfRange
	}

	return nil
}

// Clone returns a deep copy of the card. The copy shares no pointers with
// the original, so scheduling a clone can never mutate its source.
func (c Card) Clone() Card {
	clone := c
	if c.LastReview != nil {
		t := *c.LastReview
		clone.LastReview = &t
	}
	return clone
}

// Reviewed reports whether the card has ever been reviewed.
func (c Card) Reviewed() bool {
	return c.LastReview != nil
}
