package srs

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// Replay errors.
var (
	ErrCardMismatch = errors.New("review log belongs to a different card")
	ErrNoHistory    = errors.New("no review history to replay")
)

// Reschedule rebuilds a card's state by replaying its full review history
// from a fresh card. Used after a parameter change, when the stored state
// was produced under an older weight vector. Logs may arrive in any order;
// equal timestamps keep their input order.
func (s *Scheduler) Reschedule(cardID uuid.UUID, logs []domain.ReviewLog) (domain.Card, error) {
	if len(logs) == 0 {
		return domain.Card{}, ErrNoHistory
	}

	sorted := make([]domain.ReviewLog, len(logs))
	copy(sorted, logs)
	slices.SortStableFunc(sorted, func(a, b domain.ReviewLog) int {
		return a.ReviewedAt.Compare(b.ReviewedAt)
	})

	fresh, err := domain.NewCard(cardID, sorted[0].ReviewedAt)
	if err != nil {
		return domain.Card{}, fmt.Errorf("creating replay card: %w", err)
	}

	current := *fresh
	for _, log := range sorted {
		if log.CardID != cardID {
			return domain.Card{}, fmt.Errorf("%w: log %s carries card %s, want %s",
				ErrCardMismatch, log.ID, log.CardID, cardID)
		}
		next, _, err := s.ReviewCard(current, log.Rating, log.ReviewedAt)
		if err != nil {
			return domain.Card{}, fmt.Errorf("replaying log %s: %w", log.ID, err)
		}
		current = next
	}
	return current, nil
}
