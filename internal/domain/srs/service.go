package srs

import (
	"fmt"
	"time"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

// Service is the scheduling seam application code depends on. It wraps a
// Scheduler behind an interface so services can be tested against canned
// outcomes.
type Service interface {
	// ScheduleReview applies a rating to the card at the given time and
	// returns the updated card with its log entry. The input card is not
	// mutated.
	ScheduleReview(card *domain.Card, rating domain.Rating, now time.Time) (*domain.Card, LogEntry, error)

	// PreviewIntervals simulates all four ratings without mutating the
	// card.
	PreviewIntervals(card *domain.Card, now time.Time) (*Preview, error)

	// Retrievability reports the modeled recall probability for the card
	// at the given time.
	Retrievability(card *domain.Card, now time.Time) float64
}

// schedulerService implements Service on top of a Scheduler.
type schedulerService struct {
	scheduler *Scheduler
}

// NewService builds a Service from the given parameters.
func NewService(params Parameters) (Service, error) {
	scheduler, err := NewScheduler(params)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	return &schedulerService{scheduler: scheduler}, nil
}

// NewDefaultService builds a Service with stock parameters.
func NewDefaultService() (Service, error) {
	return NewService(DefaultParameters())
}

func (s *schedulerService) ScheduleReview(card *domain.Card, rating domain.Rating, now time.Time) (*domain.Card, LogEntry, error) {
	if card == nil {
		return nil, LogEntry{}, ErrNilCard
	}
	next, entry, err := s.scheduler.ReviewCard(*card, rating, now)
	if err != nil {
		return nil, LogEntry{}, err
	}
	return &next, entry, nil
}

func (s *schedulerService) PreviewIntervals(card *domain.Card, now time.Time) (*Preview, error) {
	if card == nil {
		return nil, ErrNilCard
	}
	preview, err := s.scheduler.PreviewIntervals(*card, now)
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

func (s *schedulerService) Retrievability(card *domain.Card, now time.Time) float64 {
	if card == nil {
		return 0
	}
	return s.scheduler.Retrievability(*card, now)
}
