package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
	"github.com/rmadrazo97/studek-app-sub001/internal/events"
	"github.com/rmadrazo97/studek-app-sub001/internal/platform/logger"
)

// DefaultOptimizationThreshold is the number of reviews a user accumulates
// before the service requests a parameter optimization for them. It matches
// the optimizer's default minimum sample size so a requested run is never
// trivially gated.
const DefaultOptimizationThreshold = 50

// ReviewAnswer represents a learner's answer to a card review.
type ReviewAnswer struct {
	Rating domain.Rating `json:"rating"` // The rating selected by the learner

	// DurationMs is how long the learner spent answering, in milliseconds.
	// Zero means unrecorded.
	DurationMs int `json:"duration_ms,omitempty"`
}

// ReviewResult bundles everything a single review produces: the card advanced
// to its next schedule, the append-only review record, and the scheduler's
// diagnostic entry for the transition.
type ReviewResult struct {
	Card  *domain.Card      `json:"card"`
	Log   *domain.ReviewLog `json:"log"`
	Entry srs.LogEntry      `json:"entry"`
}

// ReviewService orchestrates a single card review.
type ReviewService interface {
	// SubmitReview applies a learner's answer to a card and returns the
	// updated schedule together with the review record.
	//
	// Parameters:
	//   - ctx: Context for the operation, which can carry a request-scoped logger
	//   - userID: UUID of the user submitting the review
	//   - card: the card being reviewed; it is not mutated
	//   - answer: ReviewAnswer containing the rating (again, hard, good, easy)
	//   - reviewedAt: when the review happened
	//
	// Returns:
	//   - (*ReviewResult, nil): the advanced card, review log, and scheduler entry
	//   - (nil, ErrEmptyUser): if userID is the zero UUID
	//   - (nil, srs.ErrNilCard): if card is nil
	//   - (nil, ErrInvalidAnswer): if the rating is unknown or the duration negative
	//   - (nil, *ServiceError): any scheduling failure, wrapped with operation context
	//
	// Each accepted review also counts toward the user's optimization
	// threshold; crossing it emits an optimization request event. Event
	// emission is fire-and-forget: its failure never fails the review.
	SubmitReview(
		ctx context.Context,
		userID uuid.UUID,
		card *domain.Card,
		answer ReviewAnswer,
		reviewedAt time.Time,
	) (*ReviewResult, error)
}

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	srsService srs.Service
	emitter    events.EventEmitter
	threshold  int
	logger     *slog.Logger

	// mu guards reviewCounts, the per-user tally of reviews accepted since
	// that user's last optimization request.
	mu           sync.Mutex
	reviewCounts map[uuid.UUID]int
}

// NewReviewService creates a new ReviewService implementation.
//
// A nil emitter disables optimization requests; reviews are still processed.
// A threshold of zero or less falls back to DefaultOptimizationThreshold.
func NewReviewService(
	srsService srs.Service,
	emitter events.EventEmitter,
	threshold int,
	logger *slog.Logger,
) ReviewService {
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultOptimizationThreshold
	}

	return &reviewServiceImpl{
		srsService:   srsService,
		emitter:      emitter,
		threshold:    threshold,
		logger:       logger.With(slog.String("component", "review_service")),
		reviewCounts: make(map[uuid.UUID]int),
	}
}

// SubmitReview implements ReviewService.SubmitReview.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	card *domain.Card,
	answer ReviewAnswer,
	reviewedAt time.Time,
) (*ReviewResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, ErrEmptyUser
	}
	if card == nil {
		return nil, srs.ErrNilCard
	}
	if !answer.Rating.IsValid() || answer.DurationMs < 0 {
		log.Warn("invalid review answer",
			slog.String("user_id", userID.String()),
			slog.String("card_id", card.CardID.String()),
			slog.Int("rating", int(answer.Rating)),
			slog.Int("duration_ms", answer.DurationMs))
		return nil, ErrInvalidAnswer
	}

	// The log records the state the card was in when the learner saw it.
	stateBefore := card.State

	updated, entry, err := s.srsService.ScheduleReview(card, answer.Rating, reviewedAt)
	if err != nil {
		log.Error("failed to schedule review",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", card.CardID.String()))
		return nil, NewSubmitReviewError("failed to schedule review", err)
	}

	reviewLog, err := domain.NewReviewLog(card.CardID, answer.Rating, stateBefore, reviewedAt)
	if err != nil {
		return nil, NewSubmitReviewError("failed to record review", err)
	}
	reviewLog.ReviewDurationMs = answer.DurationMs

	s.noteReview(ctx, log, userID)

	log.Debug("review submitted",
		slog.String("user_id", userID.String()),
		slog.String("card_id", card.CardID.String()),
		slog.String("rating", answer.Rating.String()),
		slog.String("state_before", stateBefore.String()),
		slog.String("state_after", updated.State.String()),
		slog.Float64("stability", updated.Stability),
		slog.Float64("difficulty", updated.Difficulty),
		slog.Time("due", updated.Due))

	return &ReviewResult{Card: updated, Log: reviewLog, Entry: entry}, nil
}

// noteReview advances the user's review tally and requests an optimization
// run once the tally reaches the threshold. The tally resets on each request
// so the next threshold counts reviews from zero again.
func (s *reviewServiceImpl) noteReview(ctx context.Context, log *slog.Logger, userID uuid.UUID) {
	if s.emitter == nil {
		return
	}

	s.mu.Lock()
	s.reviewCounts[userID]++
	count := s.reviewCounts[userID]
	if count < s.threshold {
		s.mu.Unlock()
		return
	}
	s.reviewCounts[userID] = 0
	s.mu.Unlock()

	event, err := events.NewOptimizationRequestedEvent(userID, count)
	if err != nil {
		log.Warn("failed to create optimization request event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return
	}

	// Optimization is advisory; a failed emit never fails the review.
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit optimization request event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.Int("review_count", count))
		return
	}

	log.Info("optimization requested",
		slog.String("user_id", userID.String()),
		slog.Int("review_count", count))
}
