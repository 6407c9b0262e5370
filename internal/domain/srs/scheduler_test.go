package srs

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
)

var testTime = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

func mustScheduler(t *testing.T, params Parameters) *Scheduler {
	t.Helper()
	scheduler, err := NewScheduler(params)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}
	return scheduler
}

func newTestCard(t *testing.T) domain.Card {
	t.Helper()
	card, err := domain.NewCard(uuid.New(), testTime)
	if err != nil {
		t.Fatalf("Failed to create card: %v", err)
	}
	return *card
}

// cardInState fabricates a card mid-lifecycle for transition tests.
func cardInState(t *testing.T, state domain.State, stability, difficulty float64, lastReviewAgo time.Duration) domain.Card {
	t.Helper()
	card := newTestCard(t)
	last := testTime.Add(-lastReviewAgo)
	card.State = state
	card.Stability = stability
	card.Difficulty = difficulty
	card.LastReview = &last
	card.Due = testTime
	card.Reps = 1
	if state == domain.StateRelearning {
		card.Lapses = 1
	}
	return card
}

func TestReviewCardRejectsInvalidRating(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	_, _, err := scheduler.ReviewCard(newTestCard(t), domain.Rating(0), testTime)
	if !errors.Is(err, domain.ErrInvalidRating) {
		t.Errorf("Expected ErrInvalidRating, got %v", err)
	}
}

func TestReviewCardRejectsInvalidCard(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := newTestCard(t)
	card.State = domain.State(9)
	_, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err == nil {
		t.Error("Expected error for card in an unknown state")
	}
}

func TestStateMachineCompleteness(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	tests := []struct {
		name      string
		card      domain.Card
		rating    domain.Rating
		wantState domain.State
		wantStep  int
	}{
		{"new again", newTestCard(t), domain.RatingAgain, domain.StateLearning, 0},
		{"new hard", newTestCard(t), domain.RatingHard, domain.StateLearning, 0},
		{"new good", newTestCard(t), domain.RatingGood, domain.StateLearning, 1},
		{"new easy", newTestCard(t), domain.RatingEasy, domain.StateReview, 0},

		{"learning again", cardInState(t, domain.StateLearning, 1, 5, 30*time.Minute), domain.RatingAgain, domain.StateLearning, 0},
		{"learning hard", cardInState(t, domain.StateLearning, 1, 5, 30*time.Minute), domain.RatingHard, domain.StateLearning, 0},
		{"learning good", cardInState(t, domain.StateLearning, 1, 5, 30*time.Minute), domain.RatingGood, domain.StateLearning, 1},
		{"learning easy", cardInState(t, domain.StateLearning, 1, 5, 30*time.Minute), domain.RatingEasy, domain.StateReview, 0},

		{"review again", cardInState(t, domain.StateReview, 10, 5, 240*time.Hour), domain.RatingAgain, domain.StateRelearning, 0},
		{"review hard", cardInState(t, domain.StateReview, 10, 5, 240*time.Hour), domain.RatingHard, domain.StateReview, 0},
		{"review good", cardInState(t, domain.StateReview, 10, 5, 240*time.Hour), domain.RatingGood, domain.StateReview, 0},
		{"review easy", cardInState(t, domain.StateReview, 10, 5, 240*time.Hour), domain.RatingEasy, domain.StateReview, 0},

		{"relearning again", cardInState(t, domain.StateRelearning, 2, 6, 30*time.Minute), domain.RatingAgain, domain.StateRelearning, 0},
		{"relearning hard", cardInState(t, domain.StateRelearning, 2, 6, 30*time.Minute), domain.RatingHard, domain.StateRelearning, 0},
		{"relearning good", cardInState(t, domain.StateRelearning, 2, 6, 30*time.Minute), domain.RatingGood, domain.StateReview, 0},
		{"relearning easy", cardInState(t, domain.StateRelearning, 2, 6, 30*time.Minute), domain.RatingEasy, domain.StateReview, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next, entry, err := scheduler.ReviewCard(tt.card, tt.rating, testTime)
			if err != nil {
				t.Fatalf("Expected a defined transition, got %v", err)
			}
			if next.State != tt.wantState {
				t.Errorf("Expected state %s, got %s", tt.wantState, next.State)
			}
			if next.Step != tt.wantStep {
				t.Errorf("Expected step %d, got %d", tt.wantStep, next.Step)
			}
			if next.Reps != tt.card.Reps+1 {
				t.Errorf("Expected reps %d, got %d", tt.card.Reps+1, next.Reps)
			}
			if entry.State != tt.card.State {
				t.Errorf("Expected log to carry pre-review state %s, got %s", tt.card.State, entry.State)
			}
			if entry.Rating != tt.rating {
				t.Errorf("Expected log rating %s, got %s", tt.rating, entry.Rating)
			}
		})
	}
}

func TestNewCardLearningLadder(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	// Again lands on the first step: one minute out.
	next, entry, err := scheduler.ReviewCard(newTestCard(t), domain.RatingAgain, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if want := testTime.Add(1 * time.Minute); !next.Due.Equal(want) {
		t.Errorf("Expected due %v, got %v", want, next.Due)
	}
	if entry.ScheduledDays != 0 {
		t.Errorf("Expected no day-scale interval inside the ladder, got %d", entry.ScheduledDays)
	}

	// Good skips to the second step: ten minutes out.
	next, _, err = scheduler.ReviewCard(newTestCard(t), domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if want := testTime.Add(10 * time.Minute); !next.Due.Equal(want) {
		t.Errorf("Expected due %v, got %v", want, next.Due)
	}
	if next.Stability != scheduler.Algorithm().InitialStability(domain.RatingGood) {
		t.Errorf("Expected initial stability for good, got %v", next.Stability)
	}
}

func TestLearningGraduationUsesGraduatingInterval(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := cardInState(t, domain.StateLearning, 3, 5, 10*time.Minute)
	card.Step = 1 // last rung of the default ladder

	next, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.State != domain.StateReview {
		t.Fatalf("Expected graduation to review, got %s", next.State)
	}
	if next.ScheduledDays != scheduler.Parameters().GraduatingInterval {
		t.Errorf("Expected graduating interval %d, got %d",
			scheduler.Parameters().GraduatingInterval, next.ScheduledDays)
	}
}

func TestEasyGraduatesWithEasyInterval(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	next, _, err := scheduler.ReviewCard(newTestCard(t), domain.RatingEasy, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.State != domain.StateReview {
		t.Fatalf("Expected review state, got %s", next.State)
	}
	// Four days with a 5% fuzz factor spans less than half a day, so the
	// rounded jitter is zero and the interval is exact.
	if next.ScheduledDays != scheduler.Parameters().EasyInterval {
		t.Errorf("Expected easy interval %d, got %d", scheduler.Parameters().EasyInterval, next.ScheduledDays)
	}
}

func TestEmptyLearningLadderGraduatesImmediately(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.LearningSteps = []int{}
	scheduler := mustScheduler(t, params)

	next, _, err := scheduler.ReviewCard(newTestCard(t), domain.RatingAgain, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.State != domain.StateReview {
		t.Fatalf("Expected immediate graduation, got %s", next.State)
	}
	if next.ScheduledDays != params.GraduatingInterval {
		t.Errorf("Expected graduating interval %d, got %d", params.GraduatingInterval, next.ScheduledDays)
	}
	if next.Lapses != 0 {
		t.Errorf("Expected no lapse for a new card, got %d", next.Lapses)
	}
}

func TestReviewLapseEntersRelearning(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := cardInState(t, domain.StateReview, 10, 5, 240*time.Hour)
	next, entry, err := scheduler.ReviewCard(card, domain.RatingAgain, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.State != domain.StateRelearning {
		t.Fatalf("Expected relearning, got %s", next.State)
	}
	if next.Lapses != card.Lapses+1 {
		t.Errorf("Expected lapses %d, got %d", card.Lapses+1, next.Lapses)
	}
	if want := testTime.Add(10 * time.Minute); !next.Due.Equal(want) {
		t.Errorf("Expected due on first relearning step %v, got %v", want, next.Due)
	}
	if next.Stability > card.Stability {
		t.Errorf("Expected post-lapse stability <= %v, got %v", card.Stability, next.Stability)
	}
	if entry.ScheduledDays != 0 {
		t.Errorf("Expected no day-scale interval in relearning, got %d", entry.ScheduledDays)
	}
}

func TestEmptyRelearningLadderStaysInReview(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.RelearningSteps = []int{}
	scheduler := mustScheduler(t, params)

	card := cardInState(t, domain.StateReview, 10, 5, 240*time.Hour)
	next, _, err := scheduler.ReviewCard(card, domain.RatingAgain, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.State != domain.StateReview {
		t.Fatalf("Expected lapse to stay in review with no ladder, got %s", next.State)
	}
	if next.Lapses != card.Lapses+1 {
		t.Errorf("Expected lapses to count, got %d", next.Lapses)
	}
	want := scheduler.Algorithm().Interval(next.Stability, params.RequestRetention, params.MaximumInterval)
	if next.ScheduledDays != want {
		t.Errorf("Expected post-lapse interval %d, got %d", want, next.ScheduledDays)
	}
}

func TestRelearningGraduationResumesAtStabilityInterval(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.DisableFuzz = true
	scheduler := mustScheduler(t, params)

	card := cardInState(t, domain.StateRelearning, 4, 6, 15*time.Minute)
	next, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.State != domain.StateReview {
		t.Fatalf("Expected graduation to review, got %s", next.State)
	}
	want := scheduler.Algorithm().Interval(next.Stability, params.RequestRetention, params.MaximumInterval)
	if next.ScheduledDays != want {
		t.Errorf("Expected interval %d from post-lapse stability, got %d", want, next.ScheduledDays)
	}
}

func TestReviewSuccessGrowsStabilityAndInterval(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.DisableFuzz = true
	scheduler := mustScheduler(t, params)

	card := cardInState(t, domain.StateReview, 10, 5, 240*time.Hour)
	next, entry, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if next.Stability <= card.Stability {
		t.Errorf("Expected stability to grow from %v, got %v", card.Stability, next.Stability)
	}
	want := scheduler.Algorithm().Interval(next.Stability, params.RequestRetention, params.MaximumInterval)
	if next.ScheduledDays != want {
		t.Errorf("Expected exact interval %d with fuzz disabled, got %d", want, next.ScheduledDays)
	}
	if entry.ElapsedDays != 10 {
		t.Errorf("Expected elapsed 10 days, got %v", entry.ElapsedDays)
	}
	if !next.Due.Equal(testTime.Add(time.Duration(want) * 24 * time.Hour)) {
		t.Errorf("Expected due %d days out, got %v", want, next.Due)
	}
}

func TestFuzzDeterministicAndBounded(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.MaximumInterval = 100
	scheduler := mustScheduler(t, params)

	card := cardInState(t, domain.StateReview, 200, 4, 30*24*time.Hour)

	first, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected identical outcomes for identical reviews")
	}
	if first.ScheduledDays < 2 || first.ScheduledDays > params.MaximumInterval {
		t.Errorf("Expected fuzzed interval within [2, %d], got %d", params.MaximumInterval, first.ScheduledDays)
	}
}

func TestFuzzStaysNearBaseInterval(t *testing.T) {
	t.Parallel()

	fuzzed := mustScheduler(t, DefaultParameters())
	exact := mustScheduler(t, func() Parameters {
		p := DefaultParameters()
		p.DisableFuzz = true
		return p
	}())

	for i := 0; i < 50; i++ {
		card := cardInState(t, domain.StateReview, 40, 5, 30*24*time.Hour)

		base, _, err := exact.ReviewCard(card, domain.RatingGood, testTime)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		jittered, _, err := fuzzed.ReviewCard(card, domain.RatingGood, testTime)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		span := int(float64(base.ScheduledDays)*fuzzed.Parameters().FuzzFactor + 0.5)
		diff := jittered.ScheduledDays - base.ScheduledDays
		if diff < -span || diff > span {
			t.Errorf("Expected jitter within ±%d of %d, got %d", span, base.ScheduledDays, jittered.ScheduledDays)
		}
	}
}

func TestShortIntervalsNeverFuzzed(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	// Graduation gives a one-day interval, below the fuzz threshold.
	card := cardInState(t, domain.StateLearning, 1, 5, 10*time.Minute)
	card.Step = 1

	next, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.ScheduledDays != 1 {
		t.Errorf("Expected exact one-day interval, got %d", next.ScheduledDays)
	}
}

func TestPreviewIntervalsDoesNotMutate(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := cardInState(t, domain.StateReview, 10, 5, 240*time.Hour)
	snapshot := card.Clone()

	preview, err := scheduler.PreviewIntervals(card, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !reflect.DeepEqual(card, snapshot) {
		t.Error("Expected preview to leave the card untouched")
	}

	// Each preview leg must match what actually rating the card would do.
	actual, _, err := scheduler.ReviewCard(card, domain.RatingHard, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(preview.Hard, actual) {
		t.Error("Expected preview to match the real outcome")
	}

	if preview.Again.State != domain.StateRelearning {
		t.Errorf("Expected again preview in relearning, got %s", preview.Again.State)
	}
	if preview.Easy.ScheduledDays <= 0 {
		t.Error("Expected a day-scale interval for easy")
	}
}

func TestThreeGoodReviewsThreeDaysApart(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := newTestCard(t)
	now := testTime

	var stabilities []float64
	var dues []time.Time
	var states []domain.State

	current := card
	for i := 0; i < 3; i++ {
		next, _, err := scheduler.ReviewCard(current, domain.RatingGood, now)
		if err != nil {
			t.Fatalf("Review %d failed: %v", i+1, err)
		}
		stabilities = append(stabilities, next.Stability)
		dues = append(dues, next.Due)
		states = append(states, next.State)
		current = next
		now = now.Add(3 * 24 * time.Hour)
	}

	if states[1] != domain.StateReview || states[2] != domain.StateReview {
		t.Errorf("Expected review state from the second rating on, got %v", states)
	}
	if !(stabilities[0] < stabilities[1] && stabilities[1] < stabilities[2]) {
		t.Errorf("Expected strictly increasing stability, got %v", stabilities)
	}
	if !(dues[0].Before(dues[1]) && dues[1].Before(dues[2])) {
		t.Errorf("Expected strictly increasing due dates, got %v", dues)
	}
}

func TestSameDayReviewStandardPath(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.DisableFuzz = true
	scheduler := mustScheduler(t, params)

	// With short-term handling off, a same-day success passes through the
	// standard update at near-total retrievability, which keeps stability
	// at or just above its previous value.
	card := cardInState(t, domain.StateReview, 10, 5, 2*time.Hour)
	next, _, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.Stability < card.Stability {
		t.Errorf("Expected stability >= %v, got %v", card.Stability, next.Stability)
	}
}

func TestShortTermStabilityWhenEnabled(t *testing.T) {
	t.Parallel()

	params := DefaultParameters()
	params.EnableShortTerm = true
	scheduler := mustScheduler(t, params)

	success := cardInState(t, domain.StateReview, 5, 5, 2*time.Hour)
	next, _, err := scheduler.ReviewCard(success, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.Stability <= success.Stability {
		t.Errorf("Expected same-day good to grow stability from %v, got %v", success.Stability, next.Stability)
	}

	failure := cardInState(t, domain.StateReview, 5, 5, 2*time.Hour)
	next, _, err = scheduler.ReviewCard(failure, domain.RatingAgain, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if next.Stability >= failure.Stability {
		t.Errorf("Expected same-day lapse to cut stability from %v, got %v", failure.Stability, next.Stability)
	}
}

func TestElapsedClampedWhenClockRunsBackward(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	card := cardInState(t, domain.StateReview, 10, 5, -time.Hour) // last review an hour in the future
	next, entry, err := scheduler.ReviewCard(card, domain.RatingGood, testTime)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if entry.ElapsedDays != 0 {
		t.Errorf("Expected elapsed clamped to 0, got %v", entry.ElapsedDays)
	}
	if next.Stability < card.Stability {
		t.Errorf("Expected stability not to shrink, got %v", next.Stability)
	}
}

func TestRetrievabilityQuery(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	if got := scheduler.Retrievability(newTestCard(t), testTime); got != 0 {
		t.Errorf("Expected 0 for an unreviewed card, got %v", got)
	}

	card := cardInState(t, domain.StateReview, 10, 5, 240*time.Hour)
	got := scheduler.Retrievability(card, testTime)
	want := scheduler.Algorithm().Retrievability(10, 10)
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNextInterval(t *testing.T) {
	t.Parallel()
	scheduler := mustScheduler(t, DefaultParameters())

	// At the default 0.9 retention target the interval tracks stability.
	if got := scheduler.NextInterval(10); got != 10 {
		t.Errorf("Expected interval 10 for stability 10, got %d", got)
	}
	if got := scheduler.NextInterval(0.2); got != 1 {
		t.Errorf("Expected interval floored at 1 day, got %d", got)
	}

	params := DefaultParameters()
	params.MaximumInterval = 30
	capped := mustScheduler(t, params)
	if got := capped.NextInterval(500); got != 30 {
		t.Errorf("Expected interval capped at 30, got %d", got)
	}
}
