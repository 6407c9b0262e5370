package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rmadrazo97/studek-app-sub001/internal/domain"
	"github.com/rmadrazo97/studek-app-sub001/internal/domain/srs"
	"github.com/rmadrazo97/studek-app-sub001/internal/service"
)

var (
	reviewCardFile string
	reviewRating   string
	reviewAt       string
	reviewDuration int
	reviewUser     string
)

// cliUser identifies the local single-user session in review records when no
// explicit user is given.
var cliUser = uuid.NewSHA1(uuid.NameSpaceURL, []byte("srs://cli"))

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Apply one review to a card",
	Long: `Apply a single rating to a card and print the updated card together with
its review record. The output card feeds back into the next review,
preview, or curve call; the review records accumulate into the history
that optimize fits.

Examples:
  srs review --card card.json --rating good --duration 3500
  srs review --card card.json --rating 1 --at 2026-01-15T08:00:00Z`,
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	card, err := loadCard(cmd, reviewCardFile)
	if err != nil {
		return err
	}
	rating, err := parseRating(reviewRating)
	if err != nil {
		return err
	}
	at, err := parseAt(reviewAt)
	if err != nil {
		return err
	}
	userID, err := parseUser(reviewUser)
	if err != nil {
		return err
	}

	srsService, err := srs.NewService(schedulerParams(rootCfg))
	if err != nil {
		return fmt.Errorf("invalid scheduler configuration: %w", err)
	}

	svc := service.NewReviewService(srsService, nil, 0, rootLog)
	answer := service.ReviewAnswer{Rating: rating, DurationMs: reviewDuration}

	result, err := svc.SubmitReview(cmd.Context(), userID, card, answer, at)
	if err != nil {
		return fmt.Errorf("review failed: %w", err)
	}
	return writeJSON(cmd, "", result)
}

// parseRating accepts a rating name (again, hard, good, easy) or its numeric
// value (1-4).
func parseRating(value string) (domain.Rating, error) {
	if n, err := strconv.Atoi(value); err == nil {
		r := domain.Rating(n)
		if !r.IsValid() {
			return 0, fmt.Errorf("%w: %d", domain.ErrInvalidRating, n)
		}
		return r, nil
	}

	var r domain.Rating
	if err := r.UnmarshalText([]byte(strings.ToLower(value))); err != nil {
		return 0, err
	}
	return r, nil
}

// parseUser interprets a --user value; empty means the fixed local user.
func parseUser(value string) (uuid.UUID, error) {
	if value == "" {
		return cliUser, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID %q: %w", value, err)
	}
	return id, nil
}

func init() {
	reviewCmd.Flags().StringVar(&reviewCardFile, "card", "", "Card JSON file (default: stdin)")
	reviewCmd.Flags().StringVar(&reviewRating, "rating", "", "Rating: again, hard, good, easy, or 1-4")
	reviewCmd.Flags().StringVar(&reviewAt, "at", "", "Review instant as RFC3339 (default: now)")
	reviewCmd.Flags().IntVar(&reviewDuration, "duration", 0, "Answer time in milliseconds (0 = unrecorded)")
	reviewCmd.Flags().StringVar(&reviewUser, "user", "", "User UUID for the review record")

	if err := reviewCmd.MarkFlagRequired("rating"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(reviewCmd)
}
