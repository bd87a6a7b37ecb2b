package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/usecase"
)

func TestRiskUseCase_Reviews(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	analyzedID := f.analyzed(t, types.LikelihoodPossible, types.ImpactModerate)
	pending := f.submit(t)

	t.Run("not due before the cadence elapses", func(t *testing.T) {
		due, err := f.uc.ListReviewsDue(ctx, testOrgID, testNow.AddDate(0, 2, 0))
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(0)
	})

	t.Run("due once the cadence elapses", func(t *testing.T) {
		due, err := f.uc.ListReviewsDue(ctx, testOrgID, testNow.AddDate(0, 3, 0))
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(1)
		gt.Value(t, due[0].ID).Equal(analyzedID)
	})

	t.Run("mark reviewed with a new cadence", func(t *testing.T) {
		agg, err := f.uc.MarkReviewed(ctx, testOrgID, analyzedID, grcID, types.ReviewFrequencyMonthly)
		gt.NoError(t, err).Required()
		gt.Value(t, agg.Risk.ReviewFrequency).Equal(types.ReviewFrequencyMonthly)
		gt.Value(t, *agg.Risk.NextReviewDue).Equal(testNow.AddDate(0, 1, 0))

		actions := f.actions(t, analyzedID)
		gt.Value(t, actions[len(actions)-1]).Equal(types.HistoryRiskReviewed)
	})

	t.Run("invalid cadence", func(t *testing.T) {
		_, err := f.uc.MarkReviewed(ctx, testOrgID, analyzedID, grcID, "hourly")
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("only analyzed risks are reviewed", func(t *testing.T) {
		_, err := f.uc.MarkReviewed(ctx, testOrgID, pending.ID, grcID, "")
		gt.Error(t, err).Is(usecase.ErrInvalidStateTransition)
	})

	t.Run("deleted risks are never due", func(t *testing.T) {
		_, err := f.uc.DeleteRisk(ctx, testOrgID, analyzedID, grcID)
		gt.NoError(t, err).Required()

		due, err := f.uc.ListReviewsDue(ctx, testOrgID, testNow.AddDate(1, 0, 0))
		gt.NoError(t, err).Required()
		gt.Array(t, due).Length(0)
	})
}

func TestRiskUseCase_RemindReviewsDue(t *testing.T) {
	ctx := context.Background()

	t.Run("notifies the owner of due risks", func(t *testing.T) {
		f := newFixture(t)
		riskID := f.analyzed(t, types.LikelihoodPossible, types.ImpactModerate)
		f.submit(t)
		before := len(f.notifier.Sent())

		sent, err := f.uc.RemindReviewsDue(ctx, testOrgID, testNow.AddDate(0, 3, 0))
		gt.NoError(t, err).Required()
		gt.Number(t, sent).Equal(1)

		notes := f.notifier.Sent()
		gt.Array(t, notes).Length(before + 1).Required()
		last := notes[len(notes)-1]
		gt.Value(t, last.Action).Equal(types.ReminderReviewDue)
		gt.Value(t, last.RecipientID).Equal(ownerID)
		gt.Value(t, last.RiskID).Equal(riskID)
		gt.String(t, last.Message).Contains("2026-04-15")

		actions := f.actions(t, riskID)
		gt.Value(t, actions[len(actions)-1]).Equal(types.HistoryAssessmentApproved)
	})

	t.Run("nothing due", func(t *testing.T) {
		f := newFixture(t)
		f.analyzed(t, types.LikelihoodPossible, types.ImpactModerate)

		sent, err := f.uc.RemindReviewsDue(ctx, testOrgID, testNow)
		gt.NoError(t, err).Required()
		gt.Number(t, sent).Equal(0)
	})

	t.Run("notifier failure is not fatal", func(t *testing.T) {
		f := newFixture(t)
		f.analyzed(t, types.LikelihoodPossible, types.ImpactModerate)
		f.notifier.err = errors.New("slack down")

		sent, err := f.uc.RemindReviewsDue(ctx, testOrgID, testNow.AddDate(1, 0, 0))
		gt.NoError(t, err)
		gt.Number(t, sent).Equal(0)
	})
}
