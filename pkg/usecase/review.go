package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

// MarkReviewed records a periodic review of an analyzed risk. A non-empty
// frequency replaces the risk's cadence.
func (uc *RiskUseCase) MarkReviewed(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, frequency types.ReviewFrequency) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		risk := agg.Risk
		if err := requireRiskStatus(risk, types.RiskStatusAnalyzed); err != nil {
			return nil, err
		}
		if frequency != "" && !frequency.IsValid() {
			return nil, goerr.Wrap(ErrValidation, "invalid review frequency",
				goerr.V(FieldKey, "review_frequency"), goerr.V("review_frequency", frequency))
		}

		before := model.Snapshot{"review_frequency": risk.ReviewFrequency.String()}
		if risk.NextReviewDue != nil {
			before["next_review_due"] = risk.NextReviewDue.Format(time.RFC3339)
		}

		risk.ScheduleReview(now, frequency)
		after := model.Snapshot{"review_frequency": risk.ReviewFrequency.String()}
		if risk.NextReviewDue != nil {
			after["next_review_due"] = risk.NextReviewDue.Format(time.RFC3339)
		}

		return &model.RiskChange{
			Risk: risk,
			History: &model.RiskHistory{
				Action: types.HistoryRiskReviewed,
				Before: before,
				After:  after,
			},
		}, nil
	})
}

// ListReviewsDue returns analyzed risks whose next review is at or before asOf
func (uc *RiskUseCase) ListReviewsDue(ctx context.Context, orgID types.OrganizationID, asOf time.Time) ([]*model.Risk, error) {
	risks, err := uc.ListRisks(ctx, orgID)
	if err != nil {
		return nil, err
	}

	due := make([]*model.Risk, 0, len(risks))
	for _, risk := range risks {
		if risk.IsReviewDue(asOf) {
			due = append(due, risk)
		}
	}
	return due, nil
}

// RemindReviewsDue notifies the owner of every risk whose review is due at
// asOf and returns the number of reminders sent. A failed reminder is logged
// and does not stop the others.
func (uc *RiskUseCase) RemindReviewsDue(ctx context.Context, orgID types.OrganizationID, asOf time.Time) (int, error) {
	org, err := uc.organization(orgID)
	if err != nil {
		return 0, err
	}
	due, err := uc.ListReviewsDue(ctx, orgID, asOf)
	if err != nil {
		return 0, err
	}
	if uc.notifier == nil {
		logging.From(ctx).Info("reviews due but notification is disabled", "organization_id", orgID, "count", len(due))
		return 0, nil
	}

	sent := 0
	for _, risk := range due {
		recipient := risk.RiskOwnerID
		if recipient == "" {
			recipient = risk.GRCSMEID
		}
		n := &model.Notification{
			OrganizationID: org.ID,
			RiskID:         risk.ID,
			RiskCode:       risk.Code,
			RiskTitle:      risk.Title,
			RecipientID:    recipient,
			Channel:        org.NotificationChannel,
			Action:         types.ReminderReviewDue,
			Message:        fmt.Sprintf("%s %q %s (due %s)", risk.Code, risk.Title, actionMessages[types.ReminderReviewDue], risk.NextReviewDue.Format(time.DateOnly)),
		}
		if err := uc.notifier.Notify(ctx, n); err != nil {
			logging.From(ctx).Warn("failed to send review reminder",
				"risk_id", risk.ID,
				"recipient", recipient,
				"error", err.Error())
			continue
		}
		sent++
	}
	return sent, nil
}
