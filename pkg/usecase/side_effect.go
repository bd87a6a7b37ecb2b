package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/utils/async"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

const auditEntityRisk = "risk"

// CacheKeys returns the derived view keys of an organization that must be
// dropped whenever one of its risks changes
func CacheKeys(orgID types.OrganizationID) []string {
	return []string{
		fmt.Sprintf("grc:%s:dashboard", orgID),
		fmt.Sprintf("grc:%s:heatmap", orgID),
	}
}

var actionMessages = map[types.HistoryAction]string{
	types.HistoryRiskSubmitted:             "was submitted",
	types.HistoryRiskValidated:             "was validated and needs an assessment",
	types.HistoryRiskRejected:              "was rejected as not a risk",
	types.HistoryAssessmentStarted:         "is assigned to you for assessment",
	types.HistoryAssessmentSubmitted:       "has an assessment waiting for GRC approval",
	types.HistoryAssessmentApproved:        "was analyzed and needs a treatment decision",
	types.HistoryAssessmentDeclined:        "has an assessment that needs revision",
	types.HistoryAssessmentRevised:         "was analyzed and needs a treatment decision",
	types.HistoryTreatmentDecided:          "has a treatment decision",
	types.HistoryExecutiveApproverAssigned: "needs your executive approval",
	types.HistoryExecutiveApproved:         "treatment was approved by the executive",
	types.HistoryExecutiveDenied:           "treatment was denied by the executive",
	types.HistoryMitigationUpdated:         "has a mitigation status update",
	types.HistoryMitigationCompleted:       "mitigation is complete",
	types.HistoryMitigationCancelled:       "mitigation was cancelled and needs a new decision",
	types.HistoryRiskReviewed:              "was reviewed",
	types.HistoryRiskDeleted:               "was deleted",
	types.ReminderReviewDue:                "is due for its periodic review",
}

// recipientOf returns the actor who is responsible for the next step after action
func recipientOf(action types.HistoryAction, agg *model.RiskAggregate) string {
	risk := agg.Risk
	switch action {
	case types.HistoryRiskValidated, types.HistoryAssessmentStarted, types.HistoryAssessmentDeclined:
		return risk.RiskAssessorID

	case types.HistoryRiskRejected:
		return risk.ReporterID

	case types.HistoryAssessmentSubmitted, types.HistoryMitigationUpdated, types.HistoryMitigationCompleted:
		return risk.GRCSMEID

	case types.HistoryAssessmentApproved, types.HistoryAssessmentRevised,
		types.HistoryExecutiveApproved, types.HistoryExecutiveDenied,
		types.HistoryMitigationCancelled:
		return risk.RiskOwnerID

	case types.HistoryExecutiveApproverAssigned:
		if agg.Treatment != nil {
			return agg.Treatment.ExecutiveApproverID
		}

	case types.HistoryTreatmentDecided:
		if agg.Treatment != nil && agg.Treatment.Status == types.TreatmentStatusIdentifyExecutiveApprover {
			return risk.GRCSMEID
		}
	}
	return ""
}

func newAuditLog(h *model.RiskHistory, risk *model.Risk) *model.AuditLog {
	changes := map[string]any{}
	if h.Before != nil {
		changes["before"] = map[string]any(h.Before)
	}
	if h.After != nil {
		changes["after"] = map[string]any(h.After)
	}

	return &model.AuditLog{
		ID:             model.NewID(),
		OrganizationID: h.OrganizationID,
		UserID:         h.ActorID,
		Action:         h.Action.String(),
		EntityType:     auditEntityRisk,
		EntityID:       strconv.FormatInt(h.RiskID, 10),
		Description:    fmt.Sprintf("%s %s", risk.Code, actionMessages[h.Action]),
		Changes:        changes,
		CreatedAt:      h.CreatedAt,
	}
}

func newNotification(org *model.Organization, h *model.RiskHistory, agg *model.RiskAggregate) *model.Notification {
	risk := agg.Risk
	return &model.Notification{
		OrganizationID: org.ID,
		RiskID:         risk.ID,
		RiskCode:       risk.Code,
		RiskTitle:      risk.Title,
		RecipientID:    recipientOf(h.Action, agg),
		Channel:        org.NotificationChannel,
		Action:         h.Action,
		Message:        fmt.Sprintf("%s %q %s", risk.Code, risk.Title, actionMessages[h.Action]),
	}
}

// afterCommit dispatches audit, notification and cache invalidation for a
// committed transition. Each handler logs its own failure and none of them
// affects the committed state.
func (uc *RiskUseCase) afterCommit(ctx context.Context, org *model.Organization, agg *model.RiskAggregate, h *model.RiskHistory) {
	if h == nil {
		return
	}

	audit := uc.repo.AuditLog()
	handlers := []func(ctx context.Context) error{
		sideEffect("audit", h, func(ctx context.Context) error {
			return audit.Put(ctx, newAuditLog(h, agg.Risk))
		}),
	}

	if uc.notifier != nil {
		n := newNotification(org, h, agg)
		if n.RecipientID != "" || n.Channel != "" {
			handlers = append(handlers, sideEffect("notify", h, func(ctx context.Context) error {
				return uc.notifier.Notify(ctx, n)
			}))
		}
	}

	if uc.cache != nil {
		handlers = append(handlers, sideEffect("invalidate_cache", h, func(ctx context.Context) error {
			return uc.cache.Invalidate(ctx, CacheKeys(org.ID)...)
		}))
	}

	uc.dispatch(ctx, func(ctx context.Context) error {
		return async.Fanout(ctx, handlers...)
	})
}

func sideEffect(name string, h *model.RiskHistory, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			logging.From(ctx).Warn("side effect failed",
				"side_effect", name,
				"action", h.Action,
				"risk_id", h.RiskID,
				"error", err.Error())
			return goerr.Wrap(err, "side effect failed", goerr.V("side_effect", name))
		}
		return nil
	}
}
