package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/scoring"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

type DecisionInput struct {
	Decision      types.TreatmentDecision `json:"decision"`
	Justification string                  `json:"justification"`

	MitigationDescription string     `json:"mitigation_description"`
	MitigationTargetDate  *time.Time `json:"mitigation_target_date"`
	TransferTo            string     `json:"transfer_to"`
	TransferCost          *float64   `json:"transfer_cost"`
	AvoidanceStrategy     string     `json:"avoidance_strategy"`
	AcceptanceRationale   string     `json:"acceptance_rationale"`
	AcceptanceExpiry      *time.Time `json:"acceptance_expiry"`
}

// apply validates the input and writes only the fields of the chosen decision
func (x DecisionInput) apply(t *model.RiskTreatment) error {
	if !x.Decision.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid treatment decision",
			goerr.V(FieldKey, "decision"), goerr.V("decision", x.Decision))
	}
	if isBlank(x.Justification) {
		return validationError("justification", "justification is required")
	}

	t.ClearDecisionFields()
	switch x.Decision {
	case types.TreatmentDecisionMitigate:
		if isBlank(x.MitigationDescription) {
			return validationError("mitigation_description", "mitigation description is required")
		}
		if x.MitigationTargetDate == nil || x.MitigationTargetDate.IsZero() {
			return validationError("mitigation_target_date", "mitigation target date is required")
		}
		target := *x.MitigationTargetDate
		t.MitigationDescription = x.MitigationDescription
		t.MitigationTargetDate = &target

	case types.TreatmentDecisionTransfer:
		if isBlank(x.TransferTo) {
			return validationError("transfer_to", "transfer target is required")
		}
		if x.TransferCost != nil {
			if *x.TransferCost < 0 {
				return validationError("transfer_cost", "transfer cost must not be negative")
			}
			cost := *x.TransferCost
			t.TransferCost = &cost
		}
		t.TransferTo = x.TransferTo

	case types.TreatmentDecisionAvoid:
		if isBlank(x.AvoidanceStrategy) {
			return validationError("avoidance_strategy", "avoidance strategy is required")
		}
		t.AvoidanceStrategy = x.AvoidanceStrategy

	case types.TreatmentDecisionAccept:
		t.AcceptanceRationale = x.AcceptanceRationale
		if isBlank(t.AcceptanceRationale) {
			t.AcceptanceRationale = x.Justification
		}
		if x.AcceptanceExpiry != nil {
			expiry := *x.AcceptanceExpiry
			t.AcceptanceExpiry = &expiry
		}
	}

	t.Decision = x.Decision
	t.Justification = x.Justification
	return nil
}

// SubmitDecision records the treatment decision and routes it by the inherent risk level
func (uc *RiskUseCase) SubmitDecision(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input DecisionInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		t, err := requireTreatment(agg, types.TreatmentStatusDecisionReview)
		if err != nil {
			return nil, err
		}
		level := agg.Risk.InherentRisk
		if !level.IsValid() {
			return nil, goerr.Wrap(ErrIntegrityFault, "analyzed risk has no inherent risk level",
				goerr.V(RiskIDKey, agg.Risk.ID))
		}
		before := model.Snapshot{"treatment_status": t.Status.String()}

		if err := input.apply(t); err != nil {
			return nil, err
		}

		decidedAt := now
		t.DecidedAt = &decidedAt
		t.ExecutiveApprovalRequired = scoring.RequiresExecutiveApproval(level, t.Decision)
		t.ExecutiveApproverID = ""
		t.ExecutiveApprovalStatus = ""
		t.ExecutiveNotes = ""
		t.ExecutiveDecidedAt = nil
		t.CompletedAt = nil

		t.Status = scoring.NextTreatmentStatus(level, t.Decision, nil)
		if t.Status == types.TreatmentStatusMitigationInProgress {
			t.MitigationStatus = types.MitigationStatusOnTrack
			t.MitigationProgress = 0
			t.LastProgressUpdateAt = nil
		} else {
			t.MitigationStatus = ""
			t.MitigationProgress = 0
		}
		if t.Status.IsTerminal() {
			completedAt := now
			t.CompletedAt = &completedAt
		}

		return &model.RiskChange{
			Risk:      agg.Risk,
			Treatment: t,
			History: &model.RiskHistory{
				Action: types.HistoryTreatmentDecided,
				Before: before,
				After: model.Snapshot{
					"treatment_status":            t.Status.String(),
					"decision":                    t.Decision.String(),
					"executive_approval_required": t.ExecutiveApprovalRequired,
				},
				Note: t.Justification,
			},
		}, nil
	})
}

// AssignExecutiveApprover names the executive who approves a high risk decision
func (uc *RiskUseCase) AssignExecutiveApprover(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID, approverID string) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		t, err := requireTreatment(agg, types.TreatmentStatusIdentifyExecutiveApprover)
		if err != nil {
			return nil, err
		}
		if isBlank(approverID) {
			return nil, validationError("approver_id", "executive approver is required")
		}

		t.ExecutiveApproverID = approverID
		t.ExecutiveApprovalStatus = types.ApprovalStatusPending
		t.Status = types.TreatmentStatusExecutiveApproval

		return &model.RiskChange{
			Risk:      agg.Risk,
			Treatment: t,
			History: &model.RiskHistory{
				Action: types.HistoryExecutiveApproverAssigned,
				Before: model.Snapshot{"treatment_status": types.TreatmentStatusIdentifyExecutiveApprover.String()},
				After: model.Snapshot{
					"treatment_status": t.Status.String(),
					"approver_id":      approverID,
				},
			},
		}, nil
	})
}

type ExecutiveDecisionInput struct {
	Approved     bool   `json:"approved"`
	Notes        string `json:"notes"`
	DeniedReason string `json:"denied_reason"`
}

// SubmitExecutiveDecision records the executive's answer. A denial sends the
// treatment back to decision review with the decision kept for reference.
func (uc *RiskUseCase) SubmitExecutiveDecision(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input ExecutiveDecisionInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		t, err := requireTreatment(agg, types.TreatmentStatusExecutiveApproval)
		if err != nil {
			return nil, err
		}
		if !input.Approved && isBlank(input.DeniedReason) {
			return nil, validationError("denied_reason", "reason is required to deny a treatment")
		}

		decidedAt := now
		t.ExecutiveDecidedAt = &decidedAt
		approved := input.Approved
		t.Status = scoring.NextTreatmentStatus(agg.Risk.InherentRisk, t.Decision, &approved)

		action, note := types.HistoryExecutiveApproved, input.Notes
		if approved {
			t.ExecutiveApprovalStatus = types.ApprovalStatusApproved
			t.ExecutiveNotes = input.Notes
		} else {
			action, note = types.HistoryExecutiveDenied, input.DeniedReason
			t.ExecutiveApprovalStatus = types.ApprovalStatusDenied
			t.ExecutiveNotes = input.DeniedReason
		}
		if t.Status.IsTerminal() {
			completedAt := now
			t.CompletedAt = &completedAt
		}

		return &model.RiskChange{
			Risk:      agg.Risk,
			Treatment: t,
			History: &model.RiskHistory{
				Action: action,
				Before: model.Snapshot{"treatment_status": types.TreatmentStatusExecutiveApproval.String()},
				After: model.Snapshot{
					"treatment_status": t.Status.String(),
					"approval_status":  t.ExecutiveApprovalStatus.String(),
					"decision":         t.Decision.String(),
				},
				Note: note,
			},
		}, nil
	})
}

type MitigationUpdateInput struct {
	Status             types.MitigationStatus `json:"status"`
	Progress           *int                   `json:"progress"`
	Notes              string                 `json:"notes"`
	DelayReason        string                 `json:"delay_reason"`
	CancellationReason string                 `json:"cancellation_reason"`
	ResidualLikelihood types.Likelihood       `json:"residual_likelihood"`
	ResidualImpact     types.Impact           `json:"residual_impact"`
	NextReviewDate     *time.Time             `json:"next_review_date"`
}

// UpdateMitigationProgress appends a progress update and routes the mitigation by its status
func (uc *RiskUseCase) UpdateMitigationProgress(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input MitigationUpdateInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		t, err := requireTreatment(agg,
			types.TreatmentStatusMitigationInProgress,
			types.TreatmentStatusMitigationStatusUpdate,
			types.TreatmentStatusMitigationStatusRouting,
		)
		if err != nil {
			return nil, err
		}
		if !input.Status.IsValid() {
			return nil, goerr.Wrap(ErrValidation, "invalid mitigation status",
				goerr.V(FieldKey, "status"), goerr.V("status", input.Status))
		}
		if input.Progress != nil && (*input.Progress < 0 || *input.Progress > 100) {
			return nil, goerr.Wrap(ErrValidation, "progress must be between 0 and 100",
				goerr.V(FieldKey, "progress"), goerr.V("progress", *input.Progress))
		}

		risk := agg.Risk
		before := model.Snapshot{
			"treatment_status":  t.Status.String(),
			"mitigation_status": t.MitigationStatus.String(),
			"progress":          t.MitigationProgress,
		}
		previous := t.MitigationStatus
		if input.Progress != nil {
			t.MitigationProgress = *input.Progress
		}

		action := types.HistoryMitigationUpdated
		switch input.Status {
		case types.MitigationStatusOnTrack:
			t.Status = types.TreatmentStatusMitigationStatusUpdate

		case types.MitigationStatusDelayed:
			if isBlank(input.DelayReason) {
				return nil, validationError("delay_reason", "delay reason is required")
			}
			t.Status = types.TreatmentStatusMitigationStatusRouting

		case types.MitigationStatusDone:
			if err := validateRating(input.ResidualLikelihood, input.ResidualImpact); err != nil {
				return nil, err
			}
			score, level, err := scoring.Evaluate(input.ResidualLikelihood, input.ResidualImpact)
			if err != nil {
				return nil, goerr.Wrap(ErrValidation, "failed to score residual risk", goerr.V("reason", err.Error()))
			}
			t.ResidualLikelihood = input.ResidualLikelihood
			t.ResidualImpact = input.ResidualImpact
			t.ResidualRiskScore = score
			t.ResidualRiskLevel = level
			t.MitigationProgress = 100
			t.Status = types.TreatmentStatusMitigationComplete
			completedAt := now
			t.CompletedAt = &completedAt
			risk.ResidualRiskScore = score
			risk.ResidualRisk = level
			action = types.HistoryMitigationCompleted

		case types.MitigationStatusCancelled:
			if isBlank(input.CancellationReason) {
				return nil, validationError("cancellation_reason", "cancellation reason is required")
			}
			t.Status = types.TreatmentStatusDecisionReview
			action = types.HistoryMitigationCancelled
		}

		updatedAt := now
		t.MitigationStatus = input.Status
		t.LastProgressUpdateAt = &updatedAt
		if input.NextReviewDate != nil {
			next := *input.NextReviewDate
			t.NextReviewDate = &next
		}

		update := &model.RiskTreatmentUpdate{
			ID:                 model.NewID(),
			RiskID:             risk.ID,
			Type:               types.UpdateTypeFor(input.Status),
			PreviousStatus:     previous,
			NewStatus:          input.Status,
			Progress:           t.MitigationProgress,
			Notes:              input.Notes,
			DelayReason:        input.DelayReason,
			CancellationReason: input.CancellationReason,
			ActorID:            actorID,
			CreatedAt:          now,
		}

		return &model.RiskChange{
			Risk:            risk,
			Treatment:       t,
			TreatmentUpdate: update,
			History: &model.RiskHistory{
				Action: action,
				Before: before,
				After: model.Snapshot{
					"treatment_status":  t.Status.String(),
					"mitigation_status": t.MitigationStatus.String(),
					"progress":          t.MitigationProgress,
				},
				Note: input.Notes,
			},
		}, nil
	})
}
