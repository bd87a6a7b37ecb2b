package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/scoring"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

type AssessmentInput struct {
	ThreatDescription   string           `json:"threat_description"`
	Vulnerabilities     string           `json:"vulnerabilities"`
	Likelihood          types.Likelihood `json:"likelihood"`
	LikelihoodRationale string           `json:"likelihood_rationale"`
	Impact              types.Impact     `json:"impact"`
	ImpactRationale     string           `json:"impact_rationale"`
	FinancialImpact     string           `json:"financial_impact"`
	OperationalImpact   string           `json:"operational_impact"`
	ReputationalImpact  string           `json:"reputational_impact"`
	LegalImpact         string           `json:"legal_impact"`
	RecommendedOwnerID  string           `json:"recommended_owner_id"`
	AffectedAssetIDs    []string         `json:"affected_asset_ids"`
	ExistingControlIDs  []string         `json:"existing_control_ids"`
}

func validateRating(l types.Likelihood, i types.Impact) error {
	if !l.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid likelihood",
			goerr.V(FieldKey, "likelihood"), goerr.V("likelihood", l))
	}
	if !i.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid impact",
			goerr.V(FieldKey, "impact"), goerr.V("impact", i))
	}
	return nil
}

// rate recomputes the derived score and level of the assessment
func rate(a *model.RiskAssessment) error {
	if err := validateRating(a.Likelihood, a.Impact); err != nil {
		return err
	}
	score, level, err := scoring.Evaluate(a.Likelihood, a.Impact)
	if err != nil {
		return goerr.Wrap(ErrValidation, "failed to score assessment", goerr.V("reason", err.Error()))
	}
	a.RiskScore = score
	a.CalculatedRiskLevel = level
	return nil
}

// SubmitAssessment stores the assessor's analysis and sends it to GRC approval
func (uc *RiskUseCase) SubmitAssessment(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input AssessmentInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		a, err := requireAssessment(agg, types.AssessmentStatusAssessorAnalysis)
		if err != nil {
			return nil, err
		}

		a.ThreatDescription = input.ThreatDescription
		a.Vulnerabilities = input.Vulnerabilities
		a.Likelihood = input.Likelihood
		a.LikelihoodRationale = input.LikelihoodRationale
		a.Impact = input.Impact
		a.ImpactRationale = input.ImpactRationale
		a.FinancialImpact = input.FinancialImpact
		a.OperationalImpact = input.OperationalImpact
		a.ReputationalImpact = input.ReputationalImpact
		a.LegalImpact = input.LegalImpact
		a.RecommendedOwnerID = input.RecommendedOwnerID
		a.AffectedAssetIDs = model.UniqueIDs(input.AffectedAssetIDs)
		a.ExistingControlIDs = model.UniqueIDs(input.ExistingControlIDs)
		if err := rate(a); err != nil {
			return nil, err
		}
		if a.AssessorID == "" {
			a.AssessorID = actorID
		}
		submittedAt := now
		a.SubmittedAt = &submittedAt
		a.Status = types.AssessmentStatusGRCApproval

		return &model.RiskChange{
			Risk:       agg.Risk,
			Assessment: a,
			History: &model.RiskHistory{
				Action: types.HistoryAssessmentSubmitted,
				Before: model.Snapshot{"assessment_status": types.AssessmentStatusAssessorAnalysis.String()},
				After: model.Snapshot{
					"assessment_status": a.Status.String(),
					"risk_score":        a.RiskScore,
					"risk_level":        a.CalculatedRiskLevel.String(),
				},
			},
		}, nil
	})
}

type ReviewAssessmentInput struct {
	Approved       bool   `json:"approved"`
	Notes          string `json:"notes"`
	DeclinedReason string `json:"declined_reason"`
}

// ReviewAssessment is the GRC decision on a submitted assessment. Approval
// analyzes the risk and opens its treatment.
func (uc *RiskUseCase) ReviewAssessment(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input ReviewAssessmentInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		a, err := requireAssessment(agg, types.AssessmentStatusGRCApproval)
		if err != nil {
			return nil, err
		}
		before := model.Snapshot{
			"status":            agg.Risk.Status.String(),
			"assessment_status": a.Status.String(),
		}
		a.GRCNotes = input.Notes

		if !input.Approved {
			if isBlank(input.DeclinedReason) {
				return nil, validationError("declined_reason", "reason is required to decline an assessment")
			}
			a.DeclinedReason = input.DeclinedReason
			a.Status = types.AssessmentStatusGRCRevision

			return &model.RiskChange{
				Risk:       agg.Risk,
				Assessment: a,
				History: &model.RiskHistory{
					Action: types.HistoryAssessmentDeclined,
					Before: before,
					After:  model.Snapshot{"assessment_status": a.Status.String()},
					Note:   input.DeclinedReason,
				},
			}, nil
		}

		change, err := completeAssessment(agg, actorID, now)
		if err != nil {
			return nil, err
		}
		change.History = &model.RiskHistory{
			Action: types.HistoryAssessmentApproved,
			Before: before,
			After:  analyzedSnapshot(change),
			Note:   input.Notes,
		}
		return change, nil
	})
}

// AssessmentPatch carries the fields a revision changes. Nil fields keep
// their current value; slices replace the whole set.
type AssessmentPatch struct {
	ThreatDescription   *string           `json:"threat_description,omitempty"`
	Vulnerabilities     *string           `json:"vulnerabilities,omitempty"`
	Likelihood          *types.Likelihood `json:"likelihood,omitempty"`
	LikelihoodRationale *string           `json:"likelihood_rationale,omitempty"`
	Impact              *types.Impact     `json:"impact,omitempty"`
	ImpactRationale     *string           `json:"impact_rationale,omitempty"`
	FinancialImpact     *string           `json:"financial_impact,omitempty"`
	OperationalImpact   *string           `json:"operational_impact,omitempty"`
	ReputationalImpact  *string           `json:"reputational_impact,omitempty"`
	LegalImpact         *string           `json:"legal_impact,omitempty"`
	RecommendedOwnerID  *string           `json:"recommended_owner_id,omitempty"`
	AffectedAssetIDs    *[]string         `json:"affected_asset_ids,omitempty"`
	ExistingControlIDs  *[]string         `json:"existing_control_ids,omitempty"`
	GRCNotes            *string           `json:"grc_notes,omitempty"`
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Apply writes the patch onto a and recomputes its score
func (p AssessmentPatch) Apply(a *model.RiskAssessment) error {
	if p.Likelihood != nil && !p.Likelihood.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid likelihood",
			goerr.V(FieldKey, "likelihood"), goerr.V("likelihood", *p.Likelihood))
	}
	if p.Impact != nil && !p.Impact.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid impact",
			goerr.V(FieldKey, "impact"), goerr.V("impact", *p.Impact))
	}

	setIf(&a.ThreatDescription, p.ThreatDescription)
	setIf(&a.Vulnerabilities, p.Vulnerabilities)
	setIf(&a.Likelihood, p.Likelihood)
	setIf(&a.LikelihoodRationale, p.LikelihoodRationale)
	setIf(&a.Impact, p.Impact)
	setIf(&a.ImpactRationale, p.ImpactRationale)
	setIf(&a.FinancialImpact, p.FinancialImpact)
	setIf(&a.OperationalImpact, p.OperationalImpact)
	setIf(&a.ReputationalImpact, p.ReputationalImpact)
	setIf(&a.LegalImpact, p.LegalImpact)
	setIf(&a.RecommendedOwnerID, p.RecommendedOwnerID)
	setIf(&a.GRCNotes, p.GRCNotes)
	if p.AffectedAssetIDs != nil {
		a.AffectedAssetIDs = model.UniqueIDs(*p.AffectedAssetIDs)
	}
	if p.ExistingControlIDs != nil {
		a.ExistingControlIDs = model.UniqueIDs(*p.ExistingControlIDs)
	}

	return rate(a)
}

// CompleteRevision lets the GRC SME overwrite any field of a declined
// assessment and finalizes it as approved
func (uc *RiskUseCase) CompleteRevision(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, patch AssessmentPatch) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		a, err := requireAssessment(agg, types.AssessmentStatusGRCRevision)
		if err != nil {
			return nil, err
		}
		before := model.Snapshot{
			"status":            agg.Risk.Status.String(),
			"assessment_status": a.Status.String(),
			"risk_score":        a.RiskScore,
		}
		if err := patch.Apply(a); err != nil {
			return nil, err
		}

		change, err := completeAssessment(agg, actorID, now)
		if err != nil {
			return nil, err
		}
		change.History = &model.RiskHistory{
			Action: types.HistoryAssessmentRevised,
			Before: before,
			After:  analyzedSnapshot(change),
		}
		return change, nil
	})
}

// completeAssessment finalizes the assessment, copies its rating onto the
// risk and opens the treatment
func completeAssessment(agg *model.RiskAggregate, actorID string, now time.Time) (*model.RiskChange, error) {
	risk, a := agg.Risk, agg.Assessment
	if agg.Treatment != nil {
		return nil, goerr.Wrap(ErrIntegrityFault, "risk in analysis already has a treatment",
			goerr.V(RiskIDKey, risk.ID))
	}

	approvedAt := now
	a.Status = types.AssessmentStatusDone
	a.GRCApprovedAt = &approvedAt
	a.CompletedAt = &approvedAt

	risk.Status = types.RiskStatusAnalyzed
	risk.Likelihood = a.Likelihood
	risk.Impact = a.Impact
	risk.InherentRiskScore = a.RiskScore
	risk.InherentRisk = a.CalculatedRiskLevel
	if a.RecommendedOwnerID != "" {
		risk.RiskOwnerID = a.RecommendedOwnerID
	}
	if risk.GRCSMEID == "" {
		risk.GRCSMEID = actorID
	}
	risk.ScheduleReview(now, "")

	return &model.RiskChange{
		Risk:       risk,
		Assessment: a,
		Treatment: &model.RiskTreatment{
			RiskID:    risk.ID,
			Status:    types.TreatmentStatusDecisionReview,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}, nil
}

func analyzedSnapshot(change *model.RiskChange) model.Snapshot {
	return model.Snapshot{
		"status":            change.Risk.Status.String(),
		"assessment_status": change.Assessment.Status.String(),
		"treatment_status":  change.Treatment.Status.String(),
		"risk_score":        change.Risk.InherentRiskScore,
		"risk_level":        change.Risk.InherentRisk.String(),
		"risk_owner_id":     change.Risk.RiskOwnerID,
	}
}
