package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// DefaultReviewFrequency applies when neither the risk nor its organization sets one
const DefaultReviewFrequency = types.ReviewFrequencyQuarterly

type SubmitRiskInput struct {
	Title           string                `json:"title"`
	Description     string                `json:"description"`
	Category        types.CategoryID      `json:"category"`
	Source          types.RiskSource      `json:"source"`
	Tags            []string              `json:"tags"`
	InitialSeverity types.RiskLevel       `json:"initial_severity"`
	ReviewFrequency types.ReviewFrequency `json:"review_frequency"`
}

func (x SubmitRiskInput) validate() error {
	if isBlank(x.Title) {
		return validationError("title", "title is required")
	}
	if !x.Source.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid risk source",
			goerr.V(FieldKey, "source"), goerr.V("source", x.Source))
	}
	if x.InitialSeverity != "" && !x.InitialSeverity.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid initial severity",
			goerr.V(FieldKey, "initial_severity"), goerr.V("initial_severity", x.InitialSeverity))
	}
	if x.Category != "" {
		if err := x.Category.Validate(); err != nil {
			return goerr.Wrap(ErrValidation, "invalid category",
				goerr.V(FieldKey, "category"), goerr.V("reason", err.Error()))
		}
	}
	if x.ReviewFrequency != "" && !x.ReviewFrequency.IsValid() {
		return goerr.Wrap(ErrValidation, "invalid review frequency",
			goerr.V(FieldKey, "review_frequency"), goerr.V("review_frequency", x.ReviewFrequency))
	}
	return nil
}

// Submit records a newly reported risk. The actor becomes the reporter.
func (uc *RiskUseCase) Submit(ctx context.Context, orgID types.OrganizationID, actorID string, input SubmitRiskInput) (*model.Risk, error) {
	org, err := uc.organization(orgID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if err := input.validate(); err != nil {
		return nil, err
	}

	freq := input.ReviewFrequency
	if freq == "" {
		freq = org.ReviewFrequency
	}
	if freq == "" {
		freq = DefaultReviewFrequency
	}

	now := uc.now()
	risk := &model.Risk{
		OrganizationID:  orgID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Category:        input.Category,
		Source:          input.Source,
		Tags:            model.UniqueIDs(input.Tags),
		InitialSeverity: input.InitialSeverity,
		Status:          types.RiskStatusIdentified,
		ReporterID:      actorID,
		ReviewFrequency: freq,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	history := &model.RiskHistory{
		ID:             model.NewID(),
		OrganizationID: orgID,
		Action:         types.HistoryRiskSubmitted,
		After: model.Snapshot{
			"status": risk.Status.String(),
			"title":  risk.Title,
			"source": risk.Source.String(),
		},
		ActorID:   actorID,
		CreatedAt: now,
	}

	created, err := uc.repo.Risk().Create(ctx, orgID, risk, history)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V(OrganizationIDKey, orgID))
	}

	uc.afterCommit(ctx, org, &model.RiskAggregate{Risk: created}, history)
	return created, nil
}

type ValidateRiskInput struct {
	Approved bool   `json:"approved"`
	Reason   string `json:"reason"`
	// AssessorID optionally pre-assigns the risk assessor on approval
	AssessorID string `json:"assessor_id"`
}

// Validate is the GRC triage of a submitted risk
func (uc *RiskUseCase) Validate(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input ValidateRiskInput) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		risk := agg.Risk
		if err := requireRiskStatus(risk, types.RiskStatusIdentified); err != nil {
			return nil, err
		}
		before := model.Snapshot{"status": risk.Status.String()}

		if !input.Approved {
			if isBlank(input.Reason) {
				return nil, validationError("reason", "reason is required to reject a risk")
			}
			risk.Status = types.RiskStatusNotARisk
			risk.GRCSMEID = actorID
			risk.RejectionReason = input.Reason

			return &model.RiskChange{
				Risk: risk,
				History: &model.RiskHistory{
					Action: types.HistoryRiskRejected,
					Before: before,
					After:  model.Snapshot{"status": risk.Status.String(), "reason": input.Reason},
					Note:   input.Reason,
				},
			}, nil
		}

		risk.Status = types.RiskStatusActualRisk
		risk.GRCSMEID = actorID
		if input.AssessorID != "" {
			risk.RiskAssessorID = input.AssessorID
		}

		return &model.RiskChange{
			Risk: risk,
			History: &model.RiskHistory{
				Action: types.HistoryRiskValidated,
				Before: before,
				After:  model.Snapshot{"status": risk.Status.String(), "assessor_id": risk.RiskAssessorID},
				Note:   input.Reason,
			},
		}, nil
	})
}

// StartAssessment opens the assessment of a validated risk. An empty
// assessorID falls back to the assessor chosen at validation.
func (uc *RiskUseCase) StartAssessment(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID, assessorID string) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		risk := agg.Risk
		if err := requireRiskStatus(risk, types.RiskStatusActualRisk); err != nil {
			return nil, err
		}
		if agg.Assessment != nil {
			return nil, goerr.Wrap(ErrIntegrityFault, "validated risk already has an assessment",
				goerr.V(RiskIDKey, risk.ID))
		}

		assessor := strings.TrimSpace(assessorID)
		if assessor == "" {
			assessor = risk.RiskAssessorID
		}
		if assessor == "" {
			return nil, validationError("assessor_id", "risk assessor is required")
		}

		risk.Status = types.RiskStatusAnalysisInProgress
		risk.RiskAssessorID = assessor

		return &model.RiskChange{
			Risk: risk,
			Assessment: &model.RiskAssessment{
				RiskID:     risk.ID,
				Status:     types.AssessmentStatusAssessorAnalysis,
				AssessorID: assessor,
				CreatedAt:  now,
				UpdatedAt:  now,
			},
			History: &model.RiskHistory{
				Action: types.HistoryAssessmentStarted,
				Before: model.Snapshot{"status": types.RiskStatusActualRisk.String()},
				After: model.Snapshot{
					"status":            risk.Status.String(),
					"assessment_status": types.AssessmentStatusAssessorAnalysis.String(),
					"assessor_id":       assessor,
				},
			},
		}, nil
	})
}
