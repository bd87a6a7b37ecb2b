package usecase

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/scoring"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// ValidationIssue represents a single inconsistency found in stored risks
type ValidationIssue struct {
	OrganizationID types.OrganizationID
	RiskID         int64
	Message        string
	Expected       string
	Actual         string
}

// ValidationResult holds the results of DB validation
type ValidationResult struct {
	Checked int
	Issues  []ValidationIssue
}

// HasIssues returns true if there are any validation issues
func (r *ValidationResult) HasIssues() bool {
	return len(r.Issues) > 0
}

func (r *ValidationResult) add(risk *model.Risk, message, expected, actual string) {
	r.Issues = append(r.Issues, ValidationIssue{
		OrganizationID: risk.OrganizationID,
		RiskID:         risk.ID,
		Message:        message,
		Expected:       expected,
		Actual:         actual,
	})
}

// ValidateDB checks that stored aggregates agree with the workflow: sub-records
// exist exactly in the statuses that own them and derived ratings match the
// scoring matrix. Without orgIDs every registered organization is checked.
// It does NOT modify any data.
func (uc *RiskUseCase) ValidateDB(ctx context.Context, orgIDs ...types.OrganizationID) (*ValidationResult, error) {
	if len(orgIDs) == 0 && uc.registry != nil {
		for _, org := range uc.registry.List() {
			orgIDs = append(orgIDs, org.ID)
		}
	}

	result := &ValidationResult{}
	for _, orgID := range orgIDs {
		risks, err := uc.ListRisks(ctx, orgID)
		if err != nil {
			return nil, err
		}

		for _, risk := range risks {
			agg, err := uc.repo.Risk().Get(ctx, orgID, risk.ID)
			if err != nil {
				return nil, goerr.Wrap(err, "failed to get risk",
					goerr.V(OrganizationIDKey, orgID),
					goerr.V(RiskIDKey, risk.ID))
			}
			checkAggregate(result, agg)
			result.Checked++
		}
	}

	return result, nil
}

func checkAggregate(result *ValidationResult, agg *model.RiskAggregate) {
	risk := agg.Risk

	if want := model.FormatRiskCode(risk.ID); risk.Code != want {
		result.add(risk, "risk code does not match its ID", want, risk.Code)
	}

	switch risk.Status {
	case types.RiskStatusIdentified, types.RiskStatusActualRisk, types.RiskStatusNotARisk:
		if agg.Assessment != nil {
			result.add(risk, "assessment exists before analysis started", "<none>", agg.Assessment.Status.String())
		}
	case types.RiskStatusAnalysisInProgress:
		if agg.Assessment == nil {
			result.add(risk, "risk under analysis has no assessment", "assessment", "<none>")
		} else if agg.Assessment.Status == types.AssessmentStatusDone {
			result.add(risk, "risk under analysis has a completed assessment", "open assessment", agg.Assessment.Status.String())
		}
		if agg.Treatment != nil {
			result.add(risk, "treatment exists before the assessment was approved", "<none>", agg.Treatment.Status.String())
		}
	case types.RiskStatusAnalyzed:
		if agg.Assessment == nil || agg.Assessment.Status != types.AssessmentStatusDone {
			actual := "<none>"
			if agg.Assessment != nil {
				actual = agg.Assessment.Status.String()
			}
			result.add(risk, "analyzed risk has no completed assessment", types.AssessmentStatusDone.String(), actual)
		}
		if agg.Treatment == nil {
			result.add(risk, "analyzed risk has no treatment", "treatment", "<none>")
		}
		score, level, err := scoring.Evaluate(risk.Likelihood, risk.Impact)
		if err != nil {
			result.add(risk, "analyzed risk has an invalid rating", "likelihood and impact", fmt.Sprintf("%s x %s", risk.Likelihood, risk.Impact))
			return
		}
		if risk.InherentRiskScore != score || risk.InherentRisk != level {
			result.add(risk, "inherent rating does not match the scoring matrix",
				fmt.Sprintf("%d/%s", score, level),
				fmt.Sprintf("%d/%s", risk.InherentRiskScore, risk.InherentRisk))
		}
	default:
		result.add(risk, "unknown risk status", "known status", risk.Status.String())
	}
}
