// Package scoring implements the qualitative likelihood x impact model used
// to rate risks and to route treatment decisions. All functions are pure.
package scoring

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// ErrInvalidInput is returned when likelihood or impact is not on the 5-point scale
var ErrInvalidInput = goerr.New("invalid scoring input")

// Level thresholds, inclusive lower bounds on the 1-25 score.
const (
	thresholdVeryHigh = 20
	thresholdHigh     = 12
	thresholdMedium   = 6
	thresholdLow      = 3
)

// Score multiplies the ordinal values of likelihood and impact (1-25)
func Score(likelihood types.Likelihood, impact types.Impact) (int, error) {
	if !likelihood.IsValid() {
		return 0, goerr.Wrap(ErrInvalidInput, "invalid likelihood", goerr.V("likelihood", likelihood))
	}
	if !impact.IsValid() {
		return 0, goerr.Wrap(ErrInvalidInput, "invalid impact", goerr.V("impact", impact))
	}
	return likelihood.Value() * impact.Value(), nil
}

// Level maps a score to its risk level bucket
func Level(score int) types.RiskLevel {
	switch {
	case score >= thresholdVeryHigh:
		return types.RiskLevelVeryHigh
	case score >= thresholdHigh:
		return types.RiskLevelHigh
	case score >= thresholdMedium:
		return types.RiskLevelMedium
	case score >= thresholdLow:
		return types.RiskLevelLow
	default:
		return types.RiskLevelVeryLow
	}
}

// Evaluate returns both the score and the level for a likelihood/impact pair
func Evaluate(likelihood types.Likelihood, impact types.Impact) (int, types.RiskLevel, error) {
	score, err := Score(likelihood, impact)
	if err != nil {
		return 0, "", err
	}
	return score, Level(score), nil
}

// RequiresExecutiveApproval reports whether a treatment decision at the given
// inherent risk level needs executive sign-off. Mitigation never does; accept,
// transfer and avoid do for high and very_high risks.
func RequiresExecutiveApproval(level types.RiskLevel, decision types.TreatmentDecision) bool {
	if decision == types.TreatmentDecisionMitigate {
		return false
	}
	return level == types.RiskLevelHigh || level == types.RiskLevelVeryHigh
}

// NextTreatmentStatus routes a treatment decision. executiveApproved is nil
// when no executive decision has been made yet.
func NextTreatmentStatus(level types.RiskLevel, decision types.TreatmentDecision, executiveApproved *bool) types.TreatmentStatus {
	if decision == types.TreatmentDecisionMitigate {
		return types.TreatmentStatusMitigationInProgress
	}

	switch level {
	case types.RiskLevelVeryLow, types.RiskLevelLow:
		return types.TreatmentStatusAutoAccept

	case types.RiskLevelMedium:
		return decision.TerminalStatus()

	default:
		if executiveApproved == nil {
			return types.TreatmentStatusIdentifyExecutiveApprover
		}
		if *executiveApproved {
			return decision.TerminalStatus()
		}
		return types.TreatmentStatusDecisionReview
	}
}
