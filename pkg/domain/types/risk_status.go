package types

import "fmt"

// RiskStatus is the intake status of a risk
type RiskStatus string

const (
	RiskStatusIdentified         RiskStatus = "risk_identified"
	RiskStatusActualRisk         RiskStatus = "actual_risk"
	RiskStatusNotARisk           RiskStatus = "not_a_risk"
	RiskStatusAnalysisInProgress RiskStatus = "risk_analysis_in_progress"
	RiskStatusAnalyzed           RiskStatus = "risk_analyzed"
)

// AllRiskStatuses returns all valid risk statuses
func AllRiskStatuses() []RiskStatus {
	return []RiskStatus{
		RiskStatusIdentified,
		RiskStatusActualRisk,
		RiskStatusNotARisk,
		RiskStatusAnalysisInProgress,
		RiskStatusAnalyzed,
	}
}

// IsValid checks if the risk status is valid
func (s RiskStatus) IsValid() bool {
	switch s {
	case RiskStatusIdentified,
		RiskStatusActualRisk,
		RiskStatusNotARisk,
		RiskStatusAnalysisInProgress,
		RiskStatusAnalyzed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further intake transition is possible
func (s RiskStatus) IsTerminal() bool {
	return s == RiskStatusNotARisk
}

// String returns the string representation of the risk status
func (s RiskStatus) String() string {
	return string(s)
}

// ParseRiskStatus parses a string into a RiskStatus
func ParseRiskStatus(s string) (RiskStatus, error) {
	status := RiskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid risk status: %s", s)
	}
	return status, nil
}
