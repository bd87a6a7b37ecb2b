package types

import "fmt"

// TreatmentDecision is the disposition chosen by the risk owner
type TreatmentDecision string

const (
	TreatmentDecisionAccept   TreatmentDecision = "accept"
	TreatmentDecisionMitigate TreatmentDecision = "mitigate"
	TreatmentDecisionTransfer TreatmentDecision = "transfer"
	TreatmentDecisionAvoid    TreatmentDecision = "avoid"
)

// AllTreatmentDecisions returns all valid treatment decisions
func AllTreatmentDecisions() []TreatmentDecision {
	return []TreatmentDecision{
		TreatmentDecisionAccept,
		TreatmentDecisionMitigate,
		TreatmentDecisionTransfer,
		TreatmentDecisionAvoid,
	}
}

// IsValid checks if the treatment decision is valid
func (d TreatmentDecision) IsValid() bool {
	switch d {
	case TreatmentDecisionAccept,
		TreatmentDecisionMitigate,
		TreatmentDecisionTransfer,
		TreatmentDecisionAvoid:
		return true
	default:
		return false
	}
}

// TerminalStatus returns the final treatment status matching the decision.
// Mitigate has no direct terminal status and returns the in-progress status.
func (d TreatmentDecision) TerminalStatus() TreatmentStatus {
	switch d {
	case TreatmentDecisionAccept:
		return TreatmentStatusAccept
	case TreatmentDecisionTransfer:
		return TreatmentStatusTransfer
	case TreatmentDecisionAvoid:
		return TreatmentStatusAvoid
	case TreatmentDecisionMitigate:
		return TreatmentStatusMitigationInProgress
	default:
		return ""
	}
}

// String returns the string representation of the treatment decision
func (d TreatmentDecision) String() string {
	return string(d)
}

// ParseTreatmentDecision parses a string into a TreatmentDecision
func ParseTreatmentDecision(s string) (TreatmentDecision, error) {
	d := TreatmentDecision(s)
	if !d.IsValid() {
		return "", fmt.Errorf("invalid treatment decision: %s", s)
	}
	return d, nil
}
