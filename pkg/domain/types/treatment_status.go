package types

import "fmt"

// TreatmentStatus is the workflow status of a risk treatment
type TreatmentStatus string

const (
	TreatmentStatusDecisionReview            TreatmentStatus = "treatment_decision_review"
	TreatmentStatusIdentifyExecutiveApprover TreatmentStatus = "identify_executive_approver"
	TreatmentStatusExecutiveApproval         TreatmentStatus = "executive_approval"
	TreatmentStatusMitigationInProgress      TreatmentStatus = "risk_mitigation_in_progress"
	TreatmentStatusMitigationStatusUpdate    TreatmentStatus = "mitigation_status_update"
	TreatmentStatusMitigationStatusRouting   TreatmentStatus = "mitigation_status_routing"
	TreatmentStatusMitigationComplete        TreatmentStatus = "risk_mitigation_complete"
	TreatmentStatusAccept                    TreatmentStatus = "risk_accept"
	TreatmentStatusTransfer                  TreatmentStatus = "risk_transfer"
	TreatmentStatusAvoid                     TreatmentStatus = "risk_avoid"
	TreatmentStatusAutoAccept                TreatmentStatus = "risk_auto_accept"
)

// AllTreatmentStatuses returns all valid treatment statuses
func AllTreatmentStatuses() []TreatmentStatus {
	return []TreatmentStatus{
		TreatmentStatusDecisionReview,
		TreatmentStatusIdentifyExecutiveApprover,
		TreatmentStatusExecutiveApproval,
		TreatmentStatusMitigationInProgress,
		TreatmentStatusMitigationStatusUpdate,
		TreatmentStatusMitigationStatusRouting,
		TreatmentStatusMitigationComplete,
		TreatmentStatusAccept,
		TreatmentStatusTransfer,
		TreatmentStatusAvoid,
		TreatmentStatusAutoAccept,
	}
}

// IsValid checks if the treatment status is valid
func (s TreatmentStatus) IsValid() bool {
	for _, v := range AllTreatmentStatuses() {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the treatment has reached a final disposition
func (s TreatmentStatus) IsTerminal() bool {
	switch s {
	case TreatmentStatusMitigationComplete,
		TreatmentStatusAccept,
		TreatmentStatusTransfer,
		TreatmentStatusAvoid,
		TreatmentStatusAutoAccept:
		return true
	default:
		return false
	}
}

// IsMitigationPhase reports whether mitigation progress may be recorded in this status
func (s TreatmentStatus) IsMitigationPhase() bool {
	switch s {
	case TreatmentStatusMitigationInProgress,
		TreatmentStatusMitigationStatusUpdate,
		TreatmentStatusMitigationStatusRouting:
		return true
	default:
		return false
	}
}

// String returns the string representation of the treatment status
func (s TreatmentStatus) String() string {
	return string(s)
}

// ParseTreatmentStatus parses a string into a TreatmentStatus
func ParseTreatmentStatus(s string) (TreatmentStatus, error) {
	status := TreatmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid treatment status: %s", s)
	}
	return status, nil
}
