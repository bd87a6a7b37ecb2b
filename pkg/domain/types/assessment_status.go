package types

import "fmt"

// AssessmentStatus is the workflow status of a risk assessment
type AssessmentStatus string

const (
	AssessmentStatusAssessorAnalysis AssessmentStatus = "risk_assessor_analysis"
	AssessmentStatusGRCApproval      AssessmentStatus = "grc_approval"
	AssessmentStatusGRCRevision      AssessmentStatus = "grc_revision"
	AssessmentStatusDone             AssessmentStatus = "done"
)

// AllAssessmentStatuses returns all valid assessment statuses
func AllAssessmentStatuses() []AssessmentStatus {
	return []AssessmentStatus{
		AssessmentStatusAssessorAnalysis,
		AssessmentStatusGRCApproval,
		AssessmentStatusGRCRevision,
		AssessmentStatusDone,
	}
}

// IsValid checks if the assessment status is valid
func (s AssessmentStatus) IsValid() bool {
	switch s {
	case AssessmentStatusAssessorAnalysis,
		AssessmentStatusGRCApproval,
		AssessmentStatusGRCRevision,
		AssessmentStatusDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the assessment status
func (s AssessmentStatus) String() string {
	return string(s)
}

// ParseAssessmentStatus parses a string into an AssessmentStatus
func ParseAssessmentStatus(s string) (AssessmentStatus, error) {
	status := AssessmentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid assessment status: %s", s)
	}
	return status, nil
}
