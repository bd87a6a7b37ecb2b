package types

// HistoryAction tags one workflow transition in the risk history
type HistoryAction string

const (
	HistoryRiskSubmitted             HistoryAction = "risk_submitted"
	HistoryRiskValidated             HistoryAction = "risk_validated"
	HistoryRiskRejected              HistoryAction = "risk_rejected"
	HistoryAssessmentStarted         HistoryAction = "assessment_started"
	HistoryAssessmentSubmitted       HistoryAction = "assessment_submitted"
	HistoryAssessmentApproved        HistoryAction = "assessment_approved"
	HistoryAssessmentDeclined        HistoryAction = "assessment_declined"
	HistoryAssessmentRevised         HistoryAction = "assessment_revised"
	HistoryTreatmentDecided          HistoryAction = "treatment_decided"
	HistoryExecutiveApproverAssigned HistoryAction = "executive_approver_assigned"
	HistoryExecutiveApproved         HistoryAction = "executive_approved"
	HistoryExecutiveDenied           HistoryAction = "executive_denied"
	HistoryMitigationUpdated         HistoryAction = "mitigation_updated"
	HistoryMitigationCompleted       HistoryAction = "mitigation_completed"
	HistoryMitigationCancelled       HistoryAction = "mitigation_cancelled"
	HistoryRiskReviewed              HistoryAction = "risk_reviewed"
	HistoryRiskDeleted               HistoryAction = "risk_deleted"

	// ReminderReviewDue tags review reminders. It is never written to history.
	ReminderReviewDue HistoryAction = "review_due"
)

// String returns the string representation of the history action
func (a HistoryAction) String() string {
	return string(a)
}
