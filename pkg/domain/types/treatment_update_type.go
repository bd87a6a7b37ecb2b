package types

// TreatmentUpdateType classifies an entry of the mitigation progress log
type TreatmentUpdateType string

const (
	TreatmentUpdateProgress     TreatmentUpdateType = "progress_update"
	TreatmentUpdateDelay        TreatmentUpdateType = "delay"
	TreatmentUpdateCancellation TreatmentUpdateType = "cancellation"
	TreatmentUpdateCompletion   TreatmentUpdateType = "completion"
)

// UpdateTypeFor returns the log entry type recorded for a reported mitigation status
func UpdateTypeFor(status MitigationStatus) TreatmentUpdateType {
	switch status {
	case MitigationStatusDelayed:
		return TreatmentUpdateDelay
	case MitigationStatusCancelled:
		return TreatmentUpdateCancellation
	case MitigationStatusDone:
		return TreatmentUpdateCompletion
	default:
		return TreatmentUpdateProgress
	}
}

// String returns the string representation of the update type
func (t TreatmentUpdateType) String() string {
	return string(t)
}
