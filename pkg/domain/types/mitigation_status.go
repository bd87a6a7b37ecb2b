package types

import "fmt"

// MitigationStatus is the progress state reported for a mitigation plan
type MitigationStatus string

const (
	MitigationStatusOnTrack   MitigationStatus = "on_track"
	MitigationStatusDelayed   MitigationStatus = "delayed"
	MitigationStatusCancelled MitigationStatus = "cancelled"
	MitigationStatusDone      MitigationStatus = "done"
)

// AllMitigationStatuses returns all valid mitigation statuses
func AllMitigationStatuses() []MitigationStatus {
	return []MitigationStatus{
		MitigationStatusOnTrack,
		MitigationStatusDelayed,
		MitigationStatusCancelled,
		MitigationStatusDone,
	}
}

// IsValid checks if the mitigation status is valid
func (s MitigationStatus) IsValid() bool {
	switch s {
	case MitigationStatusOnTrack,
		MitigationStatusDelayed,
		MitigationStatusCancelled,
		MitigationStatusDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mitigation status
func (s MitigationStatus) String() string {
	return string(s)
}

// ParseMitigationStatus parses a string into a MitigationStatus
func ParseMitigationStatus(s string) (MitigationStatus, error) {
	status := MitigationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid mitigation status: %s", s)
	}
	return status, nil
}
