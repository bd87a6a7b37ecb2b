package types

// ApprovalStatus is the state of an executive sign-off request
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusDenied   ApprovalStatus = "denied"
)

// IsValid checks if the approval status is valid
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalStatusPending,
		ApprovalStatusApproved,
		ApprovalStatusDenied:
		return true
	default:
		return false
	}
}

// String returns the string representation of the approval status
func (s ApprovalStatus) String() string {
	return string(s)
}
