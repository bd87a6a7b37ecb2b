package model

import (
	"cmp"
	"slices"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// RiskTreatment is the single treatment of a risk. It is created when the
// assessment is approved.
type RiskTreatment struct {
	RiskID        int64
	Status        types.TreatmentStatus
	Decision      types.TreatmentDecision
	Justification string

	// mitigate
	MitigationDescription string
	MitigationTargetDate  *time.Time
	// transfer
	TransferTo   string
	TransferCost *float64
	// avoid
	AvoidanceStrategy string
	// accept
	AcceptanceRationale string
	AcceptanceExpiry    *time.Time

	ExecutiveApprovalRequired bool
	ExecutiveApproverID       string
	ExecutiveApprovalStatus   types.ApprovalStatus
	ExecutiveNotes            string
	ExecutiveDecidedAt        *time.Time

	MitigationStatus     types.MitigationStatus
	MitigationProgress   int
	LastProgressUpdateAt *time.Time
	NextReviewDate       *time.Time
	ResidualLikelihood   types.Likelihood
	ResidualImpact       types.Impact
	ResidualRiskScore    int
	ResidualRiskLevel    types.RiskLevel

	DecidedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Updates is append-only, ordered by creation
	Updates []*RiskTreatmentUpdate
}

// ClearDecisionFields resets every decision-specific field
func (t *RiskTreatment) ClearDecisionFields() {
	t.MitigationDescription = ""
	t.MitigationTargetDate = nil
	t.TransferTo = ""
	t.TransferCost = nil
	t.AvoidanceStrategy = ""
	t.AcceptanceRationale = ""
	t.AcceptanceExpiry = nil
}

// Clone returns a deep copy of the treatment including its updates
func (t *RiskTreatment) Clone() *RiskTreatment {
	if t == nil {
		return nil
	}
	c := *t
	c.MitigationTargetDate = cloneTime(t.MitigationTargetDate)
	c.TransferCost = cloneFloat(t.TransferCost)
	c.AcceptanceExpiry = cloneTime(t.AcceptanceExpiry)
	c.ExecutiveDecidedAt = cloneTime(t.ExecutiveDecidedAt)
	c.LastProgressUpdateAt = cloneTime(t.LastProgressUpdateAt)
	c.NextReviewDate = cloneTime(t.NextReviewDate)
	c.DecidedAt = cloneTime(t.DecidedAt)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.Updates != nil {
		c.Updates = make([]*RiskTreatmentUpdate, len(t.Updates))
		for i, u := range t.Updates {
			c.Updates[i] = u.Clone()
		}
	}
	return &c
}

// RiskTreatmentUpdate is one entry of the mitigation progress log
type RiskTreatmentUpdate struct {
	ID                 string
	RiskID             int64
	Type               types.TreatmentUpdateType
	PreviousStatus     types.MitigationStatus
	NewStatus          types.MitigationStatus
	Progress           int
	Notes              string
	DelayReason        string
	CancellationReason string
	ActorID            string
	CreatedAt          time.Time
}

// Clone returns a copy of the update
func (u *RiskTreatmentUpdate) Clone() *RiskTreatmentUpdate {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// SortTreatmentUpdates orders updates by creation time, then ID
func SortTreatmentUpdates(updates []*RiskTreatmentUpdate) {
	slices.SortStableFunc(updates, func(a, b *RiskTreatmentUpdate) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
