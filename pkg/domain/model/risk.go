package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// Risk is the aggregate root of the risk lifecycle
type Risk struct {
	ID              int64
	Code            string // RISK-0001, derived from the per-organization counter
	OrganizationID  types.OrganizationID
	Title           string
	Description     string
	Category        types.CategoryID
	Source          types.RiskSource
	Tags            []string
	InitialSeverity types.RiskLevel // reported at intake, optional
	Status          types.RiskStatus
	RejectionReason string

	// Set only when an assessment is approved or a mitigation completes
	Likelihood        types.Likelihood
	Impact            types.Impact
	InherentRiskScore int
	InherentRisk      types.RiskLevel
	ResidualRiskScore int
	ResidualRisk      types.RiskLevel

	ReporterID     string
	GRCSMEID       string
	RiskAssessorID string
	RiskOwnerID    string

	ReviewFrequency types.ReviewFrequency
	LastReviewedAt  *time.Time
	NextReviewDue   *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
	DeletedBy string
}

// FormatRiskCode returns the human readable code for a sequential risk ID
func FormatRiskCode(id int64) string {
	return fmt.Sprintf("RISK-%04d", id)
}

// IsDeleted reports whether the risk has been soft-deleted
func (r *Risk) IsDeleted() bool {
	return r.DeletedAt != nil
}

// Clone returns a deep copy of the risk
func (r *Risk) Clone() *Risk {
	if r == nil {
		return nil
	}
	c := *r
	c.Tags = slices.Clone(r.Tags)
	c.LastReviewedAt = cloneTime(r.LastReviewedAt)
	c.NextReviewDue = cloneTime(r.NextReviewDue)
	c.DeletedAt = cloneTime(r.DeletedAt)
	return &c
}

// RiskAggregate is a risk with its assessment and treatment sub-records.
// Assessment and Treatment are nil until created by the workflow.
type RiskAggregate struct {
	Risk       *Risk
	Assessment *RiskAssessment
	Treatment  *RiskTreatment
}

// Clone returns a deep copy of the aggregate
func (a *RiskAggregate) Clone() *RiskAggregate {
	if a == nil {
		return nil
	}
	return &RiskAggregate{
		Risk:       a.Risk.Clone(),
		Assessment: a.Assessment.Clone(),
		Treatment:  a.Treatment.Clone(),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
