package model

import (
	"slices"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// RiskAssessment is the single live assessment of a risk
type RiskAssessment struct {
	RiskID int64
	Status types.AssessmentStatus

	ThreatDescription   string
	Vulnerabilities     string
	Likelihood          types.Likelihood
	LikelihoodRationale string
	Impact              types.Impact
	ImpactRationale     string
	FinancialImpact     string
	OperationalImpact   string
	ReputationalImpact  string
	LegalImpact         string

	// Derived from Likelihood and Impact, never accepted as input
	RiskScore           int
	CalculatedRiskLevel types.RiskLevel

	RecommendedOwnerID string
	AffectedAssetIDs   []string // replaced wholesale on submission
	ExistingControlIDs []string // replaced wholesale on submission

	AssessorID     string
	GRCNotes       string
	DeclinedReason string
	SubmittedAt    *time.Time
	GRCApprovedAt  *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep copy of the assessment
func (a *RiskAssessment) Clone() *RiskAssessment {
	if a == nil {
		return nil
	}
	c := *a
	c.AffectedAssetIDs = slices.Clone(a.AffectedAssetIDs)
	c.ExistingControlIDs = slices.Clone(a.ExistingControlIDs)
	c.SubmittedAt = cloneTime(a.SubmittedAt)
	c.GRCApprovedAt = cloneTime(a.GRCApprovedAt)
	c.CompletedAt = cloneTime(a.CompletedAt)
	return &c
}

// UniqueIDs returns ids with empty values and duplicates removed, keeping first-seen order
func UniqueIDs(ids []string) []string {
	result := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
