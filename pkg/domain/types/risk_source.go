package types

import "fmt"

// RiskSource describes how a risk was discovered
type RiskSource string

const (
	RiskSourceInternalReview    RiskSource = "internal_review"
	RiskSourceAdHocDiscovery    RiskSource = "ad_hoc_discovery"
	RiskSourceExternalReview    RiskSource = "external_review"
	RiskSourceIncidentResponse  RiskSource = "incident_response"
	RiskSourcePolicyException   RiskSource = "policy_exception"
	RiskSourceEmployeeReporting RiskSource = "employee_reporting"
)

// AllRiskSources returns all valid risk sources
func AllRiskSources() []RiskSource {
	return []RiskSource{
		RiskSourceInternalReview,
		RiskSourceAdHocDiscovery,
		RiskSourceExternalReview,
		RiskSourceIncidentResponse,
		RiskSourcePolicyException,
		RiskSourceEmployeeReporting,
	}
}

// IsValid checks if the risk source is valid
func (s RiskSource) IsValid() bool {
	switch s {
	case RiskSourceInternalReview,
		RiskSourceAdHocDiscovery,
		RiskSourceExternalReview,
		RiskSourceIncidentResponse,
		RiskSourcePolicyException,
		RiskSourceEmployeeReporting:
		return true
	default:
		return false
	}
}

// String returns the string representation of the risk source
func (s RiskSource) String() string {
	return string(s)
}

// ParseRiskSource parses a string into a RiskSource
func ParseRiskSource(s string) (RiskSource, error) {
	src := RiskSource(s)
	if !src.IsValid() {
		return "", fmt.Errorf("invalid risk source: %s", s)
	}
	return src, nil
}
