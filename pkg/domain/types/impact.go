package types

import "fmt"

// Impact is the 5-point ordinal scale for how severe a risk would be
type Impact string

const (
	ImpactNegligible Impact = "negligible"
	ImpactMinor      Impact = "minor"
	ImpactModerate   Impact = "moderate"
	ImpactMajor      Impact = "major"
	ImpactSevere     Impact = "severe"
)

// AllImpacts returns all valid impact values in ascending order
func AllImpacts() []Impact {
	return []Impact{
		ImpactNegligible,
		ImpactMinor,
		ImpactModerate,
		ImpactMajor,
		ImpactSevere,
	}
}

// Value returns the ordinal value (1-5) of the impact, or 0 if invalid
func (i Impact) Value() int {
	switch i {
	case ImpactNegligible:
		return 1
	case ImpactMinor:
		return 2
	case ImpactModerate:
		return 3
	case ImpactMajor:
		return 4
	case ImpactSevere:
		return 5
	default:
		return 0
	}
}

// IsValid checks if the impact is valid
func (i Impact) IsValid() bool {
	return i.Value() != 0
}

// String returns the string representation of the impact
func (i Impact) String() string {
	return string(i)
}

// ParseImpact parses a string into an Impact
func ParseImpact(s string) (Impact, error) {
	i := Impact(s)
	if !i.IsValid() {
		return "", fmt.Errorf("invalid impact: %s", s)
	}
	return i, nil
}
