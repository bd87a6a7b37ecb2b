package types

import "fmt"

// RiskLevel is the qualitative bucket derived from a likelihood x impact score
type RiskLevel string

const (
	RiskLevelVeryLow  RiskLevel = "very_low"
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelVeryHigh RiskLevel = "very_high"
)

// AllRiskLevels returns all valid risk levels in ascending order
func AllRiskLevels() []RiskLevel {
	return []RiskLevel{
		RiskLevelVeryLow,
		RiskLevelLow,
		RiskLevelMedium,
		RiskLevelHigh,
		RiskLevelVeryHigh,
	}
}

// Rank returns the position of the level (1 = very_low ... 5 = very_high), or 0 if invalid
func (l RiskLevel) Rank() int {
	for i, v := range AllRiskLevels() {
		if v == l {
			return i + 1
		}
	}
	return 0
}

// IsValid checks if the risk level is valid
func (l RiskLevel) IsValid() bool {
	return l.Rank() != 0
}

// String returns the string representation of the risk level
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel parses a string into a RiskLevel
func ParseRiskLevel(s string) (RiskLevel, error) {
	l := RiskLevel(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid risk level: %s", s)
	}
	return l, nil
}
