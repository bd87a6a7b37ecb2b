package types

import (
	"fmt"
	"time"
)

// ReviewFrequency is the cadence at which an analyzed risk must be re-reviewed
type ReviewFrequency string

const (
	ReviewFrequencyMonthly      ReviewFrequency = "monthly"
	ReviewFrequencyQuarterly    ReviewFrequency = "quarterly"
	ReviewFrequencySemiAnnually ReviewFrequency = "semi_annually"
	ReviewFrequencyAnnually     ReviewFrequency = "annually"
)

// AllReviewFrequencies returns all valid review frequencies
func AllReviewFrequencies() []ReviewFrequency {
	return []ReviewFrequency{
		ReviewFrequencyMonthly,
		ReviewFrequencyQuarterly,
		ReviewFrequencySemiAnnually,
		ReviewFrequencyAnnually,
	}
}

// Months returns the number of calendar months between reviews, or 0 if invalid
func (f ReviewFrequency) Months() int {
	switch f {
	case ReviewFrequencyMonthly:
		return 1
	case ReviewFrequencyQuarterly:
		return 3
	case ReviewFrequencySemiAnnually:
		return 6
	case ReviewFrequencyAnnually:
		return 12
	default:
		return 0
	}
}

// IsValid checks if the review frequency is valid
func (f ReviewFrequency) IsValid() bool {
	return f.Months() != 0
}

// Next returns the review due date following from
func (f ReviewFrequency) Next(from time.Time) time.Time {
	return from.AddDate(0, f.Months(), 0)
}

// String returns the string representation of the review frequency
func (f ReviewFrequency) String() string {
	return string(f)
}

// ParseReviewFrequency parses a string into a ReviewFrequency
func ParseReviewFrequency(s string) (ReviewFrequency, error) {
	f := ReviewFrequency(s)
	if !f.IsValid() {
		return "", fmt.Errorf("invalid review frequency: %s", s)
	}
	return f, nil
}
