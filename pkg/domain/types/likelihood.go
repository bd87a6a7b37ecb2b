package types

import "fmt"

// Likelihood is the 5-point ordinal scale for how probable a risk is
type Likelihood string

const (
	LikelihoodRare          Likelihood = "rare"
	LikelihoodUnlikely      Likelihood = "unlikely"
	LikelihoodPossible      Likelihood = "possible"
	LikelihoodLikely        Likelihood = "likely"
	LikelihoodAlmostCertain Likelihood = "almost_certain"
)

// AllLikelihoods returns all valid likelihood values in ascending order
func AllLikelihoods() []Likelihood {
	return []Likelihood{
		LikelihoodRare,
		LikelihoodUnlikely,
		LikelihoodPossible,
		LikelihoodLikely,
		LikelihoodAlmostCertain,
	}
}

// Value returns the ordinal value (1-5) of the likelihood, or 0 if invalid
func (l Likelihood) Value() int {
	switch l {
	case LikelihoodRare:
		return 1
	case LikelihoodUnlikely:
		return 2
	case LikelihoodPossible:
		return 3
	case LikelihoodLikely:
		return 4
	case LikelihoodAlmostCertain:
		return 5
	default:
		return 0
	}
}

// IsValid checks if the likelihood is valid
func (l Likelihood) IsValid() bool {
	return l.Value() != 0
}

// String returns the string representation of the likelihood
func (l Likelihood) String() string {
	return string(l)
}

// ParseLikelihood parses a string into a Likelihood
func ParseLikelihood(s string) (Likelihood, error) {
	l := Likelihood(s)
	if !l.IsValid() {
		return "", fmt.Errorf("invalid likelihood: %s", s)
	}
	return l, nil
}
