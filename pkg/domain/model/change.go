package model

import "github.com/m-mizutani/goerr/v2"

// RiskChange is the set of writes produced by one workflow transition.
// It is applied atomically by the repository.
type RiskChange struct {
	Risk            *Risk                // required
	Assessment      *RiskAssessment      // upsert when not nil
	Treatment       *RiskTreatment       // upsert when not nil
	TreatmentUpdate *RiskTreatmentUpdate // append when not nil
	History         *RiskHistory         // required, exactly one per transition
}

// Validate checks that the change carries the mandatory parts
func (c *RiskChange) Validate() error {
	if c == nil {
		return goerr.New("risk change is nil")
	}
	if c.Risk == nil {
		return goerr.New("risk change has no risk")
	}
	if c.History == nil {
		return goerr.New("risk change has no history", goerr.V("risk_id", c.Risk.ID))
	}
	if c.TreatmentUpdate != nil && c.Treatment == nil {
		return goerr.New("treatment update without treatment", goerr.V("risk_id", c.Risk.ID))
	}
	return nil
}
