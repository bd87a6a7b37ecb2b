package interfaces

import (
	"context"

	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// TransactFunc computes the change for one workflow transition from the
// current aggregate. It receives a private copy and may be invoked more than
// once when the store retries, so it must not have side effects.
type TransactFunc func(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error)

type RiskRepository interface {
	// Create assigns the next sequential ID and code of the organization, stores
	// the risk and writes the history row in one transaction. history.RiskID is
	// filled with the assigned ID.
	Create(ctx context.Context, orgID types.OrganizationID, risk *model.Risk, history *model.RiskHistory) (*model.Risk, error)

	// Get retrieves a risk with its assessment, treatment and treatment updates.
	// Soft-deleted risks are returned as stored.
	Get(ctx context.Context, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error)

	// List retrieves all risks of the organization ordered by ID
	List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error)

	// Transact loads the aggregate, calls fn and applies the returned change
	// atomically. The change is rejected with ErrConflict when the risk version
	// moved since it was loaded. If fn returns an error nothing is written and
	// the error is returned as is.
	Transact(ctx context.Context, orgID types.OrganizationID, riskID int64, fn TransactFunc) (*model.RiskAggregate, error)

	// ListHistory retrieves history rows of a risk in creation order
	ListHistory(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.RiskHistory, error)
}
