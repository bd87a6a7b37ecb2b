package interfaces

import (
	"context"

	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// AuditLogRepository is the generic audit sink
type AuditLogRepository interface {
	// Put stores an audit log entry
	Put(ctx context.Context, log *model.AuditLog) error

	// List retrieves audit logs of an entity in creation order
	List(ctx context.Context, orgID types.OrganizationID, entityType, entityID string) ([]*model.AuditLog, error)
}
