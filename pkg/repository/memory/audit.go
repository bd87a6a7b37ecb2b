package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

type auditLogRepository struct {
	mu        sync.RWMutex
	logs      map[types.OrganizationID][]*model.AuditLog
	intercept WriteInterceptor
}

func newAuditLogRepository() *auditLogRepository {
	return &auditLogRepository{
		logs: make(map[types.OrganizationID][]*model.AuditLog),
	}
}

func (r *auditLogRepository) Put(ctx context.Context, log *model.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.intercept != nil {
		if err := r.intercept(TableAuditLogs); err != nil {
			return goerr.Wrap(err, "failed to write table", goerr.V("table", TableAuditLogs))
		}
	}

	stored := log.Clone()
	if stored.ID == "" {
		stored.ID = model.NewID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.logs[log.OrganizationID] = append(r.logs[log.OrganizationID], stored)
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, orgID types.OrganizationID, entityType, entityID string) ([]*model.AuditLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*model.AuditLog{}
	for _, l := range r.logs[orgID] {
		if l.EntityType == entityType && l.EntityID == entityID {
			result = append(result, l.Clone())
		}
	}
	return result, nil
}
