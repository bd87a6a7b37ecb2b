package rdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

const (
	queryInsertAudit = `INSERT INTO audit_logs (id, organization_id, entity_type, entity_id, created_at, data) VALUES (?, ?, ?, ?, ?, ?)`
	queryListAudit   = `SELECT data FROM audit_logs
		WHERE organization_id = ? AND entity_type = ? AND entity_id = ? ORDER BY created_at, id`
)

type auditLogRepository struct {
	db   *sql.DB
	bind func(string) string
}

func (r *auditLogRepository) Put(ctx context.Context, log *model.AuditLog) error {
	stored := log.Clone()
	if stored.ID == "" {
		stored.ID = model.NewID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	data, err := encode(stored)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.bind(queryInsertAudit),
		stored.ID, stored.OrganizationID.String(), stored.EntityType, stored.EntityID, stored.CreatedAt.UnixNano(), data); err != nil {
		return goerr.Wrap(err, "failed to insert audit log",
			goerr.V("entity_type", stored.EntityType), goerr.V("entity_id", stored.EntityID))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, orgID types.OrganizationID, entityType, entityID string) ([]*model.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(queryListAudit), orgID.String(), entityType, entityID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs", goerr.V("entity_id", entityID))
	}
	defer func() { _ = rows.Close() }()

	logs := []*model.AuditLog{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to scan audit log")
		}
		var l model.AuditLog
		if err := decode(data, &l); err != nil {
			return nil, err
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate audit logs")
	}
	return logs, nil
}
