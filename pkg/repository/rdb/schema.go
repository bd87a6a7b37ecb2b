package rdb

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

// Entity bodies are stored as JSON in the data column. Scalar columns exist
// for keys, ordering and the optimistic version check. Timestamps used for
// ordering are unix nanoseconds so both dialects compare them the same way.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS risk_counters (
		organization_id TEXT NOT NULL PRIMARY KEY,
		value BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS risks (
		organization_id TEXT NOT NULL,
		id BIGINT NOT NULL,
		code TEXT NOT NULL,
		status TEXT NOT NULL,
		version BIGINT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (organization_id, id)
	)`,
	`CREATE TABLE IF NOT EXISTS risk_assessments (
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (organization_id, risk_id)
	)`,
	`CREATE TABLE IF NOT EXISTS risk_assessment_assets (
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		asset_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (organization_id, risk_id, asset_id)
	)`,
	`CREATE TABLE IF NOT EXISTS risk_assessment_controls (
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		control_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (organization_id, risk_id, control_id)
	)`,
	`CREATE TABLE IF NOT EXISTS risk_treatments (
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		status TEXT NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (organization_id, risk_id)
	)`,
	`CREATE TABLE IF NOT EXISTS risk_treatment_updates (
		id TEXT NOT NULL PRIMARY KEY,
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		created_at BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS risk_treatment_updates_risk_idx
		ON risk_treatment_updates (organization_id, risk_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS risk_histories (
		id TEXT NOT NULL PRIMARY KEY,
		organization_id TEXT NOT NULL,
		risk_id BIGINT NOT NULL,
		action TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS risk_histories_risk_idx
		ON risk_histories (organization_id, risk_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT NOT NULL PRIMARY KEY,
		organization_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		created_at BIGINT NOT NULL,
		data TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS audit_logs_entity_idx
		ON audit_logs (organization_id, entity_type, entity_id, created_at)`,
}

var tables = []string{
	"risk_counters",
	"risks",
	"risk_assessments",
	"risk_assessment_assets",
	"risk_assessment_controls",
	"risk_treatments",
	"risk_treatment_updates",
	"risk_histories",
	"audit_logs",
}

// Schema returns the DDL statements applied by Migrate
func Schema() []string {
	return append([]string(nil), schema...)
}

// Migrate creates missing tables and indexes. It is idempotent.
func (r *RDB) Migrate(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to apply schema", goerr.V("statement", stmt))
		}
	}
	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit migration")
	}

	logging.From(ctx).Debug("SQL schema applied", "dialect", r.dialect, "statements", len(schema))
	return nil
}

// Truncate removes every row from every table. Use only against disposable databases.
func (r *RDB) Truncate(ctx context.Context) error {
	for _, table := range tables {
		if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return goerr.Wrap(err, "failed to truncate table", goerr.V("table", table))
		}
	}
	return nil
}
