package rdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

const (
	queryNextRiskID = `INSERT INTO risk_counters (organization_id, value) VALUES (?, 1)
		ON CONFLICT (organization_id) DO UPDATE SET value = risk_counters.value + 1
		RETURNING value`
	queryInsertRisk = `INSERT INTO risks (organization_id, id, code, status, version, data) VALUES (?, ?, ?, ?, ?, ?)`
	queryUpdateRisk = `UPDATE risks SET status = ?, version = ?, data = ?
		WHERE organization_id = ? AND id = ? AND version = ?`
	querySelectRisk = `SELECT code, status, version, data FROM risks WHERE organization_id = ? AND id = ?`
	queryListRisks  = `SELECT code, status, version, data FROM risks WHERE organization_id = ? ORDER BY id`
	queryRiskExists = `SELECT 1 FROM risks WHERE organization_id = ? AND id = ?`
	querySelectAsmt = `SELECT data FROM risk_assessments WHERE organization_id = ? AND risk_id = ?`
	queryUpsertAsmt = `INSERT INTO risk_assessments (organization_id, risk_id, status, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (organization_id, risk_id) DO UPDATE SET status = excluded.status, data = excluded.data`
	querySelectAssets = `SELECT asset_id FROM risk_assessment_assets
		WHERE organization_id = ? AND risk_id = ? ORDER BY position`
	queryDeleteAssets   = `DELETE FROM risk_assessment_assets WHERE organization_id = ? AND risk_id = ?`
	queryInsertAsset    = `INSERT INTO risk_assessment_assets (organization_id, risk_id, asset_id, position) VALUES (?, ?, ?, ?)`
	querySelectControls = `SELECT control_id FROM risk_assessment_controls
		WHERE organization_id = ? AND risk_id = ? ORDER BY position`
	queryDeleteControls = `DELETE FROM risk_assessment_controls WHERE organization_id = ? AND risk_id = ?`
	queryInsertControl  = `INSERT INTO risk_assessment_controls (organization_id, risk_id, control_id, position) VALUES (?, ?, ?, ?)`
	querySelectTrtm     = `SELECT data FROM risk_treatments WHERE organization_id = ? AND risk_id = ?`
	queryUpsertTrtm     = `INSERT INTO risk_treatments (organization_id, risk_id, status, data) VALUES (?, ?, ?, ?)
		ON CONFLICT (organization_id, risk_id) DO UPDATE SET status = excluded.status, data = excluded.data`
	querySelectUpdates = `SELECT data FROM risk_treatment_updates
		WHERE organization_id = ? AND risk_id = ? ORDER BY created_at, id`
	queryInsertUpdate = `INSERT INTO risk_treatment_updates (id, organization_id, risk_id, created_at, data) VALUES (?, ?, ?, ?, ?)`
	queryInsertHist   = `INSERT INTO risk_histories (id, organization_id, risk_id, action, created_at, data) VALUES (?, ?, ?, ?, ?, ?)`
	querySelectHist   = `SELECT data FROM risk_histories
		WHERE organization_id = ? AND risk_id = ? ORDER BY created_at, id`
)

type riskRepository struct {
	db   *sql.DB
	bind func(string) string
}

func (r *riskRepository) Create(ctx context.Context, orgID types.OrganizationID, risk *model.Risk, history *model.RiskHistory) (*model.Risk, error) {
	if history == nil {
		return nil, goerr.New("history is required to create a risk")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var nextID int64
	if err := tx.QueryRowContext(ctx, r.bind(queryNextRiskID), orgID.String()).Scan(&nextID); err != nil {
		return nil, goerr.Wrap(err, "failed to get next ID", goerr.V("organization_id", orgID))
	}

	now := time.Now().UTC()
	created := risk.Clone()
	created.ID = nextID
	created.Code = model.FormatRiskCode(nextID)
	created.OrganizationID = orgID
	created.Version = 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	if err := r.insertRisk(ctx, tx, created); err != nil {
		return nil, err
	}

	h := history.Clone()
	h.RiskID = created.ID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = created.CreatedAt
	}
	if err := r.insertHistory(ctx, tx, orgID, h); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit risk creation", goerr.V("risk_id", created.ID))
	}

	history.RiskID = created.ID
	return created, nil
}

func (r *riskRepository) insertRisk(ctx context.Context, q queryer, risk *model.Risk) error {
	data, err := encode(risk)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, r.bind(queryInsertRisk),
		risk.OrganizationID.String(), risk.ID, risk.Code, risk.Status.String(), risk.Version, data); err != nil {
		return goerr.Wrap(err, "failed to insert risk", goerr.V("risk_id", risk.ID))
	}
	return nil
}

func (r *riskRepository) insertHistory(ctx context.Context, q queryer, orgID types.OrganizationID, h *model.RiskHistory) error {
	if h.ID == "" {
		h.ID = model.NewID()
	}
	h.OrganizationID = orgID

	data, err := encode(h)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, r.bind(queryInsertHist),
		h.ID, orgID.String(), h.RiskID, h.Action.String(), h.CreatedAt.UnixNano(), data); err != nil {
		return goerr.Wrap(err, "failed to insert risk history",
			goerr.V("risk_id", h.RiskID), goerr.V("action", h.Action))
	}
	return nil
}

func scanRisk(scan func(dest ...any) error) (*model.Risk, error) {
	var (
		code    string
		status  string
		version int64
		data    string
	)
	if err := scan(&code, &status, &version, &data); err != nil {
		return nil, err
	}

	var risk model.Risk
	if err := decode(data, &risk); err != nil {
		return nil, err
	}
	risk.Code = code
	risk.Status = types.RiskStatus(status)
	risk.Version = version
	return &risk, nil
}

func (r *riskRepository) load(ctx context.Context, q queryer, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	risk, err := scanRisk(q.QueryRowContext(ctx, r.bind(querySelectRisk), orgID.String(), riskID).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", riskID))
	}
	risk.ID = riskID
	risk.OrganizationID = orgID

	agg := &model.RiskAggregate{Risk: risk}

	if agg.Assessment, err = r.loadAssessment(ctx, q, orgID, riskID); err != nil {
		return nil, err
	}
	if agg.Treatment, err = r.loadTreatment(ctx, q, orgID, riskID); err != nil {
		return nil, err
	}
	return agg, nil
}

func (r *riskRepository) loadAssessment(ctx context.Context, q queryer, orgID types.OrganizationID, riskID int64) (*model.RiskAssessment, error) {
	var data string
	if err := q.QueryRowContext(ctx, r.bind(querySelectAsmt), orgID.String(), riskID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("risk_id", riskID))
	}

	var a model.RiskAssessment
	if err := decode(data, &a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode assessment", goerr.V("risk_id", riskID))
	}
	a.RiskID = riskID

	var err error
	if a.AffectedAssetIDs, err = r.loadIDs(ctx, q, querySelectAssets, orgID, riskID); err != nil {
		return nil, err
	}
	if a.ExistingControlIDs, err = r.loadIDs(ctx, q, querySelectControls, orgID, riskID); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *riskRepository) loadIDs(ctx context.Context, q queryer, query string, orgID types.OrganizationID, riskID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, r.bind(query), orgID.String(), riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query assessment links", goerr.V("risk_id", riskID))
	}
	defer func() { _ = rows.Close() }()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, goerr.Wrap(err, "failed to scan assessment link", goerr.V("risk_id", riskID))
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate assessment links", goerr.V("risk_id", riskID))
	}
	return ids, nil
}

func (r *riskRepository) loadTreatment(ctx context.Context, q queryer, orgID types.OrganizationID, riskID int64) (*model.RiskTreatment, error) {
	var data string
	if err := q.QueryRowContext(ctx, r.bind(querySelectTrtm), orgID.String(), riskID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V("risk_id", riskID))
	}

	var t model.RiskTreatment
	if err := decode(data, &t); err != nil {
		return nil, goerr.Wrap(err, "failed to decode treatment", goerr.V("risk_id", riskID))
	}
	t.RiskID = riskID

	rows, err := q.QueryContext(ctx, r.bind(querySelectUpdates), orgID.String(), riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query treatment updates", goerr.V("risk_id", riskID))
	}
	defer func() { _ = rows.Close() }()

	t.Updates = []*model.RiskTreatmentUpdate{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, goerr.Wrap(err, "failed to scan treatment update", goerr.V("risk_id", riskID))
		}
		var u model.RiskTreatmentUpdate
		if err := decode(raw, &u); err != nil {
			return nil, goerr.Wrap(err, "failed to decode treatment update", goerr.V("risk_id", riskID))
		}
		t.Updates = append(t.Updates, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate treatment updates", goerr.V("risk_id", riskID))
	}
	return &t, nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	return r.load(ctx, r.db, orgID, riskID)
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	rows, err := r.db.QueryContext(ctx, r.bind(queryListRisks), orgID.String())
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V("organization_id", orgID))
	}
	defer func() { _ = rows.Close() }()

	risks := []*model.Risk{}
	for rows.Next() {
		risk, err := scanRisk(rows.Scan)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk", goerr.V("organization_id", orgID))
		}
		risk.OrganizationID = orgID
		risks = append(risks, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate risks", goerr.V("organization_id", orgID))
	}
	return risks, nil
}

func (r *riskRepository) Transact(ctx context.Context, orgID types.OrganizationID, riskID int64, fn interfaces.TransactFunc) (*model.RiskAggregate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	agg, err := r.load(ctx, tx, orgID, riskID)
	if err != nil {
		return nil, err
	}
	loadedVersion := agg.Risk.Version
	code := agg.Risk.Code
	createdAt := agg.Risk.CreatedAt

	change, err := fn(ctx, agg)
	if err != nil {
		return nil, err
	}
	if err := change.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk change", goerr.V("risk_id", riskID))
	}

	updated := change.Risk.Clone()
	updated.ID = riskID
	updated.OrganizationID = orgID
	updated.Code = code
	updated.CreatedAt = createdAt
	updated.Version = loadedVersion + 1

	data, err := encode(updated)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx, r.bind(queryUpdateRisk),
		updated.Status.String(), updated.Version, data, orgID.String(), riskID, loadedVersion)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update risk", goerr.V("risk_id", riskID))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get affected rows", goerr.V("risk_id", riskID))
	}
	if affected == 0 {
		return nil, goerr.Wrap(interfaces.ErrConflict, "risk was modified concurrently",
			goerr.V("risk_id", riskID), goerr.V("loaded_version", loadedVersion))
	}

	if change.Assessment != nil {
		if err := r.upsertAssessment(ctx, tx, orgID, riskID, change.Assessment); err != nil {
			return nil, err
		}
	}
	if change.Treatment != nil {
		if err := r.upsertTreatment(ctx, tx, orgID, riskID, change.Treatment); err != nil {
			return nil, err
		}
	}
	if change.TreatmentUpdate != nil {
		if err := r.insertTreatmentUpdate(ctx, tx, orgID, riskID, change.TreatmentUpdate); err != nil {
			return nil, err
		}
	}

	h := change.History.Clone()
	h.RiskID = riskID
	if err := r.insertHistory(ctx, tx, orgID, h); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, goerr.Wrap(err, "failed to commit risk change", goerr.V("risk_id", riskID))
	}

	return r.load(ctx, r.db, orgID, riskID)
}

func (r *riskRepository) upsertAssessment(ctx context.Context, tx *sql.Tx, orgID types.OrganizationID, riskID int64, a *model.RiskAssessment) error {
	body := a.Clone()
	body.RiskID = riskID
	assets := body.AffectedAssetIDs
	controls := body.ExistingControlIDs
	body.AffectedAssetIDs = nil
	body.ExistingControlIDs = nil

	data, err := encode(body)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.bind(queryUpsertAsmt), orgID.String(), riskID, body.Status.String(), data); err != nil {
		return goerr.Wrap(err, "failed to upsert assessment", goerr.V("risk_id", riskID))
	}

	if err := r.replaceIDs(ctx, tx, queryDeleteAssets, queryInsertAsset, orgID, riskID, assets); err != nil {
		return goerr.Wrap(err, "failed to replace affected assets", goerr.V("risk_id", riskID))
	}
	if err := r.replaceIDs(ctx, tx, queryDeleteControls, queryInsertControl, orgID, riskID, controls); err != nil {
		return goerr.Wrap(err, "failed to replace existing controls", goerr.V("risk_id", riskID))
	}
	return nil
}

// replaceIDs deletes every link of the risk and recreates the given set
func (r *riskRepository) replaceIDs(ctx context.Context, tx *sql.Tx, deleteQuery, insertQuery string, orgID types.OrganizationID, riskID int64, ids []string) error {
	if _, err := tx.ExecContext(ctx, r.bind(deleteQuery), orgID.String(), riskID); err != nil {
		return goerr.Wrap(err, "failed to delete links")
	}
	for i, id := range model.UniqueIDs(ids) {
		if _, err := tx.ExecContext(ctx, r.bind(insertQuery), orgID.String(), riskID, id, i); err != nil {
			return goerr.Wrap(err, "failed to insert link", goerr.V("id", id))
		}
	}
	return nil
}

func (r *riskRepository) upsertTreatment(ctx context.Context, tx *sql.Tx, orgID types.OrganizationID, riskID int64, t *model.RiskTreatment) error {
	body := t.Clone()
	body.RiskID = riskID
	body.Updates = nil

	data, err := encode(body)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.bind(queryUpsertTrtm), orgID.String(), riskID, body.Status.String(), data); err != nil {
		return goerr.Wrap(err, "failed to upsert treatment", goerr.V("risk_id", riskID))
	}
	return nil
}

func (r *riskRepository) insertTreatmentUpdate(ctx context.Context, tx *sql.Tx, orgID types.OrganizationID, riskID int64, u *model.RiskTreatmentUpdate) error {
	body := u.Clone()
	body.RiskID = riskID
	if body.ID == "" {
		body.ID = model.NewID()
	}

	data, err := encode(body)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, r.bind(queryInsertUpdate),
		body.ID, orgID.String(), riskID, body.CreatedAt.UnixNano(), data); err != nil {
		return goerr.Wrap(err, "failed to insert treatment update", goerr.V("risk_id", riskID))
	}
	return nil
}

func (r *riskRepository) ListHistory(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.RiskHistory, error) {
	var exists int
	if err := r.db.QueryRowContext(ctx, r.bind(queryRiskExists), orgID.String(), riskID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to check risk existence", goerr.V("risk_id", riskID))
	}

	rows, err := r.db.QueryContext(ctx, r.bind(querySelectHist), orgID.String(), riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risk histories", goerr.V("risk_id", riskID))
	}
	defer func() { _ = rows.Close() }()

	histories := []*model.RiskHistory{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk history", goerr.V("risk_id", riskID))
		}
		var h model.RiskHistory
		if err := decode(data, &h); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk history", goerr.V("risk_id", riskID))
		}
		histories = append(histories, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate risk histories", goerr.V("risk_id", riskID))
	}
	return histories, nil
}
