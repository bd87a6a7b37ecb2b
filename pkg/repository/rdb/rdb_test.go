package rdb

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

func newMock(t *testing.T) (*RDB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	gt.NoError(t, err).Required()
	t.Cleanup(func() { _ = db.Close() })
	return New(db, DialectPostgres), mock
}

func pg(query string) string {
	return regexp.QuoteMeta(rebind(DialectPostgres, query))
}

func expectLoadRiskOnly(mock sqlmock.Sqlmock, version int64) {
	mock.ExpectQuery(pg(querySelectRisk)).
		WithArgs("acme", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "status", "version", "data"}).
			AddRow("RISK-0001", "actual_risk", version, `{"Title":"Exposed admin panel"}`))
	mock.ExpectQuery(pg(querySelectAsmt)).
		WithArgs("acme", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
	mock.ExpectQuery(pg(querySelectTrtm)).
		WithArgs("acme", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
}

func startAssessment(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error) {
	agg.Risk.Status = types.RiskStatusAnalysisInProgress
	return &model.RiskChange{
		Risk: agg.Risk,
		History: &model.RiskHistory{
			ID:     "0193c5a0-0000-7000-8000-000000000001",
			Action: types.HistoryAssessmentStarted,
		},
	}, nil
}

func TestRebind(t *testing.T) {
	gt.Value(t, rebind(DialectPostgres, "SELECT a FROM t WHERE x = ? AND y = ?")).
		Equal("SELECT a FROM t WHERE x = $1 AND y = $2")
	gt.Value(t, rebind(DialectSQLite, "SELECT a FROM t WHERE x = ?")).
		Equal("SELECT a FROM t WHERE x = ?")
}

func TestCreate(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(pg(queryNextRiskID)).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(7)))
	mock.ExpectExec(pg(queryInsertRisk)).
		WithArgs("acme", int64(7), "RISK-0007", "risk_identified", int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryInsertHist)).
		WithArgs(sqlmock.AnyArg(), "acme", int64(7), "risk_submitted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	history := &model.RiskHistory{Action: types.HistoryRiskSubmitted}
	created, err := repo.Risk().Create(ctx, "acme", &model.Risk{
		Title:  "Exposed admin panel",
		Status: types.RiskStatusIdentified,
	}, history)
	gt.NoError(t, err).Required()
	gt.Value(t, created.ID).Equal(int64(7))
	gt.Value(t, created.Code).Equal("RISK-0007")
	gt.Value(t, history.RiskID).Equal(int64(7))
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackOnHistoryFailure(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(pg(queryNextRiskID)).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1)))
	mock.ExpectExec(pg(queryInsertRisk)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryInsertHist)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Risk().Create(ctx, "acme", &model.Risk{Title: "x"}, &model.RiskHistory{Action: types.HistoryRiskSubmitted})
	gt.Error(t, err)
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestTransact(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	expectLoadRiskOnly(mock, 3)
	mock.ExpectExec(pg(queryUpdateRisk)).
		WithArgs("risk_analysis_in_progress", int64(4), sqlmock.AnyArg(), "acme", int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryInsertHist)).
		WithArgs("0193c5a0-0000-7000-8000-000000000001", "acme", int64(1), "assessment_started", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(pg(querySelectRisk)).
		WithArgs("acme", int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "status", "version", "data"}).
			AddRow("RISK-0001", "risk_analysis_in_progress", int64(4), `{"Title":"Exposed admin panel"}`))
	mock.ExpectQuery(pg(querySelectAsmt)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))
	mock.ExpectQuery(pg(querySelectTrtm)).
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	agg, err := repo.Risk().Transact(ctx, "acme", 1, startAssessment)
	gt.NoError(t, err).Required()
	gt.Value(t, agg.Risk.Status).Equal(types.RiskStatusAnalysisInProgress)
	gt.Value(t, agg.Risk.Version).Equal(int64(4))
	gt.Value(t, agg.Risk.Title).Equal("Exposed admin panel")
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactConflict(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	expectLoadRiskOnly(mock, 3)
	mock.ExpectExec(pg(queryUpdateRisk)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Risk().Transact(ctx, "acme", 1, startAssessment)
	gt.Error(t, err).Is(interfaces.ErrConflict)
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactRollsBackOnHistoryFailure(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	expectLoadRiskOnly(mock, 1)
	mock.ExpectExec(pg(queryUpdateRisk)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryInsertHist)).
		WillReturnError(errors.New("history table unavailable"))
	mock.ExpectRollback()

	_, err := repo.Risk().Transact(ctx, "acme", 1, startAssessment)
	gt.Error(t, err)
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactNotFound(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(pg(querySelectRisk)).
		WithArgs("acme", int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"code", "status", "version", "data"}))
	mock.ExpectRollback()

	_, err := repo.Risk().Transact(ctx, "acme", 9, startAssessment)
	gt.Error(t, err).Is(interfaces.ErrNotFound)
	gt.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactReplacesAssessmentLinks(t *testing.T) {
	repo, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	expectLoadRiskOnly(mock, 2)
	mock.ExpectExec(pg(queryUpdateRisk)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryUpsertAsmt)).
		WithArgs("acme", int64(1), "grc_approval", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryDeleteAssets)).
		WithArgs("acme", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(pg(queryInsertAsset)).
		WithArgs("acme", int64(1), "srv-1", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryInsertAsset)).
		WithArgs("acme", int64(1), "srv-2", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pg(queryDeleteControls)).
		WithArgs("acme", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(pg(queryInsertHist)).
		WillReturnError(errors.New("abort after links"))
	mock.ExpectRollback()

	_, err := repo.Risk().Transact(ctx, "acme", 1, func(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error) {
		return &model.RiskChange{
			Risk: agg.Risk,
			Assessment: &model.RiskAssessment{
				Status:           types.AssessmentStatusGRCApproval,
				AffectedAssetIDs: []string{"srv-1", "srv-2", "srv-1"},
			},
			History: &model.RiskHistory{Action: types.HistoryAssessmentSubmitted},
		}, nil
	})
	gt.Error(t, err)
	gt.NoError(t, mock.ExpectationsWereMet())
}
