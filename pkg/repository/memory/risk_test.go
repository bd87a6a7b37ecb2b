package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/repository/memory"
)

const orgID = types.OrganizationID("acme")

func newChange(agg *model.RiskAggregate, action types.HistoryAction) *model.RiskChange {
	agg.Risk.Status = types.RiskStatusActualRisk
	return &model.RiskChange{
		Risk:       agg.Risk,
		Assessment: &model.RiskAssessment{Status: types.AssessmentStatusAssessorAnalysis},
		History: &model.RiskHistory{
			ID:        model.NewID(),
			Action:    action,
			CreatedAt: time.Now().UTC(),
		},
	}
}

func TestTransactConflict(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created, err := repo.Risk().Create(ctx, orgID, &model.Risk{Title: "race"}, &model.RiskHistory{ID: model.NewID()})
	gt.NoError(t, err).Required()

	_, err = repo.Risk().Transact(ctx, orgID, created.ID, func(ctx context.Context, outer *model.RiskAggregate) (*model.RiskChange, error) {
		// A competing transition commits while this one is still computing
		_, err := repo.Risk().Transact(ctx, orgID, created.ID, func(ctx context.Context, inner *model.RiskAggregate) (*model.RiskChange, error) {
			return newChange(inner, types.HistoryRiskValidated), nil
		})
		gt.NoError(t, err).Required()
		return newChange(outer, types.HistoryRiskValidated), nil
	})
	gt.Error(t, err).Is(interfaces.ErrConflict)

	histories, err := repo.Risk().ListHistory(ctx, orgID, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, histories).Length(2)

	agg, err := repo.Risk().Get(ctx, orgID, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, agg.Risk.Version).Equal(int64(2))
}

func TestWriteInterceptorAbortsTransaction(t *testing.T) {
	errInjected := errors.New("injected history failure")
	var failHistory bool
	var written []string

	repo := memory.New(memory.WithWriteInterceptor(func(table string) error {
		if failHistory && table == memory.TableHistories {
			return errInjected
		}
		written = append(written, table)
		return nil
	}))
	ctx := context.Background()

	created, err := repo.Risk().Create(ctx, orgID, &model.Risk{Title: "atomic"}, &model.RiskHistory{ID: model.NewID()})
	gt.NoError(t, err).Required()
	gt.Value(t, written).Equal([]string{memory.TableRisks, memory.TableHistories})

	failHistory = true
	_, err = repo.Risk().Transact(ctx, orgID, created.ID, func(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error) {
		return newChange(agg, types.HistoryAssessmentStarted), nil
	})
	gt.Error(t, err).Is(errInjected)

	agg, err := repo.Risk().Get(ctx, orgID, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, agg.Risk.Status).Equal(types.RiskStatus(""))
	gt.Value(t, agg.Assessment).Nil()
	gt.Value(t, agg.Risk.Version).Equal(int64(1))

	histories, err := repo.Risk().ListHistory(ctx, orgID, created.ID)
	gt.NoError(t, err).Required()
	gt.Array(t, histories).Length(1)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	repo := memory.New()
	ctx := context.Background()

	created, err := repo.Risk().Create(ctx, orgID, &model.Risk{Title: "copy", Tags: []string{"a"}}, &model.RiskHistory{ID: model.NewID()})
	gt.NoError(t, err).Required()

	created.Tags[0] = "mutated"
	created.Title = "mutated"

	agg, err := repo.Risk().Get(ctx, orgID, created.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, agg.Risk.Title).Equal("copy")
	gt.Value(t, agg.Risk.Tags[0]).Equal("a")
}
