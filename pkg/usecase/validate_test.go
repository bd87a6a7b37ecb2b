package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

func TestValidateDB(t *testing.T) {
	ctx := context.Background()

	t.Run("workflow-produced risks are consistent", func(t *testing.T) {
		f := newFixture(t)
		f.submit(t)
		f.inAnalysis(t)
		f.analyzed(t, types.LikelihoodLikely, types.ImpactMajor)

		result, err := f.uc.ValidateDB(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.Number(t, result.Checked).Equal(3)
		gt.B(t, result.HasIssues()).Describef("issues: %+v", result.Issues).False()
	})

	t.Run("detects an analyzed risk without sub-records", func(t *testing.T) {
		f := newFixture(t)
		risk := f.submit(t)

		_, err := f.repo.Risk().Transact(ctx, testOrgID, risk.ID, func(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error) {
			agg.Risk.Status = types.RiskStatusAnalyzed
			return &model.RiskChange{
				Risk:    agg.Risk,
				History: &model.RiskHistory{ID: model.NewID(), Action: types.HistoryRiskValidated},
			}, nil
		})
		gt.NoError(t, err).Required()

		result, err := f.uc.ValidateDB(ctx, testOrgID)
		gt.NoError(t, err).Required()
		gt.B(t, result.HasIssues()).True()
		for _, issue := range result.Issues {
			gt.Value(t, issue.RiskID).Equal(risk.ID)
			gt.Value(t, issue.OrganizationID).Equal(testOrgID)
		}
	})

	t.Run("no organizations means nothing to check", func(t *testing.T) {
		f := newFixture(t)
		f.submit(t)

		result, err := f.uc.ValidateDB(ctx)
		gt.NoError(t, err).Required()
		gt.Number(t, result.Checked).Equal(0)
	})
}
