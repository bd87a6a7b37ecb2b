package usecase

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// RiskUseCase drives the risk lifecycle: intake, assessment and treatment.
// Every mutating operation is one repository transaction that writes exactly
// one history row.
type RiskUseCase struct {
	repo     interfaces.Repository
	registry *model.OrganizationRegistry
	notifier interfaces.Notifier
	cache    interfaces.CacheInvalidator
	now      func() time.Time
	dispatch dispatchFunc
}

// GetRisk returns the risk with its assessment and treatment. Deleted risks are not found.
func (uc *RiskUseCase) GetRisk(ctx context.Context, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	if _, err := uc.organization(orgID); err != nil {
		return nil, err
	}

	agg, err := uc.repo.Risk().Get(ctx, orgID, riskID)
	if err != nil {
		return nil, uc.translate(ctx, err, orgID, riskID)
	}
	if agg.Risk.IsDeleted() {
		return nil, goerr.Wrap(ErrRiskNotFound, "risk is deleted",
			goerr.V(OrganizationIDKey, orgID),
			goerr.V(RiskIDKey, riskID))
	}
	return agg, nil
}

// ListRisks returns live risks of the organization ordered by ID
func (uc *RiskUseCase) ListRisks(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	if _, err := uc.organization(orgID); err != nil {
		return nil, err
	}

	risks, err := uc.repo.Risk().List(ctx, orgID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list risks", goerr.V(OrganizationIDKey, orgID))
	}
	return slices.DeleteFunc(risks, (*model.Risk).IsDeleted), nil
}

// ListHistory returns the transition history of a live risk in creation order
func (uc *RiskUseCase) ListHistory(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.RiskHistory, error) {
	if _, err := uc.GetRisk(ctx, orgID, riskID); err != nil {
		return nil, err
	}

	histories, err := uc.repo.Risk().ListHistory(ctx, orgID, riskID)
	if err != nil {
		return nil, uc.translate(ctx, err, orgID, riskID)
	}
	return histories, nil
}

// DeleteRisk soft-deletes a risk. The records stay for audit.
func (uc *RiskUseCase) DeleteRisk(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string) (*model.RiskAggregate, error) {
	return uc.transition(ctx, orgID, riskID, actorID, func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error) {
		risk := agg.Risk
		deletedAt := now
		risk.DeletedAt = &deletedAt
		risk.DeletedBy = actorID

		return &model.RiskChange{
			Risk: risk,
			History: &model.RiskHistory{
				Action: types.HistoryRiskDeleted,
				Before: model.Snapshot{"status": risk.Status.String()},
				After:  model.Snapshot{"status": risk.Status.String(), "deleted": true},
			},
		}, nil
	})
}

// ListAuditLogs returns the audit trail written for a live risk
func (uc *RiskUseCase) ListAuditLogs(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.AuditLog, error) {
	if _, err := uc.GetRisk(ctx, orgID, riskID); err != nil {
		return nil, err
	}

	logs, err := uc.repo.AuditLog().List(ctx, orgID, auditEntityRisk, strconv.FormatInt(riskID, 10))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list audit logs",
			goerr.V(OrganizationIDKey, orgID),
			goerr.V(RiskIDKey, riskID))
	}
	return logs, nil
}
