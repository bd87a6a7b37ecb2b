package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/utils/errutil"
)

// stepFunc computes the change of one transition. The history row only needs
// Action, Before, After and Note; the rest is filled by transition.
type stepFunc func(agg *model.RiskAggregate, now time.Time) (*model.RiskChange, error)

func validationError(field, msg string) error {
	return goerr.Wrap(ErrValidation, msg, goerr.V(FieldKey, field))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// organization resolves the organization an operation runs in
func (uc *RiskUseCase) organization(orgID types.OrganizationID) (*model.Organization, error) {
	if err := orgID.Validate(); err != nil {
		return nil, goerr.Wrap(ErrValidation, "invalid organization ID",
			goerr.V(FieldKey, "organization_id"),
			goerr.V(OrganizationIDKey, orgID),
			goerr.V("reason", err.Error()))
	}
	if uc.registry == nil || uc.registry.Len() == 0 {
		return &model.Organization{ID: orgID}, nil
	}
	org, err := uc.registry.Get(orgID)
	if err != nil {
		return nil, goerr.Wrap(ErrOrganizationNotFound, "organization is not registered",
			goerr.V(OrganizationIDKey, orgID))
	}
	return org, nil
}

func requireActor(actorID string) error {
	if isBlank(actorID) {
		return validationError("actor_id", "actor ID is required")
	}
	return nil
}

func requireRiskStatus(risk *model.Risk, required ...types.RiskStatus) error {
	if slices.Contains(required, risk.Status) {
		return nil
	}
	return goerr.Wrap(ErrInvalidStateTransition, "risk is not in a status that allows this operation",
		goerr.V(RiskIDKey, risk.ID),
		goerr.V(CurrentStatusKey, risk.Status),
		goerr.V(RequiredStatusKey, required))
}

// requireAssessment checks the risk is in analysis and its assessment is in one of the required statuses
func requireAssessment(agg *model.RiskAggregate, required ...types.AssessmentStatus) (*model.RiskAssessment, error) {
	if err := requireRiskStatus(agg.Risk, types.RiskStatusAnalysisInProgress); err != nil {
		return nil, err
	}
	a := agg.Assessment
	if a == nil {
		return nil, goerr.Wrap(ErrAssessmentNotFound, "risk in analysis has no assessment",
			goerr.V(RiskIDKey, agg.Risk.ID))
	}
	if !slices.Contains(required, a.Status) {
		return nil, goerr.Wrap(ErrInvalidStateTransition, "assessment is not in a status that allows this operation",
			goerr.V(RiskIDKey, agg.Risk.ID),
			goerr.V(CurrentStatusKey, a.Status),
			goerr.V(RequiredStatusKey, required))
	}
	return a, nil
}

// requireTreatment checks the risk is analyzed and its treatment is in one of the required statuses
func requireTreatment(agg *model.RiskAggregate, required ...types.TreatmentStatus) (*model.RiskTreatment, error) {
	if err := requireRiskStatus(agg.Risk, types.RiskStatusAnalyzed); err != nil {
		return nil, err
	}
	t := agg.Treatment
	if t == nil {
		return nil, goerr.Wrap(ErrTreatmentNotFound, "analyzed risk has no treatment",
			goerr.V(RiskIDKey, agg.Risk.ID))
	}
	if !slices.Contains(required, t.Status) {
		return nil, goerr.Wrap(ErrInvalidStateTransition, "treatment is not in a status that allows this operation",
			goerr.V(RiskIDKey, agg.Risk.ID),
			goerr.V(CurrentStatusKey, t.Status),
			goerr.V(RequiredStatusKey, required))
	}
	return t, nil
}

// transition runs one workflow step in a repository transaction and
// dispatches side effects after it commits
func (uc *RiskUseCase) transition(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, step stepFunc) (*model.RiskAggregate, error) {
	org, err := uc.organization(orgID)
	if err != nil {
		return nil, err
	}
	if err := requireActor(actorID); err != nil {
		return nil, err
	}

	var history *model.RiskHistory
	agg, err := uc.repo.Risk().Transact(ctx, orgID, riskID, func(ctx context.Context, agg *model.RiskAggregate) (*model.RiskChange, error) {
		if agg.Risk.IsDeleted() {
			return nil, goerr.Wrap(ErrRiskNotFound, "risk is deleted", goerr.V(RiskIDKey, riskID))
		}

		now := uc.now()
		change, err := step(agg, now)
		if err != nil {
			return nil, err
		}

		change.Risk.UpdatedAt = now
		if change.Assessment != nil {
			change.Assessment.UpdatedAt = now
		}
		if change.Treatment != nil {
			change.Treatment.UpdatedAt = now
		}
		h := change.History
		h.ID = model.NewID()
		h.OrganizationID = orgID
		h.RiskID = riskID
		h.ActorID = actorID
		h.CreatedAt = now
		history = h
		return change, nil
	})
	if err != nil {
		return nil, uc.translate(ctx, err, orgID, riskID)
	}

	uc.afterCommit(ctx, org, agg, history)
	return agg, nil
}

// translate maps repository errors to use case errors
func (uc *RiskUseCase) translate(ctx context.Context, err error, orgID types.OrganizationID, riskID int64) error {
	switch {
	case errors.Is(err, interfaces.ErrNotFound):
		return goerr.Wrap(ErrRiskNotFound, "risk not found",
			goerr.V(OrganizationIDKey, orgID),
			goerr.V(RiskIDKey, riskID))

	case errors.Is(err, interfaces.ErrConflict):
		return goerr.Wrap(ErrConflict, "risk was modified by another operation",
			goerr.V(OrganizationIDKey, orgID),
			goerr.V(RiskIDKey, riskID))

	case errors.Is(err, ErrIntegrityFault):
		return errutil.Handle(ctx, err, "risk aggregate integrity fault")
	}
	return err
}
