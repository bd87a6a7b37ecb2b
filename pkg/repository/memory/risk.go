package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// orgStore holds every risk record of one organization
type orgStore struct {
	nextID      int64
	risks       map[int64]*model.Risk
	assessments map[int64]*model.RiskAssessment
	treatments  map[int64]*model.RiskTreatment
	updates     map[int64][]*model.RiskTreatmentUpdate
	histories   map[int64][]*model.RiskHistory
}

type riskRepository struct {
	mu        sync.RWMutex
	orgs      map[types.OrganizationID]*orgStore
	intercept WriteInterceptor
}

func newRiskRepository() *riskRepository {
	return &riskRepository{
		orgs: make(map[types.OrganizationID]*orgStore),
	}
}

func (r *riskRepository) ensureOrg(orgID types.OrganizationID) *orgStore {
	s, exists := r.orgs[orgID]
	if !exists {
		s = &orgStore{
			nextID:      1,
			risks:       make(map[int64]*model.Risk),
			assessments: make(map[int64]*model.RiskAssessment),
			treatments:  make(map[int64]*model.RiskTreatment),
			updates:     make(map[int64][]*model.RiskTreatmentUpdate),
			histories:   make(map[int64][]*model.RiskHistory),
		}
		r.orgs[orgID] = s
	}
	return s
}

func (r *riskRepository) check(tables ...string) error {
	if r.intercept == nil {
		return nil
	}
	for _, table := range tables {
		if err := r.intercept(table); err != nil {
			return goerr.Wrap(err, "failed to write table", goerr.V("table", table))
		}
	}
	return nil
}

func (r *riskRepository) Create(ctx context.Context, orgID types.OrganizationID, risk *model.Risk, history *model.RiskHistory) (*model.Risk, error) {
	if history == nil {
		return nil, goerr.New("history is required to create a risk")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.check(TableRisks, TableHistories); err != nil {
		return nil, err
	}

	s := r.ensureOrg(orgID)

	now := time.Now().UTC()
	created := risk.Clone()
	created.ID = s.nextID
	created.Code = model.FormatRiskCode(created.ID)
	created.OrganizationID = orgID
	created.Version = 1
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}

	h := history.Clone()
	h.OrganizationID = orgID
	h.RiskID = created.ID
	if h.CreatedAt.IsZero() {
		h.CreatedAt = created.CreatedAt
	}

	s.nextID++
	s.risks[created.ID] = created
	s.histories[created.ID] = append(s.histories[created.ID], h)
	history.RiskID = created.ID

	return created.Clone(), nil
}

// load returns a deep copy of the aggregate. Caller must hold the lock.
func (r *riskRepository) load(orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	s, exists := r.orgs[orgID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}
	risk, exists := s.risks[riskID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}

	agg := &model.RiskAggregate{
		Risk:       risk.Clone(),
		Assessment: s.assessments[riskID].Clone(),
	}
	if t, ok := s.treatments[riskID]; ok {
		agg.Treatment = t.Clone()
		agg.Treatment.Updates = make([]*model.RiskTreatmentUpdate, 0, len(s.updates[riskID]))
		for _, u := range s.updates[riskID] {
			agg.Treatment.Updates = append(agg.Treatment.Updates, u.Clone())
		}
	}
	return agg, nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.load(orgID, riskID)
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.orgs[orgID]
	if !exists {
		return []*model.Risk{}, nil
	}

	risks := make([]*model.Risk, 0, len(s.risks))
	for _, risk := range s.risks {
		risks = append(risks, risk.Clone())
	}
	slices.SortFunc(risks, func(a, b *model.Risk) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return risks, nil
}

func (r *riskRepository) Transact(ctx context.Context, orgID types.OrganizationID, riskID int64, fn interfaces.TransactFunc) (*model.RiskAggregate, error) {
	r.mu.RLock()
	agg, err := r.load(orgID, riskID)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	loadedVersion := agg.Risk.Version

	change, err := fn(ctx, agg)
	if err != nil {
		return nil, err
	}
	if err := change.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid risk change", goerr.V("risk_id", riskID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.orgs[orgID]
	current := s.risks[riskID]
	if current.Version != loadedVersion {
		return nil, goerr.Wrap(interfaces.ErrConflict, "risk was modified concurrently",
			goerr.V("risk_id", riskID),
			goerr.V("loaded_version", loadedVersion),
			goerr.V("current_version", current.Version))
	}

	tables := []string{TableRisks}
	if change.Assessment != nil {
		tables = append(tables, TableAssessments)
	}
	if change.Treatment != nil {
		tables = append(tables, TableTreatments)
	}
	if change.TreatmentUpdate != nil {
		tables = append(tables, TableTreatmentUpdates)
	}
	tables = append(tables, TableHistories)
	if err := r.check(tables...); err != nil {
		return nil, err
	}

	updated := change.Risk.Clone()
	updated.ID = riskID
	updated.OrganizationID = orgID
	updated.Code = current.Code
	updated.CreatedAt = current.CreatedAt
	updated.Version = current.Version + 1
	s.risks[riskID] = updated

	if change.Assessment != nil {
		a := change.Assessment.Clone()
		a.RiskID = riskID
		s.assessments[riskID] = a
	}
	if change.Treatment != nil {
		t := change.Treatment.Clone()
		t.RiskID = riskID
		t.Updates = nil
		s.treatments[riskID] = t
	}
	if change.TreatmentUpdate != nil {
		u := change.TreatmentUpdate.Clone()
		u.RiskID = riskID
		s.updates[riskID] = append(s.updates[riskID], u)
	}

	h := change.History.Clone()
	h.OrganizationID = orgID
	h.RiskID = riskID
	s.histories[riskID] = append(s.histories[riskID], h)

	return r.load(orgID, riskID)
}

func (r *riskRepository) ListHistory(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.RiskHistory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.orgs[orgID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}
	if _, exists := s.risks[riskID]; !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
	}

	histories := make([]*model.RiskHistory, 0, len(s.histories[riskID]))
	for _, h := range s.histories[riskID] {
		histories = append(histories, h.Clone())
	}
	return histories, nil
}
