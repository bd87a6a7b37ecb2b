package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/repository/memory"
	"github.com/secmon-lab/riskflow/pkg/usecase"
)

const (
	testOrgID   types.OrganizationID = "acme"
	reporterID                       = "U-reporter"
	grcID                            = "U-grc"
	assessorID                       = "U-assessor"
	ownerID                          = "U-owner"
	executiveID                      = "U-exec"
)

var testNow = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
	err  error
}

func (n *recordingNotifier) Notify(ctx context.Context, notification *model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return n.err
}

func (n *recordingNotifier) Sent() []*model.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*model.Notification(nil), n.sent...)
}

type recordingCache struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (c *recordingCache) Invalidate(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, keys...)
	return c.err
}

func (c *recordingCache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.keys...)
}

type fixture struct {
	repo     *memory.Memory
	uc       *usecase.RiskUseCase
	notifier *recordingNotifier
	cache    *recordingCache
}

func newFixture(t *testing.T, repoOpts ...memory.Option) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.New(repoOpts...),
		notifier: &recordingNotifier{},
		cache:    &recordingCache{},
	}
	f.uc = usecase.New(f.repo,
		usecase.WithSyncSideEffects(),
		usecase.WithClock(func() time.Time { return testNow }),
		usecase.WithNotifier(f.notifier),
		usecase.WithCacheInvalidator(f.cache),
	).Risk
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func (f *fixture) submit(t *testing.T) *model.Risk {
	t.Helper()
	risk, err := f.uc.Submit(context.Background(), testOrgID, reporterID, usecase.SubmitRiskInput{
		Title:       "Unencrypted backups",
		Description: "Nightly database backups are stored without encryption",
		Category:    "data-protection",
		Source:      types.RiskSourceInternalReview,
		Tags:        []string{"backup", "storage"},
	})
	gt.NoError(t, err).Required()
	return risk
}

// inAnalysis returns a risk whose assessment is open for the assessor
func (f *fixture) inAnalysis(t *testing.T) int64 {
	t.Helper()
	ctx := context.Background()
	risk := f.submit(t)

	_, err := f.uc.Validate(ctx, testOrgID, risk.ID, grcID, usecase.ValidateRiskInput{
		Approved:   true,
		AssessorID: assessorID,
	})
	gt.NoError(t, err).Required()

	_, err = f.uc.StartAssessment(ctx, testOrgID, risk.ID, grcID, "")
	gt.NoError(t, err).Required()
	return risk.ID
}

func assessmentInput(l types.Likelihood, i types.Impact) usecase.AssessmentInput {
	return usecase.AssessmentInput{
		ThreatDescription:  "Backup files can be read by anyone with bucket access",
		Likelihood:         l,
		Impact:             i,
		RecommendedOwnerID: ownerID,
		AffectedAssetIDs:   []string{"asset-db", "asset-bucket"},
		ExistingControlIDs: []string{"ctl-iam"},
	}
}

// analyzed returns a risk with an approved assessment rated l x i
func (f *fixture) analyzed(t *testing.T, l types.Likelihood, i types.Impact) int64 {
	t.Helper()
	ctx := context.Background()
	riskID := f.inAnalysis(t)

	_, err := f.uc.SubmitAssessment(ctx, testOrgID, riskID, assessorID, assessmentInput(l, i))
	gt.NoError(t, err).Required()

	_, err = f.uc.ReviewAssessment(ctx, testOrgID, riskID, grcID, usecase.ReviewAssessmentInput{Approved: true})
	gt.NoError(t, err).Required()
	return riskID
}

// decided returns a risk rated l x i whose treatment decision has been submitted
func (f *fixture) decided(t *testing.T, l types.Likelihood, i types.Impact, decision types.TreatmentDecision) int64 {
	t.Helper()
	riskID := f.analyzed(t, l, i)
	_, err := f.uc.SubmitDecision(context.Background(), testOrgID, riskID, ownerID, decisionInput(decision))
	gt.NoError(t, err).Required()
	return riskID
}

// mitigating returns a high risk under mitigation after one progress update
func (f *fixture) mitigating(t *testing.T, update usecase.MitigationUpdateInput) int64 {
	t.Helper()
	riskID := f.decided(t, types.LikelihoodLikely, types.ImpactMajor, types.TreatmentDecisionMitigate)
	_, err := f.uc.UpdateMitigationProgress(context.Background(), testOrgID, riskID, ownerID, update)
	gt.NoError(t, err).Required()
	return riskID
}

func (f *fixture) get(t *testing.T, riskID int64) *model.RiskAggregate {
	t.Helper()
	agg, err := f.uc.GetRisk(context.Background(), testOrgID, riskID)
	gt.NoError(t, err).Required()
	return agg
}

func (f *fixture) actions(t *testing.T, riskID int64) []types.HistoryAction {
	t.Helper()
	histories, err := f.uc.ListHistory(context.Background(), testOrgID, riskID)
	gt.NoError(t, err).Required()
	actions := make([]types.HistoryAction, len(histories))
	for i, h := range histories {
		actions[i] = h.Action
	}
	return actions
}
