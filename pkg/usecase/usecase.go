package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/utils/async"
)

// dispatchFunc runs post-commit side effects
type dispatchFunc func(ctx context.Context, handler func(ctx context.Context) error)

type UseCases struct {
	repo     interfaces.Repository
	registry *model.OrganizationRegistry
	notifier interfaces.Notifier
	cache    interfaces.CacheInvalidator
	now      func() time.Time
	dispatch dispatchFunc

	Risk *RiskUseCase
}

type Option func(*UseCases)

// WithOrganizationRegistry restricts operations to the registered organizations
// and supplies their defaults. Without a registry any valid organization ID is accepted.
func WithOrganizationRegistry(registry *model.OrganizationRegistry) Option {
	return func(uc *UseCases) {
		uc.registry = registry
	}
}

func WithNotifier(notifier interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = notifier
	}
}

func WithCacheInvalidator(cache interfaces.CacheInvalidator) Option {
	return func(uc *UseCases) {
		uc.cache = cache
	}
}

// WithClock replaces the time source used for workflow timestamps
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithSyncSideEffects runs audit, notification and cache invalidation before
// the operation returns instead of in a background goroutine. Short-lived
// processes such as the CLI need this so the work is not lost on exit.
func WithSyncSideEffects() Option {
	return func(uc *UseCases) {
		uc.dispatch = func(ctx context.Context, handler func(ctx context.Context) error) {
			_ = handler(ctx)
		}
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:     repo,
		now:      func() time.Time { return time.Now().UTC() },
		dispatch: async.Dispatch,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Risk = &RiskUseCase{
		repo:     repo,
		registry: uc.registry,
		notifier: uc.notifier,
		cache:    uc.cache,
		now:      uc.now,
		dispatch: uc.dispatch,
	}

	return uc
}
