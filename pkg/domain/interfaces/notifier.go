package interfaces

import (
	"context"

	"github.com/secmon-lab/riskflow/pkg/domain/model"
)

// Notifier delivers workflow notifications to actors
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification) error
}

// CacheInvalidator drops derived views (dashboards, heatmaps) after a risk changes
type CacheInvalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}
