package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
)

// Reminder sends review reminders for one organization
type Reminder interface {
	RemindReviewsDue(ctx context.Context, orgID types.OrganizationID, asOf time.Time) (int, error)
}

// ReviewReminderWorker periodically reminds risk owners about due reviews
//
// Architecture assumptions:
// - Single instance (no distributed locking). Two instances send duplicate reminders.
type ReviewReminderWorker struct {
	reminder Reminder
	orgIDs   []types.OrganizationID
	interval time.Duration
	now      func() time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewReviewReminderWorker creates a worker that checks orgIDs every interval
func NewReviewReminderWorker(reminder Reminder, orgIDs []types.OrganizationID, interval time.Duration) *ReviewReminderWorker {
	return &ReviewReminderWorker{
		reminder: reminder,
		orgIDs:   orgIDs,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background loop. The first round runs immediately.
func (w *ReviewReminderWorker) Start(ctx context.Context) {
	logging.Default().Info("Review reminder worker starting",
		"interval", w.interval.String(),
		"organizations", len(w.orgIDs))

	go w.run(ctx)
}

// Stop signals the worker to stop and waits for completion
func (w *ReviewReminderWorker) Stop() {
	logging.Default().Info("Review reminder worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Review reminder worker stopped")
}

// Done is closed when the loop exits
func (w *ReviewReminderWorker) Done() <-chan struct{} {
	return w.doneCh
}

func (w *ReviewReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RunOnce(ctx)

		case <-w.stopCh:
			logging.Default().Info("Review reminder worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Review reminder worker context cancelled")
			return
		}
	}
}

// RunOnce performs one round over every organization and returns the number
// of reminders sent. An organization that fails is logged and skipped.
func (w *ReviewReminderWorker) RunOnce(ctx context.Context) int {
	startTime := w.now()
	total := 0
	for _, orgID := range w.orgIDs {
		sent, err := w.reminder.RemindReviewsDue(ctx, orgID, startTime)
		if err != nil {
			// Log error but continue with the next organization
			logging.Default().Error("Review reminder failed (will retry next interval)",
				"organization_id", orgID,
				"error", err.Error())
			continue
		}
		total += sent
	}

	logging.Default().Info("Review reminder round completed",
		"sent", total,
		"duration", time.Since(startTime).String())
	return total
}
