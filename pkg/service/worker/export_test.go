package worker

import "time"

// SetClock replaces the worker's time source for testing
func (w *ReviewReminderWorker) SetClock(now func() time.Time) {
	w.now = now
}
