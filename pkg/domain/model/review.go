package model

import (
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// ScheduleReview records a review at the given time and computes the next due
// date from freq. An empty freq keeps the risk's current frequency.
func (r *Risk) ScheduleReview(at time.Time, freq types.ReviewFrequency) {
	if freq != "" {
		r.ReviewFrequency = freq
	}
	reviewed := at
	r.LastReviewedAt = &reviewed
	if !r.ReviewFrequency.IsValid() {
		r.NextReviewDue = nil
		return
	}
	next := r.ReviewFrequency.Next(at)
	r.NextReviewDue = &next
}

// IsReviewDue reports whether an analyzed, live risk is due for periodic review at asOf
func (r *Risk) IsReviewDue(asOf time.Time) bool {
	if r.IsDeleted() || r.Status != types.RiskStatusAnalyzed || r.NextReviewDue == nil {
		return false
	}
	return !r.NextReviewDue.After(asOf)
}
