package model

import (
	"cmp"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// Snapshot is a fragment of entity state recorded in a history row
type Snapshot map[string]any

// RiskHistory is an append-only record of one workflow transition
type RiskHistory struct {
	ID             string
	OrganizationID types.OrganizationID
	RiskID         int64
	Action         types.HistoryAction
	Before         Snapshot
	After          Snapshot
	Note           string
	ActorID        string
	CreatedAt      time.Time
}

// NewID returns a time-ordered unique identifier for history, update and audit rows
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Clone returns a copy of the history row
func (h *RiskHistory) Clone() *RiskHistory {
	if h == nil {
		return nil
	}
	c := *h
	c.Before = maps.Clone(h.Before)
	c.After = maps.Clone(h.After)
	return &c
}

// SortHistories orders history rows by creation time, then ID
func SortHistories(histories []*RiskHistory) {
	slices.SortStableFunc(histories, func(a, b *RiskHistory) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
