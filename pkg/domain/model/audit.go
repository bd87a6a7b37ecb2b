package model

import (
	"maps"
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// AuditLog is a record for the generic audit sink
type AuditLog struct {
	ID             string
	OrganizationID types.OrganizationID
	UserID         string
	Action         string
	EntityType     string
	EntityID       string
	Description    string
	Changes        map[string]any
	CreatedAt      time.Time
}

// Clone returns a copy of the audit log
func (l *AuditLog) Clone() *AuditLog {
	if l == nil {
		return nil
	}
	c := *l
	c.Changes = maps.Clone(l.Changes)
	return &c
}
