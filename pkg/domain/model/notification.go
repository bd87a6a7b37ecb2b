package model

import "github.com/secmon-lab/riskflow/pkg/domain/types"

// Notification tells an actor that a risk now needs their attention
type Notification struct {
	OrganizationID types.OrganizationID
	RiskID         int64
	RiskCode       string
	RiskTitle      string
	RecipientID    string // Slack user ID, empty when nobody new is responsible
	Channel        string // organization channel copy, optional
	Action         types.HistoryAction
	Message        string
}
