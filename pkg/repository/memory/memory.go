package memory

import (
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Table names passed to the write interceptor
const (
	TableRisks            = "risks"
	TableAssessments      = "risk_assessments"
	TableTreatments       = "risk_treatments"
	TableTreatmentUpdates = "risk_treatment_updates"
	TableHistories        = "risk_histories"
	TableAuditLogs        = "audit_logs"
)

// WriteInterceptor is called before each table write of a transaction.
// Returning an error aborts the whole transaction.
type WriteInterceptor func(table string) error

type Memory struct {
	risk     *riskRepository
	auditLog *auditLogRepository
}

var _ interfaces.Repository = &Memory{}

type Option func(*Memory)

// WithWriteInterceptor installs a hook for fault injection in tests
func WithWriteInterceptor(fn WriteInterceptor) Option {
	return func(m *Memory) {
		m.risk.intercept = fn
		m.auditLog.intercept = fn
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		risk:     newRiskRepository(),
		auditLog: newAuditLogRepository(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) Risk() interfaces.RiskRepository {
	return m.risk
}

func (m *Memory) AuditLog() interfaces.AuditLogRepository {
	return m.auditLog
}

func (m *Memory) Close() error {
	return nil
}
