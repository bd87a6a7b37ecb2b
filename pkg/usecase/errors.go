package usecase

import (
	"errors"
	"fmt"
)

// Sentinel errors for use case layer
var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrValidation             = errors.New("validation error")
	ErrConflict               = errors.New("concurrent modification")

	// ErrIntegrityFault marks stored state that correct orchestration can never produce
	ErrIntegrityFault = errors.New("integrity fault")

	// Not found errors
	ErrRiskNotFound         = fmt.Errorf("risk %w", ErrNotFound)
	ErrOrganizationNotFound = fmt.Errorf("organization %w", ErrNotFound)
	ErrAssessmentNotFound   = fmt.Errorf("assessment %w: %w", ErrNotFound, ErrIntegrityFault)
	ErrTreatmentNotFound    = fmt.Errorf("treatment %w: %w", ErrNotFound, ErrIntegrityFault)
)

// Context keys for error values
const (
	OrganizationIDKey = "organization_id"
	RiskIDKey         = "risk_id"
	ActorIDKey        = "actor_id"
	CurrentStatusKey  = "current_status"
	RequiredStatusKey = "required_status"
	FieldKey          = "field"
)
