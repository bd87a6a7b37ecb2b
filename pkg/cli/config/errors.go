package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound          = goerr.New("configuration file not found")
	ErrInvalidConfig           = goerr.New("invalid configuration")
	ErrInvalidOrganizationID   = goerr.New("invalid organization ID format")
	ErrDuplicateOrganizationID = goerr.New("duplicate organization ID")
	ErrInvalidReviewFrequency  = goerr.New("invalid review frequency")
	ErrMissingName             = goerr.New("name is required")
	ErrInvalidBackend          = goerr.New("invalid repository backend")
)

// Context keys for error values
const (
	ConfigPathKey      = "config_path"
	OrganizationIDKey  = "organization_id"
	OrganizationIdxKey = "organization_index"
	ReviewFrequencyKey = "review_frequency"
	BackendKey         = "backend"
)
