package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// AppConfig represents the organization configuration file
type AppConfig struct {
	Organizations []OrganizationConfig `toml:"organization"`
}

// OrganizationConfig is one [[organization]] table
type OrganizationConfig struct {
	ID                  string `toml:"id"`
	Name                string `toml:"name"`
	ReviewFrequency     string `toml:"review_frequency"`
	NotificationChannel string `toml:"notification_channel"`
}

// Validate checks if the OrganizationConfig is valid
func (o *OrganizationConfig) Validate() error {
	if err := types.OrganizationID(o.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidOrganizationID, err.Error(), goerr.V(OrganizationIDKey, o.ID))
	}
	if o.Name == "" {
		return goerr.Wrap(ErrMissingName, "organization name is required", goerr.V(OrganizationIDKey, o.ID))
	}
	if o.ReviewFrequency != "" && !types.ReviewFrequency(o.ReviewFrequency).IsValid() {
		return goerr.Wrap(ErrInvalidReviewFrequency, "unknown review frequency",
			goerr.V(OrganizationIDKey, o.ID),
			goerr.V(ReviewFrequencyKey, o.ReviewFrequency))
	}
	return nil
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	seen := make(map[string]bool)
	for i, org := range a.Organizations {
		if err := org.Validate(); err != nil {
			return goerr.Wrap(err, "invalid organization", goerr.V(OrganizationIdxKey, i))
		}
		if seen[org.ID] {
			return goerr.Wrap(ErrDuplicateOrganizationID, "organization ID is defined twice",
				goerr.V(OrganizationIDKey, org.ID))
		}
		seen[org.ID] = true
	}
	return nil
}

// LoadAppConfiguration loads the organization configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("reason", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// ToRegistry converts the configuration to the domain organization registry
func (a *AppConfig) ToRegistry() *model.OrganizationRegistry {
	registry := model.NewOrganizationRegistry()
	for _, org := range a.Organizations {
		registry.Register(&model.Organization{
			ID:                  types.OrganizationID(org.ID),
			Name:                org.Name,
			ReviewFrequency:     types.ReviewFrequency(org.ReviewFrequency),
			NotificationChannel: org.NotificationChannel,
		})
	}
	return registry
}

// Organizations holds the CLI flag pointing at the organization file
type Organizations struct {
	path string
}

func (x *Organizations) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Organization configuration file (TOML). Any organization ID is accepted when omitted",
			Sources:     cli.EnvVars("RISKFLOW_CONFIG"),
			Destination: &x.path,
		},
	}
}

// Path returns the configured file path
func (x *Organizations) Path() string {
	return x.path
}

// Configure loads the organization registry. Without a file the registry is empty.
func (x *Organizations) Configure() (*AppConfig, *model.OrganizationRegistry, error) {
	if x.path == "" {
		return &AppConfig{}, model.NewOrganizationRegistry(), nil
	}

	cfg, err := LoadAppConfiguration(x.path)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cfg.ToRegistry(), nil
}
