package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/cli/config"
	"github.com/secmon-lab/riskflow/pkg/usecase"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"github.com/secmon-lab/riskflow/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var orgCfg config.Organizations
	var repoCfg config.Repository
	var checkDB bool

	var flags []cli.Flag
	flags = append(flags, orgCfg.Flags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:        "check-db",
		Usage:       "Also check stored risks of every configured organization for consistency",
		Destination: &checkDB,
	})
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the organization file and optionally check DB consistency",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			// Step 1: Load and validate the organization file
			appCfg, registry, err := orgCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logger.Info("Configuration validation passed",
				"organization_count", len(appCfg.Organizations),
			)
			for _, org := range appCfg.Organizations {
				logger.Info("Organization validated",
					"id", org.ID,
					"name", org.Name,
					"review_frequency", org.ReviewFrequency,
				)
			}

			// Step 2: Check stored data when asked to
			if !checkDB {
				logger.Info("DB consistency check skipped")
				return nil
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			uc := usecase.New(repo, usecase.WithOrganizationRegistry(registry))
			result, err := uc.Risk.ValidateDB(ctx)
			if err != nil {
				return goerr.Wrap(err, "DB consistency check failed")
			}

			if result.HasIssues() {
				for _, issue := range result.Issues {
					logger.Warn("DB consistency issue found",
						"organization_id", issue.OrganizationID,
						"risk_id", issue.RiskID,
						"message", issue.Message,
						"expected", issue.Expected,
						"actual", issue.Actual,
					)
				}

				return fmt.Errorf("DB consistency check found %d issue(s)", len(result.Issues))
			}

			logger.Info("DB consistency check passed", "risk_count", result.Checked)
			return nil
		},
	}
}
