package cli

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/cli/config"
	"github.com/secmon-lab/riskflow/pkg/repository/rdb"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"github.com/secmon-lab/riskflow/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var repoCfg config.Repository
	var dryRun bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Preview changes without applying",
			Destination: &dryRun,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Create SQL tables or Firestore indexes",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Migrate configuration",
				"repository", repoCfg,
				"dryRun", dryRun)

			switch {
			case repoCfg.IsSQL():
				return migrateSQL(ctx, c, &repoCfg, dryRun)
			case repoCfg.Backend() == config.BackendFirestore:
				return migrateFirestore(ctx, &repoCfg, dryRun)
			default:
				return goerr.Wrap(config.ErrInvalidBackend, "backend has nothing to migrate",
					goerr.V(config.BackendKey, repoCfg.Backend()))
			}
		},
	}
}

func migrateSQL(ctx context.Context, c *cli.Command, repoCfg *config.Repository, dryRun bool) error {
	if dryRun {
		for _, stmt := range rdb.Schema() {
			safe.Write(ctx, c.Root().Writer, []byte(stmt+";\n"))
		}
		return nil
	}

	db, err := repoCfg.OpenSQL(ctx)
	if err != nil {
		return err
	}
	defer safe.Close(ctx, db)

	if err := db.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logging.Default().Info("Migrations applied successfully", "backend", repoCfg.Backend())
	return nil
}

func migrateFirestore(ctx context.Context, repoCfg *config.Repository, dryRun bool) error {
	logger := logging.Default()
	if repoCfg.ProjectID() == "" {
		return goerr.New("firestore-project-id is required when using firestore backend")
	}
	databaseID := repoCfg.DatabaseID()
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := fireconf.New(ctx, repoCfg.ProjectID(), databaseID, getIndexConfig(),
		fireconf.WithDryRun(dryRun),
		fireconf.WithLogger(logger),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create fireconf client",
			goerr.V("project_id", repoCfg.ProjectID()),
			goerr.V("database_id", databaseID))
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("failed to close fireconf client", "error", err.Error())
		}
	}()

	if dryRun {
		logger.Info("Dry run mode - previewing changes")
	} else {
		logger.Info("Applying migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		return goerr.Wrap(err, "failed to apply migrations")
	}
	logger.Info("Migrations applied successfully", "dryRun", dryRun)
	return nil
}

// getIndexConfig returns the Firestore index configuration
func getIndexConfig() *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: "audit_logs",
				Indexes: []fireconf.Index{
					// List: entity_type ==, entity_id ==, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "entity_type", Order: fireconf.OrderAscending},
							{Path: "entity_id", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}
