package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/repository/firestore"
	"github.com/secmon-lab/riskflow/pkg/repository/memory"
	"github.com/secmon-lab/riskflow/pkg/repository/rdb"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository backends
const (
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend          string
	projectID        string
	databaseID       string
	collectionPrefix string
	dsn              string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (sqlite, postgres, firestore or memory)",
			Category:    "Repository",
			Value:       BackendSQLite,
			Sources:     cli.EnvVars("RISKFLOW_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKFLOW_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKFLOW_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the root Firestore collection",
			Category:    "Repository",
			Sources:     cli.EnvVars("RISKFLOW_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &r.collectionPrefix,
		},
		&cli.StringFlag{
			Name:        "sql-dsn",
			Usage:       "Data source name for the sqlite (file path) or postgres backend",
			Category:    "Repository",
			Value:       "riskflow.db",
			Sources:     cli.EnvVars("RISKFLOW_SQL_DSN"),
			Destination: &r.dsn,
		},
	}
}

func (r Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("project_id", r.projectID),
		slog.String("database_id", r.databaseID),
		slog.Int("dsn.len", len(r.dsn)),
	)
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

// ProjectID returns the Firestore project ID
func (r *Repository) ProjectID() string {
	return r.projectID
}

// DatabaseID returns the Firestore database ID
func (r *Repository) DatabaseID() string {
	return r.databaseID
}

// IsSQL reports whether the backend is a relational database
func (r *Repository) IsSQL() bool {
	return r.backend == BackendPostgres || r.backend == BackendSQLite
}

// OpenSQL connects to the relational backend without migrating it
func (r *Repository) OpenSQL(ctx context.Context) (*rdb.RDB, error) {
	if !r.IsSQL() {
		return nil, goerr.Wrap(ErrInvalidBackend, "backend is not a SQL database", goerr.V(BackendKey, r.backend))
	}
	if r.dsn == "" {
		return nil, goerr.New("sql-dsn is required when using a SQL backend", goerr.V(BackendKey, r.backend))
	}

	db, err := rdb.Open(ctx, rdb.Dialect(r.backend), r.dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open SQL repository", goerr.V(BackendKey, r.backend))
	}
	return db, nil
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case BackendFirestore:
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		var opts []firestore.Option
		if r.collectionPrefix != "" {
			opts = append(opts, firestore.WithCollectionPrefix(r.collectionPrefix))
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID, opts...)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case BackendSQLite:
		db, err := r.OpenSQL(ctx)
		if err != nil {
			return nil, err
		}
		// local database files are created on first use
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to migrate sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.dsn)
		return db, nil

	case BackendPostgres:
		db, err := r.OpenSQL(ctx)
		if err != nil {
			return nil, err
		}
		logging.Default().Info("Using PostgreSQL repository")
		return db, nil

	case BackendMemory:
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidBackend, "unknown repository backend", goerr.V(BackendKey, r.backend))
	}
}
