// Package rdb stores the risk register in a relational database. PostgreSQL
// is the production dialect; SQLite serves local runs and tests.
package rdb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL driver and placeholder style
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// IsValid checks if the dialect is supported
func (d Dialect) IsValid() bool {
	return d == DialectPostgres || d == DialectSQLite
}

func (d Dialect) driverName() string {
	return string(d)
}

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type RDB struct {
	db       *sql.DB
	dialect  Dialect
	risk     *riskRepository
	auditLog *auditLogRepository
}

var _ interfaces.Repository = &RDB{}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, dialect Dialect, dsn string) (*RDB, error) {
	if !dialect.IsValid() {
		return nil, goerr.New("unsupported SQL dialect", goerr.V("dialect", dialect))
	}

	db, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("dialect", dialect))
	}
	if dialect == DialectSQLite {
		// SQLite allows a single writer; serialize access through one connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect database", goerr.V("dialect", dialect))
	}

	return New(db, dialect), nil
}

// New wraps an existing database handle
func New(db *sql.DB, dialect Dialect) *RDB {
	r := &RDB{
		db:      db,
		dialect: dialect,
	}
	r.risk = &riskRepository{db: db, bind: r.bind}
	r.auditLog = &auditLogRepository{db: db, bind: r.bind}
	return r
}

func (r *RDB) Risk() interfaces.RiskRepository {
	return r.risk
}

func (r *RDB) AuditLog() interfaces.AuditLogRepository {
	return r.auditLog
}

func (r *RDB) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// bind rewrites '?' placeholders to the dialect's style
func (r *RDB) bind(query string) string {
	return rebind(r.dialect, query)
}

func rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
