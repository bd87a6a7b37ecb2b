package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/cli"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/usecase"
)

const orgConfig = `
[[organization]]
id = "acme"
name = "ACME Corp"
review_frequency = "quarterly"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := writeFile(t, "config.toml", orgConfig)

	err := cli.Run(context.Background(), []string{"riskflow", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := writeFile(t, "config.toml", `
[[organization]]
id = "ACME_Corp"
name = "ACME"
`)

	err := cli.Run(context.Background(), []string{"riskflow", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_MissingConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nonexistent.toml")

	err := cli.Run(context.Background(), []string{"riskflow", "validate", "--config", configPath}, "test")
	gt.Value(t, err).NotNil()
}

func TestRun_ValidateCommand_DBCheckWithSQLite(t *testing.T) {
	configPath := writeFile(t, "config.toml", orgConfig)
	dsn := filepath.Join(t.TempDir(), "riskflow.db")

	err := cli.Run(context.Background(), []string{
		"riskflow", "validate", "--config", configPath, "--check-db",
		"--repository-backend", "sqlite", "--sql-dsn", dsn,
	}, "test")
	gt.NoError(t, err)
}

func TestRun_MigrateDryRunPrintsSchema(t *testing.T) {
	var out bytes.Buffer
	err := cli.RunWithIO(context.Background(), strings.NewReader(""), &out, []string{
		"riskflow", "migrate", "--dry-run", "--repository-backend", "postgres", "--sql-dsn", "postgres://unused",
	})
	gt.NoError(t, err).Required()
	gt.String(t, out.String()).Contains("CREATE TABLE IF NOT EXISTS risks")
}

func TestRun_MigrateRejectsMemory(t *testing.T) {
	err := cli.RunWithIO(context.Background(), strings.NewReader(""), &bytes.Buffer{}, []string{
		"riskflow", "migrate", "--repository-backend", "memory",
	})
	gt.Value(t, err).NotNil()
}

func TestRun_MigrateFirestoreRequiresProject(t *testing.T) {
	t.Setenv("RISKFLOW_FIRESTORE_PROJECT_ID", "")
	err := cli.RunWithIO(context.Background(), strings.NewReader(""), &bytes.Buffer{}, []string{
		"riskflow", "migrate", "--dry-run", "--repository-backend", "firestore",
	})
	gt.Value(t, err).NotNil()
	gt.String(t, err.Error()).Contains("firestore-project-id is required")
}

func TestIndexConfig(t *testing.T) {
	cfg := cli.IndexConfig()
	gt.NoError(t, cfg.Validate())
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("audit_logs")
	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()
	gt.Array(t, cfg.Collections[0].Indexes[0].Fields).Length(3)
}

// workflow runs risk subcommands against one SQLite file
type workflow struct {
	t      *testing.T
	config string
	dsn    string
}

func newWorkflow(t *testing.T) *workflow {
	return &workflow{
		t:      t,
		config: writeFile(t, "config.toml", orgConfig),
		dsn:    filepath.Join(t.TempDir(), "riskflow.db"),
	}
}

func (w *workflow) run(input string, args ...string) (string, error) {
	w.t.Helper()
	var out bytes.Buffer
	full := append([]string{"riskflow", "risk"}, args...)
	full = append(full,
		"--org", "acme",
		"--config", w.config,
		"--repository-backend", "sqlite",
		"--sql-dsn", w.dsn,
	)
	err := cli.RunWithIO(context.Background(), strings.NewReader(input), &out, full)
	return out.String(), err
}

func (w *workflow) must(input string, args ...string) string {
	w.t.Helper()
	out, err := w.run(input, args...)
	gt.NoError(w.t, err).Required()
	return out
}

func TestRun_RiskWorkflow(t *testing.T) {
	w := newWorkflow(t)

	out := w.must(`{"title":"Unencrypted backups","source":"internal_review","category":"data-protection","tags":["backup"]}`,
		"submit", "--actor", "U-reporter", "--input", "-")
	gt.String(t, out).Contains("RISK-0001")

	w.must(`{"approved":true,"assessor_id":"U-assessor"}`,
		"validate", "--actor", "U-grc", "--risk", "1", "--input", "-")
	w.must("", "start-assessment", "--actor", "U-grc", "--risk", "1")
	w.must(`{"threat_description":"Readable backups","likelihood":"possible","impact":"moderate","recommended_owner_id":"U-owner"}`,
		"submit-assessment", "--actor", "U-assessor", "--risk", "1", "--input", "-")
	w.must(`{"approved":true,"notes":"ok"}`,
		"review-assessment", "--actor", "U-grc", "--risk", "1", "--input", "-")
	w.must(`{"decision":"accept","justification":"Compensating controls exist"}`,
		"decide", "--actor", "U-owner", "--risk", "1", "--input", "-")

	out = w.must("", "show", "--risk", "1", "--json")
	var agg model.RiskAggregate
	gt.NoError(t, json.Unmarshal([]byte(out), &agg)).Required()
	gt.Value(t, agg.Risk.Status).Equal(types.RiskStatusAnalyzed)
	gt.Value(t, agg.Risk.InherentRisk).Equal(types.RiskLevelMedium)
	gt.Value(t, agg.Risk.RiskOwnerID).Equal("U-owner")
	gt.Value(t, agg.Treatment).NotNil()
	gt.Value(t, agg.Treatment.Status).Equal(types.TreatmentStatusAccept)

	out = w.must("", "history", "--risk", "1", "--json")
	var histories []*model.RiskHistory
	gt.NoError(t, json.Unmarshal([]byte(out), &histories)).Required()
	gt.Array(t, histories).Length(6)

	out = w.must("", "list", "--status", "risk_analyzed")
	gt.String(t, out).Contains("Unencrypted backups")

	out = w.must("", "due", "--as-of", "2100-01-01", "--json")
	var due []*model.Risk
	gt.NoError(t, json.Unmarshal([]byte(out), &due)).Required()
	gt.Array(t, due).Length(1)

	out = w.must("", "audit", "--risk", "1", "--json")
	var logs []*model.AuditLog
	gt.NoError(t, json.Unmarshal([]byte(out), &logs)).Required()
	gt.Array(t, logs).Length(6)

	w.must("", "delete", "--actor", "U-grc", "--risk", "1")
	_, err := w.run("", "show", "--risk", "1")
	gt.Error(t, err).Is(usecase.ErrRiskNotFound)
}

func TestRun_RiskErrors(t *testing.T) {
	w := newWorkflow(t)

	t.Run("unknown organization", func(t *testing.T) {
		var out bytes.Buffer
		err := cli.RunWithIO(context.Background(), strings.NewReader(""), &out, []string{
			"riskflow", "risk", "list",
			"--org", "globex",
			"--config", w.config,
			"--repository-backend", "sqlite",
			"--sql-dsn", w.dsn,
		})
		gt.Error(t, err).Is(usecase.ErrOrganizationNotFound)
	})

	t.Run("unknown input field", func(t *testing.T) {
		_, err := w.run(`{"title":"x","source":"internal_review","bogus":1}`,
			"submit", "--actor", "U-reporter", "--input", "-")
		gt.Error(t, err).Is(usecase.ErrValidation)
	})

	t.Run("illegal transition", func(t *testing.T) {
		w.must(`{"title":"Shared admin account","source":"ad_hoc_discovery"}`,
			"submit", "--actor", "U-reporter", "--input", "-")
		_, err := w.run("", "start-assessment", "--actor", "U-grc", "--risk", "1", "--assessor", "U-assessor")
		gt.Error(t, err).Is(usecase.ErrInvalidStateTransition)
	})

	t.Run("input from file", func(t *testing.T) {
		path := writeFile(t, "reject.json", `{"approved":false,"reason":"Duplicate of an existing risk"}`)
		out := w.must("", "validate", "--actor", "U-grc", "--risk", "1", "--input", path)
		gt.String(t, out).Contains("not_a_risk")
	})
}

func TestRun_RiskRemindOnce(t *testing.T) {
	w := newWorkflow(t)
	w.must(`{"title":"Stale firewall rules","source":"external_review"}`,
		"submit", "--actor", "U-reporter", "--input", "-")

	_, err := w.run("", "remind")
	gt.NoError(t, err)
}
