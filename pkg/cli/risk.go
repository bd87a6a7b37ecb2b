package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/cli/config"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/service/worker"
	"github.com/secmon-lab/riskflow/pkg/usecase"
	"github.com/secmon-lab/riskflow/pkg/utils/logging"
	"github.com/secmon-lab/riskflow/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// riskEnv holds the flags every risk subcommand shares
type riskEnv struct {
	orgCfg   config.Organizations
	repoCfg  config.Repository
	slackCfg config.Slack
	cacheCfg config.Cache

	orgID   string
	actorID string
	riskID  int64
	input   string
	asJSON  bool
}

func (x *riskEnv) Flags(withRisk bool) []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "org",
			Aliases:     []string{"o"},
			Usage:       "Organization ID",
			Required:    true,
			Sources:     cli.EnvVars("RISKFLOW_ORG"),
			Destination: &x.orgID,
		},
		&cli.StringFlag{
			Name:        "actor",
			Aliases:     []string{"a"},
			Usage:       "User ID performing the operation",
			Sources:     cli.EnvVars("RISKFLOW_ACTOR"),
			Destination: &x.actorID,
		},
	}
	if withRisk {
		flags = append(flags, &cli.Int64Flag{
			Name:        "risk",
			Aliases:     []string{"r"},
			Usage:       "Risk ID",
			Required:    true,
			Destination: &x.riskID,
		})
	}
	flags = append(flags, x.orgCfg.Flags()...)
	flags = append(flags, x.repoCfg.Flags()...)
	flags = append(flags, x.slackCfg.Flags()...)
	flags = append(flags, x.cacheCfg.Flags()...)
	return flags
}

func (x *riskEnv) inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "input",
		Aliases:     []string{"i"},
		Usage:       "JSON input file, or - for stdin",
		Required:    true,
		Destination: &x.input,
	}
}

func (x *riskEnv) jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "Print JSON instead of text",
		Destination: &x.asJSON,
	}
}

func (x *riskEnv) org() types.OrganizationID {
	return types.OrganizationID(x.orgID)
}

// decode reads the --input document into v
func (x *riskEnv) decode(ctx context.Context, c *cli.Command, v any) error {
	var r io.Reader
	if x.input == "-" {
		r = c.Root().Reader
	} else {
		// #nosec G304 - path is provided by the operator
		f, err := os.Open(x.input)
		if err != nil {
			return goerr.Wrap(err, "failed to open input", goerr.V("path", x.input))
		}
		defer safe.Close(ctx, f)
		r = f
	}

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(usecase.ErrValidation, "failed to decode input", goerr.V("path", x.input), goerr.V("reason", err.Error()))
	}
	return nil
}

// open wires the use case. The returned function releases every connection.
func (x *riskEnv) open(ctx context.Context) (*usecase.RiskUseCase, func(), error) {
	_, registry, err := x.orgCfg.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load organization configuration")
	}

	repo, err := x.repoCfg.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	closers := []io.Closer{repo}
	cleanup := func() {
		safe.CloseAll(ctx, closers...)
	}

	opts := []usecase.Option{
		usecase.WithOrganizationRegistry(registry),
		usecase.WithSyncSideEffects(),
	}

	notifier, err := x.slackCfg.Configure()
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
	}

	cache, err := x.cacheCfg.Configure(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if cache != nil {
		closers = append(closers, cache)
		opts = append(opts, usecase.WithCacheInvalidator(cache))
	}

	return usecase.New(repo, opts...).Risk, cleanup, nil
}

type riskCommand struct {
	name     string
	usage    string
	withRisk bool
	input    bool
	json     bool
	flags    func(env *riskEnv) []cli.Flag
	action   func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error
}

func (rc riskCommand) build() *cli.Command {
	env := &riskEnv{}

	var flags []cli.Flag
	if rc.input {
		flags = append(flags, env.inputFlag())
	}
	if rc.json {
		flags = append(flags, env.jsonFlag())
	}
	if rc.flags != nil {
		flags = append(flags, rc.flags(env)...)
	}
	flags = append(flags, env.Flags(rc.withRisk)...)

	return &cli.Command{
		Name:  rc.name,
		Usage: rc.usage,
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx = logging.With(ctx, logging.From(ctx).With("command", rc.name, "org", env.orgID))
			return rc.action(ctx, c, env, uc)
		},
	}
}

func cmdRisk() *cli.Command {
	return &cli.Command{
		Name:  "risk",
		Usage: "Operate the risk workflow",
		Commands: []*cli.Command{
			cmdRiskSubmit(),
			cmdRiskValidate(),
			cmdRiskStartAssessment(),
			cmdRiskSubmitAssessment(),
			cmdRiskReviewAssessment(),
			cmdRiskCompleteRevision(),
			cmdRiskDecide(),
			cmdRiskAssignApprover(),
			cmdRiskExecutiveDecision(),
			cmdRiskUpdateMitigation(),
			cmdRiskReviewed(),
			cmdRiskDelete(),
			cmdRiskShow(),
			cmdRiskList(),
			cmdRiskHistory(),
			cmdRiskAudit(),
			cmdRiskDue(),
			cmdRiskRemind(),
		},
	}
}

func cmdRiskSubmit() *cli.Command {
	return riskCommand{
		name:  "submit",
		usage: "Submit a new risk",
		input: true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			var input usecase.SubmitRiskInput
			if err := env.decode(ctx, c, &input); err != nil {
				return err
			}
			risk, err := uc.Submit(ctx, env.org(), env.actorID, input)
			if err != nil {
				return err
			}
			printRisk(ctx, c.Root().Writer, risk)
			return nil
		},
	}.build()
}

// jsonTransition builds a subcommand that decodes T from --input and runs one transition
func jsonTransition[T any](name, usage string, fn func(uc *usecase.RiskUseCase) func(ctx context.Context, orgID types.OrganizationID, riskID int64, actorID string, input T) (*model.RiskAggregate, error)) *cli.Command {
	return riskCommand{
		name:     name,
		usage:    usage,
		withRisk: true,
		input:    true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			var input T
			if err := env.decode(ctx, c, &input); err != nil {
				return err
			}
			agg, err := fn(uc)(ctx, env.org(), env.riskID, env.actorID, input)
			if err != nil {
				return err
			}
			printAggregate(ctx, c.Root().Writer, agg)
			return nil
		},
	}.build()
}

func cmdRiskValidate() *cli.Command {
	return jsonTransition("validate", "Accept or reject a submitted risk",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.ValidateRiskInput) (*model.RiskAggregate, error) {
			return uc.Validate
		})
}

func cmdRiskSubmitAssessment() *cli.Command {
	return jsonTransition("submit-assessment", "Submit the assessor analysis for GRC approval",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.AssessmentInput) (*model.RiskAggregate, error) {
			return uc.SubmitAssessment
		})
}

func cmdRiskReviewAssessment() *cli.Command {
	return jsonTransition("review-assessment", "Approve or decline a submitted assessment",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.ReviewAssessmentInput) (*model.RiskAggregate, error) {
			return uc.ReviewAssessment
		})
}

func cmdRiskCompleteRevision() *cli.Command {
	return jsonTransition("complete-revision", "Revise a declined assessment and approve it",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.AssessmentPatch) (*model.RiskAggregate, error) {
			return uc.CompleteRevision
		})
}

func cmdRiskDecide() *cli.Command {
	return jsonTransition("decide", "Record the treatment decision",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.DecisionInput) (*model.RiskAggregate, error) {
			return uc.SubmitDecision
		})
}

func cmdRiskExecutiveDecision() *cli.Command {
	return jsonTransition("executive-decision", "Approve or deny the treatment as executive",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.ExecutiveDecisionInput) (*model.RiskAggregate, error) {
			return uc.SubmitExecutiveDecision
		})
}

func cmdRiskUpdateMitigation() *cli.Command {
	return jsonTransition("update-mitigation", "Report mitigation progress",
		func(uc *usecase.RiskUseCase) func(context.Context, types.OrganizationID, int64, string, usecase.MitigationUpdateInput) (*model.RiskAggregate, error) {
			return uc.UpdateMitigationProgress
		})
}

func cmdRiskStartAssessment() *cli.Command {
	var assessorID string
	return riskCommand{
		name:     "start-assessment",
		usage:    "Open the assessment of an actual risk",
		withRisk: true,
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.StringFlag{
					Name:        "assessor",
					Usage:       "Risk assessor user ID. Defaults to the one assigned at validation",
					Destination: &assessorID,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			agg, err := uc.StartAssessment(ctx, env.org(), env.riskID, env.actorID, assessorID)
			if err != nil {
				return err
			}
			printAggregate(ctx, c.Root().Writer, agg)
			return nil
		},
	}.build()
}

func cmdRiskAssignApprover() *cli.Command {
	var approverID string
	return riskCommand{
		name:     "assign-approver",
		usage:    "Assign the executive approver of a treatment",
		withRisk: true,
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.StringFlag{
					Name:        "approver",
					Usage:       "Executive user ID",
					Required:    true,
					Destination: &approverID,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			agg, err := uc.AssignExecutiveApprover(ctx, env.org(), env.riskID, env.actorID, approverID)
			if err != nil {
				return err
			}
			printAggregate(ctx, c.Root().Writer, agg)
			return nil
		},
	}.build()
}

func cmdRiskReviewed() *cli.Command {
	var frequency string
	return riskCommand{
		name:     "reviewed",
		usage:    "Record a periodic review of an analyzed risk",
		withRisk: true,
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.StringFlag{
					Name:        "frequency",
					Usage:       "New review frequency [monthly|quarterly|semi_annually|annually]. Keeps the current one when omitted",
					Destination: &frequency,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			agg, err := uc.MarkReviewed(ctx, env.org(), env.riskID, env.actorID, types.ReviewFrequency(frequency))
			if err != nil {
				return err
			}
			printAggregate(ctx, c.Root().Writer, agg)
			return nil
		},
	}.build()
}

func cmdRiskDelete() *cli.Command {
	return riskCommand{
		name:     "delete",
		usage:    "Soft-delete a risk",
		withRisk: true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			agg, err := uc.DeleteRisk(ctx, env.org(), env.riskID, env.actorID)
			if err != nil {
				return err
			}
			logging.From(ctx).Info("Risk deleted", "code", agg.Risk.Code)
			return nil
		},
	}.build()
}

func cmdRiskShow() *cli.Command {
	return riskCommand{
		name:     "show",
		usage:    "Show a risk with its assessment and treatment",
		withRisk: true,
		json:     true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			agg, err := uc.GetRisk(ctx, env.org(), env.riskID)
			if err != nil {
				return err
			}
			if env.asJSON {
				return writeJSON(ctx, c.Root().Writer, agg)
			}
			printAggregate(ctx, c.Root().Writer, agg)
			return nil
		},
	}.build()
}

func cmdRiskList() *cli.Command {
	var status string
	return riskCommand{
		name:  "list",
		usage: "List live risks of the organization",
		json:  true,
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.StringFlag{
					Name:        "status",
					Usage:       "Only risks in this status",
					Destination: &status,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			risks, err := uc.ListRisks(ctx, env.org())
			if err != nil {
				return err
			}
			if status != "" {
				want, err := types.ParseRiskStatus(status)
				if err != nil {
					return goerr.Wrap(usecase.ErrValidation, err.Error())
				}
				risks = slices.DeleteFunc(risks, func(r *model.Risk) bool { return r.Status != want })
			}
			if env.asJSON {
				return writeJSON(ctx, c.Root().Writer, risks)
			}
			printRiskList(ctx, c.Root().Writer, risks)
			return nil
		},
	}.build()
}

func cmdRiskHistory() *cli.Command {
	return riskCommand{
		name:     "history",
		usage:    "Show the transition history of a risk",
		withRisk: true,
		json:     true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			histories, err := uc.ListHistory(ctx, env.org(), env.riskID)
			if err != nil {
				return err
			}
			if env.asJSON {
				return writeJSON(ctx, c.Root().Writer, histories)
			}
			printHistory(ctx, c.Root().Writer, histories)
			return nil
		},
	}.build()
}

func cmdRiskAudit() *cli.Command {
	return riskCommand{
		name:     "audit",
		usage:    "Show audit log entries of a risk",
		withRisk: true,
		json:     true,
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			logs, err := uc.ListAuditLogs(ctx, env.org(), env.riskID)
			if err != nil {
				return err
			}
			if env.asJSON {
				return writeJSON(ctx, c.Root().Writer, logs)
			}
			printAuditLogs(ctx, c.Root().Writer, logs)
			return nil
		},
	}.build()
}

func cmdRiskDue() *cli.Command {
	var asOf time.Time
	return riskCommand{
		name:  "due",
		usage: "List analyzed risks whose periodic review is due",
		json:  true,
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.TimestampFlag{
					Name:        "as-of",
					Usage:       "Reference date (YYYY-MM-DD). Defaults to now",
					Config:      cli.TimestampConfig{Layouts: []string{time.DateOnly, time.RFC3339}, Timezone: time.UTC},
					Destination: &asOf,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			ref := asOf
			if ref.IsZero() {
				ref = time.Now().UTC()
			}
			risks, err := uc.ListReviewsDue(ctx, env.org(), ref)
			if err != nil {
				return err
			}
			if env.asJSON {
				return writeJSON(ctx, c.Root().Writer, risks)
			}
			printRiskList(ctx, c.Root().Writer, risks)
			return nil
		},
	}.build()
}

func cmdRiskRemind() *cli.Command {
	var interval time.Duration
	return riskCommand{
		name:  "remind",
		usage: "Notify owners of risks whose periodic review is due",
		flags: func(env *riskEnv) []cli.Flag {
			return []cli.Flag{
				&cli.DurationFlag{
					Name:        "interval",
					Usage:       "Keep running and check again at this interval. Runs once when zero",
					Sources:     cli.EnvVars("RISKFLOW_REMIND_INTERVAL"),
					Destination: &interval,
				},
			}
		},
		action: func(ctx context.Context, c *cli.Command, env *riskEnv, uc *usecase.RiskUseCase) error {
			if interval <= 0 {
				sent, err := uc.RemindReviewsDue(ctx, env.org(), time.Now().UTC())
				if err != nil {
					return err
				}
				logging.From(ctx).Info("Review reminders sent", "count", sent)
				return nil
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := worker.NewReviewReminderWorker(uc, []types.OrganizationID{env.org()}, interval)
			w.Start(ctx)
			<-ctx.Done()
			w.Stop()
			return nil
		},
	}.build()
}
