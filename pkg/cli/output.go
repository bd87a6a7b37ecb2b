package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"github.com/secmon-lab/riskflow/pkg/utils/safe"
)

var (
	headerColor = color.New(color.FgCyan, color.Bold)
	labelColor  = color.New(color.Faint)
)

var levelColors = map[types.RiskLevel]*color.Color{
	types.RiskLevelVeryHigh: color.New(color.FgRed, color.Bold),
	types.RiskLevelHigh:     color.New(color.FgRed),
	types.RiskLevelMedium:   color.New(color.FgYellow),
	types.RiskLevelLow:      color.New(color.FgGreen),
	types.RiskLevelVeryLow:  color.New(color.FgGreen),
}

func level(l types.RiskLevel) string {
	if l == "" {
		return "-"
	}
	if c, ok := levelColors[l]; ok {
		return c.Sprint(l)
	}
	return l.String()
}

func date(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeJSON(ctx context.Context, w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal output")
	}
	safe.Write(ctx, w, append(data, '\n'))
	return nil
}

type section struct {
	b  strings.Builder
	tw *tabwriter.Writer
}

func newSection(title string) *section {
	s := &section{}
	s.b.WriteString(headerColor.Sprint(title) + "\n")
	s.tw = tabwriter.NewWriter(&s.b, 0, 4, 2, ' ', 0)
	return s
}

func (s *section) field(label string, value any) {
	_, _ = fmt.Fprintf(s.tw, "  %s\t%v\n", labelColor.Sprint(label), value)
}

func (s *section) String() string {
	_ = s.tw.Flush()
	return s.b.String()
}

func printRisk(ctx context.Context, w io.Writer, risk *model.Risk) {
	s := newSection(fmt.Sprintf("%s  %s", risk.Code, risk.Title))
	s.field("Status", risk.Status)
	s.field("Category", orDash(risk.Category.String()))
	s.field("Source", risk.Source)
	if len(risk.Tags) > 0 {
		s.field("Tags", strings.Join(risk.Tags, ", "))
	}
	if risk.InitialSeverity != "" {
		s.field("Initial severity", level(risk.InitialSeverity))
	}
	if risk.RejectionReason != "" {
		s.field("Rejection reason", risk.RejectionReason)
	}
	if risk.InherentRisk != "" {
		s.field("Inherent risk", fmt.Sprintf("%d %s", risk.InherentRiskScore, level(risk.InherentRisk)))
	}
	if risk.ResidualRisk != "" {
		s.field("Residual risk", fmt.Sprintf("%d %s", risk.ResidualRiskScore, level(risk.ResidualRisk)))
	}
	s.field("Reporter", orDash(risk.ReporterID))
	s.field("GRC SME", orDash(risk.GRCSMEID))
	s.field("Assessor", orDash(risk.RiskAssessorID))
	s.field("Owner", orDash(risk.RiskOwnerID))
	if risk.NextReviewDue != nil {
		s.field("Next review", fmt.Sprintf("%s (%s)", date(risk.NextReviewDue), risk.ReviewFrequency))
	}
	s.field("Version", risk.Version)
	safe.Write(ctx, w, []byte(s.String()))
}

func printAggregate(ctx context.Context, w io.Writer, agg *model.RiskAggregate) {
	printRisk(ctx, w, agg.Risk)

	if a := agg.Assessment; a != nil {
		s := newSection("Assessment")
		s.field("Status", a.Status)
		s.field("Assessor", orDash(a.AssessorID))
		if a.Likelihood != "" || a.Impact != "" {
			s.field("Rating", fmt.Sprintf("%s x %s = %d %s", orDash(a.Likelihood.String()), orDash(a.Impact.String()), a.RiskScore, level(a.CalculatedRiskLevel)))
		}
		if a.ThreatDescription != "" {
			s.field("Threat", a.ThreatDescription)
		}
		if a.RecommendedOwnerID != "" {
			s.field("Recommended owner", a.RecommendedOwnerID)
		}
		if a.DeclinedReason != "" {
			s.field("Declined reason", a.DeclinedReason)
		}
		safe.Write(ctx, w, []byte(s.String()))
	}

	if t := agg.Treatment; t != nil {
		s := newSection("Treatment")
		s.field("Status", t.Status)
		s.field("Decision", orDash(t.Decision.String()))
		if t.ExecutiveApprovalRequired {
			s.field("Executive approver", orDash(t.ExecutiveApproverID))
			s.field("Executive approval", orDash(t.ExecutiveApprovalStatus.String()))
		}
		if t.MitigationStatus != "" {
			s.field("Mitigation", fmt.Sprintf("%s %d%%", t.MitigationStatus, t.MitigationProgress))
			s.field("Target date", date(t.MitigationTargetDate))
		}
		if t.CompletedAt != nil {
			s.field("Completed", date(t.CompletedAt))
		}
		safe.Write(ctx, w, []byte(s.String()))

		if len(t.Updates) > 0 {
			s := newSection("Mitigation updates")
			for _, u := range t.Updates {
				s.field(u.CreatedAt.Format(time.DateTime), fmt.Sprintf("%s %s -> %s %d%% %s", u.Type, orDash(u.PreviousStatus.String()), u.NewStatus, u.Progress, u.Notes))
			}
			safe.Write(ctx, w, []byte(s.String()))
		}
	}
}

func printRiskList(ctx context.Context, w io.Writer, risks []*model.Risk) {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CODE\tSTATUS\tLEVEL\tOWNER\tTITLE")
	for _, r := range risks {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Code, r.Status, level(r.InherentRisk), orDash(r.RiskOwnerID), r.Title)
	}
	_ = tw.Flush()
	safe.Write(ctx, w, []byte(b.String()))
}

func printHistory(ctx context.Context, w io.Writer, histories []*model.RiskHistory) {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, h := range histories {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			labelColor.Sprint(h.CreatedAt.Format(time.DateTime)), h.Action, orDash(h.ActorID), h.Note)
	}
	_ = tw.Flush()
	safe.Write(ctx, w, []byte(b.String()))
}

func printAuditLogs(ctx context.Context, w io.Writer, logs []*model.AuditLog) {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, l := range logs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			labelColor.Sprint(l.CreatedAt.Format(time.DateTime)), l.Action, orDash(l.UserID), l.Description)
	}
	_ = tw.Flush()
	safe.Write(ctx, w, []byte(b.String()))
}
