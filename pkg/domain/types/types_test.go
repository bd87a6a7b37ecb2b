package types_test

import (
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

func TestCategoryID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.CategoryID
		wantErr bool
	}{
		{"valid lowercase", "data-breach", false},
		{"valid single word", "security", false},
		{"valid with numbers", "risk-123", false},
		{"empty", "", true},
		{"uppercase", "Data-Breach", true},
		{"spaces", "data breach", true},
		{"underscore", "data_breach", true},
		{"starting with hyphen", "-data", true},
		{"ending with hyphen", "data-", true},
		{"double hyphen", "data--breach", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("CategoryID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOrganizationID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.OrganizationID
		wantErr bool
	}{
		{"valid lowercase", "acme-corp", false},
		{"valid single word", "acme", false},
		{"empty", "", true},
		{"uppercase", "Acme", true},
		{"max length", types.OrganizationID(strings.Repeat("a", 63)), false},
		{"too long", types.OrganizationID(strings.Repeat("a", 64)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("OrganizationID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLikelihood_Value(t *testing.T) {
	for i, l := range types.AllLikelihoods() {
		gt.Number(t, l.Value()).Equal(i + 1)
		gt.Bool(t, l.IsValid()).True()
	}
	gt.Number(t, types.Likelihood("often").Value()).Equal(0)

	_, err := types.ParseLikelihood("often")
	gt.Error(t, err)
	got, err := types.ParseLikelihood("almost_certain")
	gt.NoError(t, err)
	gt.Value(t, got).Equal(types.LikelihoodAlmostCertain)
}

func TestImpact_Value(t *testing.T) {
	for i, v := range types.AllImpacts() {
		gt.Number(t, v.Value()).Equal(i + 1)
	}
	gt.Bool(t, types.Impact("").IsValid()).False()

	got, err := types.ParseImpact("major")
	gt.NoError(t, err)
	gt.Number(t, got.Value()).Equal(4)
}

func TestRiskLevel_Rank(t *testing.T) {
	gt.Number(t, types.RiskLevelVeryLow.Rank()).Equal(1)
	gt.Number(t, types.RiskLevelVeryHigh.Rank()).Equal(5)
	gt.Bool(t, types.RiskLevel("critical").IsValid()).False()
}

func TestTreatmentStatus_Classification(t *testing.T) {
	terminal := map[types.TreatmentStatus]bool{
		types.TreatmentStatusMitigationComplete: true,
		types.TreatmentStatusAccept:             true,
		types.TreatmentStatusTransfer:           true,
		types.TreatmentStatusAvoid:              true,
		types.TreatmentStatusAutoAccept:         true,
	}
	mitigation := map[types.TreatmentStatus]bool{
		types.TreatmentStatusMitigationInProgress:    true,
		types.TreatmentStatusMitigationStatusUpdate:  true,
		types.TreatmentStatusMitigationStatusRouting: true,
	}

	statuses := types.AllTreatmentStatuses()
	gt.A(t, statuses).Length(11)
	for _, s := range statuses {
		gt.Bool(t, s.IsValid()).True()
		gt.Value(t, s.IsTerminal()).Equal(terminal[s])
		gt.Value(t, s.IsMitigationPhase()).Equal(mitigation[s])
	}

	_, err := types.ParseTreatmentStatus("closed")
	gt.Error(t, err)
}

func TestTreatmentDecision_TerminalStatus(t *testing.T) {
	gt.Value(t, types.TreatmentDecisionAccept.TerminalStatus()).Equal(types.TreatmentStatusAccept)
	gt.Value(t, types.TreatmentDecisionTransfer.TerminalStatus()).Equal(types.TreatmentStatusTransfer)
	gt.Value(t, types.TreatmentDecisionAvoid.TerminalStatus()).Equal(types.TreatmentStatusAvoid)
	gt.Value(t, types.TreatmentDecisionMitigate.TerminalStatus()).Equal(types.TreatmentStatusMitigationInProgress)
	gt.Value(t, types.TreatmentDecision("ignore").TerminalStatus()).Equal(types.TreatmentStatus(""))
}

func TestRiskSource_IsValid(t *testing.T) {
	gt.A(t, types.AllRiskSources()).Length(6)
	for _, s := range types.AllRiskSources() {
		gt.Bool(t, s.IsValid()).True()
	}
	_, err := types.ParseRiskSource("rumor")
	gt.Error(t, err)
}

func TestRiskStatus_IsTerminal(t *testing.T) {
	for _, s := range types.AllRiskStatuses() {
		gt.Bool(t, s.IsValid()).True()
		gt.Value(t, s.IsTerminal()).Equal(s == types.RiskStatusNotARisk)
	}
}

func TestReviewFrequency_Next(t *testing.T) {
	from := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		freq types.ReviewFrequency
		want time.Time
	}{
		{types.ReviewFrequencyMonthly, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)},
		{types.ReviewFrequencyQuarterly, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)},
		{types.ReviewFrequencySemiAnnually, time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)},
		{types.ReviewFrequencyAnnually, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.freq.String(), func(t *testing.T) {
			gt.Bool(t, tt.freq.Next(from).Equal(tt.want)).True()
		})
	}

	_, err := types.ParseReviewFrequency("weekly")
	gt.Error(t, err)
}

func TestUpdateTypeFor(t *testing.T) {
	gt.Value(t, types.UpdateTypeFor(types.MitigationStatusOnTrack)).Equal(types.TreatmentUpdateProgress)
	gt.Value(t, types.UpdateTypeFor(types.MitigationStatusDelayed)).Equal(types.TreatmentUpdateDelay)
	gt.Value(t, types.UpdateTypeFor(types.MitigationStatusCancelled)).Equal(types.TreatmentUpdateCancellation)
	gt.Value(t, types.UpdateTypeFor(types.MitigationStatusDone)).Equal(types.TreatmentUpdateCompletion)
}
