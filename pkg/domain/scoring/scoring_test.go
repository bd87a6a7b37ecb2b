package scoring_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/domain/scoring"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name       string
		likelihood types.Likelihood
		impact     types.Impact
		want       int
	}{
		{"minimum", types.LikelihoodRare, types.ImpactNegligible, 1},
		{"rare minor", types.LikelihoodRare, types.ImpactMinor, 2},
		{"likely major", types.LikelihoodLikely, types.ImpactMajor, 16},
		{"possible moderate", types.LikelihoodPossible, types.ImpactModerate, 9},
		{"maximum", types.LikelihoodAlmostCertain, types.ImpactSevere, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scoring.Score(tt.likelihood, tt.impact)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}

	t.Run("invalid likelihood", func(t *testing.T) {
		_, err := scoring.Score("sometimes", types.ImpactMajor)
		gt.Error(t, err).Is(scoring.ErrInvalidInput)
	})

	t.Run("invalid impact", func(t *testing.T) {
		_, err := scoring.Score(types.LikelihoodLikely, "")
		gt.Error(t, err).Is(scoring.ErrInvalidInput)
	})
}

func TestLevel(t *testing.T) {
	tests := []struct {
		score int
		want  types.RiskLevel
	}{
		{1, types.RiskLevelVeryLow},
		{2, types.RiskLevelVeryLow},
		{3, types.RiskLevelLow},
		{5, types.RiskLevelLow},
		{6, types.RiskLevelMedium},
		{11, types.RiskLevelMedium},
		{12, types.RiskLevelHigh},
		{15, types.RiskLevelHigh},
		{16, types.RiskLevelHigh},
		{19, types.RiskLevelHigh},
		{20, types.RiskLevelVeryHigh},
		{25, types.RiskLevelVeryHigh},
	}

	for _, tt := range tests {
		gt.B(t, scoring.Level(tt.score) == tt.want).
			Describef("score %d should be %s", tt.score, tt.want).
			True()
	}
}

func TestEvaluate(t *testing.T) {
	score, level, err := scoring.Evaluate(types.LikelihoodLikely, types.ImpactMajor)
	gt.NoError(t, err).Required()
	gt.Value(t, score).Equal(16)
	gt.Value(t, level).Equal(types.RiskLevelHigh)

	score, level, err = scoring.Evaluate(types.LikelihoodRare, types.ImpactMinor)
	gt.NoError(t, err).Required()
	gt.Value(t, score).Equal(2)
	gt.Value(t, level).Equal(types.RiskLevelVeryLow)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	for _, l := range types.AllLikelihoods() {
		for _, i := range types.AllImpacts() {
			s1, lv1, err := scoring.Evaluate(l, i)
			gt.NoError(t, err).Required()
			s2, lv2, err := scoring.Evaluate(l, i)
			gt.NoError(t, err).Required()

			gt.Value(t, s1).Equal(s2)
			gt.Value(t, lv1).Equal(lv2)
			gt.Bool(t, s1 >= 1 && s1 <= 25).True()
		}
	}
}

func TestRequiresExecutiveApproval(t *testing.T) {
	gt.Bool(t, scoring.RequiresExecutiveApproval(types.RiskLevelHigh, types.TreatmentDecisionAccept)).True()
	gt.Bool(t, scoring.RequiresExecutiveApproval(types.RiskLevelMedium, types.TreatmentDecisionAccept)).False()
	gt.Bool(t, scoring.RequiresExecutiveApproval(types.RiskLevelVeryHigh, types.TreatmentDecisionMitigate)).False()

	for _, level := range types.AllRiskLevels() {
		for _, decision := range types.AllTreatmentDecisions() {
			want := decision != types.TreatmentDecisionMitigate &&
				(level == types.RiskLevelHigh || level == types.RiskLevelVeryHigh)
			gt.B(t, scoring.RequiresExecutiveApproval(level, decision) == want).
				Describef("%s/%s should be %v", level, decision, want).
				True()
		}
	}
}

func TestNextTreatmentStatus(t *testing.T) {
	approved := true
	denied := false

	tests := []struct {
		name     string
		level    types.RiskLevel
		decision types.TreatmentDecision
		approved *bool
		want     types.TreatmentStatus
	}{
		{"mitigate at very high", types.RiskLevelVeryHigh, types.TreatmentDecisionMitigate, nil, types.TreatmentStatusMitigationInProgress},
		{"mitigate at low", types.RiskLevelLow, types.TreatmentDecisionMitigate, nil, types.TreatmentStatusMitigationInProgress},
		{"transfer at very low", types.RiskLevelVeryLow, types.TreatmentDecisionTransfer, nil, types.TreatmentStatusAutoAccept},
		{"avoid at low", types.RiskLevelLow, types.TreatmentDecisionAvoid, nil, types.TreatmentStatusAutoAccept},
		{"accept at medium", types.RiskLevelMedium, types.TreatmentDecisionAccept, nil, types.TreatmentStatusAccept},
		{"transfer at medium", types.RiskLevelMedium, types.TreatmentDecisionTransfer, nil, types.TreatmentStatusTransfer},
		{"avoid at medium", types.RiskLevelMedium, types.TreatmentDecisionAvoid, nil, types.TreatmentStatusAvoid},
		{"accept at high pending", types.RiskLevelHigh, types.TreatmentDecisionAccept, nil, types.TreatmentStatusIdentifyExecutiveApprover},
		{"accept at high approved", types.RiskLevelHigh, types.TreatmentDecisionAccept, &approved, types.TreatmentStatusAccept},
		{"transfer at very high approved", types.RiskLevelVeryHigh, types.TreatmentDecisionTransfer, &approved, types.TreatmentStatusTransfer},
		{"avoid at high denied", types.RiskLevelHigh, types.TreatmentDecisionAvoid, &denied, types.TreatmentStatusDecisionReview},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.NextTreatmentStatus(tt.level, tt.decision, tt.approved)
			gt.Value(t, got).Equal(tt.want)
		})
	}
}
