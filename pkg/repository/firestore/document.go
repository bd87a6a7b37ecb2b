package firestore

import (
	"time"

	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

type riskDocument struct {
	ID                int64      `firestore:"id"`
	Code              string     `firestore:"code"`
	OrganizationID    string     `firestore:"organization_id"`
	Title             string     `firestore:"title"`
	Description       string     `firestore:"description"`
	Category          string     `firestore:"category"`
	Source            string     `firestore:"source"`
	Tags              []string   `firestore:"tags"`
	InitialSeverity   string     `firestore:"initial_severity"`
	Status            string     `firestore:"status"`
	RejectionReason   string     `firestore:"rejection_reason"`
	Likelihood        string     `firestore:"likelihood"`
	Impact            string     `firestore:"impact"`
	InherentRiskScore int        `firestore:"inherent_risk_score"`
	InherentRisk      string     `firestore:"inherent_risk"`
	ResidualRiskScore int        `firestore:"residual_risk_score"`
	ResidualRisk      string     `firestore:"residual_risk"`
	ReporterID        string     `firestore:"reporter_id"`
	GRCSMEID          string     `firestore:"grc_sme_id"`
	RiskAssessorID    string     `firestore:"risk_assessor_id"`
	RiskOwnerID       string     `firestore:"risk_owner_id"`
	ReviewFrequency   string     `firestore:"review_frequency"`
	LastReviewedAt    *time.Time `firestore:"last_reviewed_at"`
	NextReviewDue     *time.Time `firestore:"next_review_due"`
	Version           int64      `firestore:"version"`
	CreatedAt         time.Time  `firestore:"created_at"`
	UpdatedAt         time.Time  `firestore:"updated_at"`
	DeletedAt         *time.Time `firestore:"deleted_at"`
	DeletedBy         string     `firestore:"deleted_by"`
}

func riskToDocument(r *model.Risk) *riskDocument {
	return &riskDocument{
		ID:                r.ID,
		Code:              r.Code,
		OrganizationID:    r.OrganizationID.String(),
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category.String(),
		Source:            r.Source.String(),
		Tags:              r.Tags,
		InitialSeverity:   r.InitialSeverity.String(),
		Status:            r.Status.String(),
		RejectionReason:   r.RejectionReason,
		Likelihood:        r.Likelihood.String(),
		Impact:            r.Impact.String(),
		InherentRiskScore: r.InherentRiskScore,
		InherentRisk:      r.InherentRisk.String(),
		ResidualRiskScore: r.ResidualRiskScore,
		ResidualRisk:      r.ResidualRisk.String(),
		ReporterID:        r.ReporterID,
		GRCSMEID:          r.GRCSMEID,
		RiskAssessorID:    r.RiskAssessorID,
		RiskOwnerID:       r.RiskOwnerID,
		ReviewFrequency:   r.ReviewFrequency.String(),
		LastReviewedAt:    r.LastReviewedAt,
		NextReviewDue:     r.NextReviewDue,
		Version:           r.Version,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		DeletedAt:         r.DeletedAt,
		DeletedBy:         r.DeletedBy,
	}
}

func riskToModel(doc *riskDocument) *model.Risk {
	return &model.Risk{
		ID:                doc.ID,
		Code:              doc.Code,
		OrganizationID:    types.OrganizationID(doc.OrganizationID),
		Title:             doc.Title,
		Description:       doc.Description,
		Category:          types.CategoryID(doc.Category),
		Source:            types.RiskSource(doc.Source),
		Tags:              doc.Tags,
		InitialSeverity:   types.RiskLevel(doc.InitialSeverity),
		Status:            types.RiskStatus(doc.Status),
		RejectionReason:   doc.RejectionReason,
		Likelihood:        types.Likelihood(doc.Likelihood),
		Impact:            types.Impact(doc.Impact),
		InherentRiskScore: doc.InherentRiskScore,
		InherentRisk:      types.RiskLevel(doc.InherentRisk),
		ResidualRiskScore: doc.ResidualRiskScore,
		ResidualRisk:      types.RiskLevel(doc.ResidualRisk),
		ReporterID:        doc.ReporterID,
		GRCSMEID:          doc.GRCSMEID,
		RiskAssessorID:    doc.RiskAssessorID,
		RiskOwnerID:       doc.RiskOwnerID,
		ReviewFrequency:   types.ReviewFrequency(doc.ReviewFrequency),
		LastReviewedAt:    doc.LastReviewedAt,
		NextReviewDue:     doc.NextReviewDue,
		Version:           doc.Version,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
		DeletedAt:         doc.DeletedAt,
		DeletedBy:         doc.DeletedBy,
	}
}

type assessmentDocument struct {
	RiskID              int64      `firestore:"risk_id"`
	Status              string     `firestore:"status"`
	ThreatDescription   string     `firestore:"threat_description"`
	Vulnerabilities     string     `firestore:"vulnerabilities"`
	Likelihood          string     `firestore:"likelihood"`
	LikelihoodRationale string     `firestore:"likelihood_rationale"`
	Impact              string     `firestore:"impact"`
	ImpactRationale     string     `firestore:"impact_rationale"`
	FinancialImpact     string     `firestore:"financial_impact"`
	OperationalImpact   string     `firestore:"operational_impact"`
	ReputationalImpact  string     `firestore:"reputational_impact"`
	LegalImpact         string     `firestore:"legal_impact"`
	RiskScore           int        `firestore:"risk_score"`
	CalculatedRiskLevel string     `firestore:"calculated_risk_level"`
	RecommendedOwnerID  string     `firestore:"recommended_owner_id"`
	AffectedAssetIDs    []string   `firestore:"affected_asset_ids"`
	ExistingControlIDs  []string   `firestore:"existing_control_ids"`
	AssessorID          string     `firestore:"assessor_id"`
	GRCNotes            string     `firestore:"grc_notes"`
	DeclinedReason      string     `firestore:"declined_reason"`
	SubmittedAt         *time.Time `firestore:"submitted_at"`
	GRCApprovedAt       *time.Time `firestore:"grc_approved_at"`
	CompletedAt         *time.Time `firestore:"completed_at"`
	CreatedAt           time.Time  `firestore:"created_at"`
	UpdatedAt           time.Time  `firestore:"updated_at"`
}

func assessmentToDocument(a *model.RiskAssessment) *assessmentDocument {
	return &assessmentDocument{
		RiskID:              a.RiskID,
		Status:              a.Status.String(),
		ThreatDescription:   a.ThreatDescription,
		Vulnerabilities:     a.Vulnerabilities,
		Likelihood:          a.Likelihood.String(),
		LikelihoodRationale: a.LikelihoodRationale,
		Impact:              a.Impact.String(),
		ImpactRationale:     a.ImpactRationale,
		FinancialImpact:     a.FinancialImpact,
		OperationalImpact:   a.OperationalImpact,
		ReputationalImpact:  a.ReputationalImpact,
		LegalImpact:         a.LegalImpact,
		RiskScore:           a.RiskScore,
		CalculatedRiskLevel: a.CalculatedRiskLevel.String(),
		RecommendedOwnerID:  a.RecommendedOwnerID,
		AffectedAssetIDs:    model.UniqueIDs(a.AffectedAssetIDs),
		ExistingControlIDs:  model.UniqueIDs(a.ExistingControlIDs),
		AssessorID:          a.AssessorID,
		GRCNotes:            a.GRCNotes,
		DeclinedReason:      a.DeclinedReason,
		SubmittedAt:         a.SubmittedAt,
		GRCApprovedAt:       a.GRCApprovedAt,
		CompletedAt:         a.CompletedAt,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

func assessmentToModel(doc *assessmentDocument) *model.RiskAssessment {
	return &model.RiskAssessment{
		RiskID:              doc.RiskID,
		Status:              types.AssessmentStatus(doc.Status),
		ThreatDescription:   doc.ThreatDescription,
		Vulnerabilities:     doc.Vulnerabilities,
		Likelihood:          types.Likelihood(doc.Likelihood),
		LikelihoodRationale: doc.LikelihoodRationale,
		Impact:              types.Impact(doc.Impact),
		ImpactRationale:     doc.ImpactRationale,
		FinancialImpact:     doc.FinancialImpact,
		OperationalImpact:   doc.OperationalImpact,
		ReputationalImpact:  doc.ReputationalImpact,
		LegalImpact:         doc.LegalImpact,
		RiskScore:           doc.RiskScore,
		CalculatedRiskLevel: types.RiskLevel(doc.CalculatedRiskLevel),
		RecommendedOwnerID:  doc.RecommendedOwnerID,
		AffectedAssetIDs:    doc.AffectedAssetIDs,
		ExistingControlIDs:  doc.ExistingControlIDs,
		AssessorID:          doc.AssessorID,
		GRCNotes:            doc.GRCNotes,
		DeclinedReason:      doc.DeclinedReason,
		SubmittedAt:         doc.SubmittedAt,
		GRCApprovedAt:       doc.GRCApprovedAt,
		CompletedAt:         doc.CompletedAt,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
	}
}

type treatmentDocument struct {
	RiskID                    int64      `firestore:"risk_id"`
	Status                    string     `firestore:"status"`
	Decision                  string     `firestore:"decision"`
	Justification             string     `firestore:"justification"`
	MitigationDescription     string     `firestore:"mitigation_description"`
	MitigationTargetDate      *time.Time `firestore:"mitigation_target_date"`
	TransferTo                string     `firestore:"transfer_to"`
	TransferCost              *float64   `firestore:"transfer_cost"`
	AvoidanceStrategy         string     `firestore:"avoidance_strategy"`
	AcceptanceRationale       string     `firestore:"acceptance_rationale"`
	AcceptanceExpiry          *time.Time `firestore:"acceptance_expiry"`
	ExecutiveApprovalRequired bool       `firestore:"executive_approval_required"`
	ExecutiveApproverID       string     `firestore:"executive_approver_id"`
	ExecutiveApprovalStatus   string     `firestore:"executive_approval_status"`
	ExecutiveNotes            string     `firestore:"executive_notes"`
	ExecutiveDecidedAt        *time.Time `firestore:"executive_decided_at"`
	MitigationStatus          string     `firestore:"mitigation_status"`
	MitigationProgress        int        `firestore:"mitigation_progress"`
	LastProgressUpdateAt      *time.Time `firestore:"last_progress_update_at"`
	NextReviewDate            *time.Time `firestore:"next_review_date"`
	ResidualLikelihood        string     `firestore:"residual_likelihood"`
	ResidualImpact            string     `firestore:"residual_impact"`
	ResidualRiskScore         int        `firestore:"residual_risk_score"`
	ResidualRiskLevel         string     `firestore:"residual_risk_level"`
	DecidedAt                 *time.Time `firestore:"decided_at"`
	CompletedAt               *time.Time `firestore:"completed_at"`
	CreatedAt                 time.Time  `firestore:"created_at"`
	UpdatedAt                 time.Time  `firestore:"updated_at"`
}

func treatmentToDocument(t *model.RiskTreatment) *treatmentDocument {
	return &treatmentDocument{
		RiskID:                    t.RiskID,
		Status:                    t.Status.String(),
		Decision:                  t.Decision.String(),
		Justification:             t.Justification,
		MitigationDescription:     t.MitigationDescription,
		MitigationTargetDate:      t.MitigationTargetDate,
		TransferTo:                t.TransferTo,
		TransferCost:              t.TransferCost,
		AvoidanceStrategy:         t.AvoidanceStrategy,
		AcceptanceRationale:       t.AcceptanceRationale,
		AcceptanceExpiry:          t.AcceptanceExpiry,
		ExecutiveApprovalRequired: t.ExecutiveApprovalRequired,
		ExecutiveApproverID:       t.ExecutiveApproverID,
		ExecutiveApprovalStatus:   t.ExecutiveApprovalStatus.String(),
		ExecutiveNotes:            t.ExecutiveNotes,
		ExecutiveDecidedAt:        t.ExecutiveDecidedAt,
		MitigationStatus:          t.MitigationStatus.String(),
		MitigationProgress:        t.MitigationProgress,
		LastProgressUpdateAt:      t.LastProgressUpdateAt,
		NextReviewDate:            t.NextReviewDate,
		ResidualLikelihood:        t.ResidualLikelihood.String(),
		ResidualImpact:            t.ResidualImpact.String(),
		ResidualRiskScore:         t.ResidualRiskScore,
		ResidualRiskLevel:         t.ResidualRiskLevel.String(),
		DecidedAt:                 t.DecidedAt,
		CompletedAt:               t.CompletedAt,
		CreatedAt:                 t.CreatedAt,
		UpdatedAt:                 t.UpdatedAt,
	}
}

func treatmentToModel(doc *treatmentDocument) *model.RiskTreatment {
	return &model.RiskTreatment{
		RiskID:                    doc.RiskID,
		Status:                    types.TreatmentStatus(doc.Status),
		Decision:                  types.TreatmentDecision(doc.Decision),
		Justification:             doc.Justification,
		MitigationDescription:     doc.MitigationDescription,
		MitigationTargetDate:      doc.MitigationTargetDate,
		TransferTo:                doc.TransferTo,
		TransferCost:              doc.TransferCost,
		AvoidanceStrategy:         doc.AvoidanceStrategy,
		AcceptanceRationale:       doc.AcceptanceRationale,
		AcceptanceExpiry:          doc.AcceptanceExpiry,
		ExecutiveApprovalRequired: doc.ExecutiveApprovalRequired,
		ExecutiveApproverID:       doc.ExecutiveApproverID,
		ExecutiveApprovalStatus:   types.ApprovalStatus(doc.ExecutiveApprovalStatus),
		ExecutiveNotes:            doc.ExecutiveNotes,
		ExecutiveDecidedAt:        doc.ExecutiveDecidedAt,
		MitigationStatus:          types.MitigationStatus(doc.MitigationStatus),
		MitigationProgress:        doc.MitigationProgress,
		LastProgressUpdateAt:      doc.LastProgressUpdateAt,
		NextReviewDate:            doc.NextReviewDate,
		ResidualLikelihood:        types.Likelihood(doc.ResidualLikelihood),
		ResidualImpact:            types.Impact(doc.ResidualImpact),
		ResidualRiskScore:         doc.ResidualRiskScore,
		ResidualRiskLevel:         types.RiskLevel(doc.ResidualRiskLevel),
		DecidedAt:                 doc.DecidedAt,
		CompletedAt:               doc.CompletedAt,
		CreatedAt:                 doc.CreatedAt,
		UpdatedAt:                 doc.UpdatedAt,
	}
}

type treatmentUpdateDocument struct {
	ID                 string    `firestore:"id"`
	RiskID             int64     `firestore:"risk_id"`
	Type               string    `firestore:"type"`
	PreviousStatus     string    `firestore:"previous_status"`
	NewStatus          string    `firestore:"new_status"`
	Progress           int       `firestore:"progress"`
	Notes              string    `firestore:"notes"`
	DelayReason        string    `firestore:"delay_reason"`
	CancellationReason string    `firestore:"cancellation_reason"`
	ActorID            string    `firestore:"actor_id"`
	CreatedAt          time.Time `firestore:"created_at"`
}

func treatmentUpdateToDocument(u *model.RiskTreatmentUpdate) *treatmentUpdateDocument {
	return &treatmentUpdateDocument{
		ID:                 u.ID,
		RiskID:             u.RiskID,
		Type:               u.Type.String(),
		PreviousStatus:     u.PreviousStatus.String(),
		NewStatus:          u.NewStatus.String(),
		Progress:           u.Progress,
		Notes:              u.Notes,
		DelayReason:        u.DelayReason,
		CancellationReason: u.CancellationReason,
		ActorID:            u.ActorID,
		CreatedAt:          u.CreatedAt,
	}
}

func treatmentUpdateToModel(doc *treatmentUpdateDocument) *model.RiskTreatmentUpdate {
	return &model.RiskTreatmentUpdate{
		ID:                 doc.ID,
		RiskID:             doc.RiskID,
		Type:               types.TreatmentUpdateType(doc.Type),
		PreviousStatus:     types.MitigationStatus(doc.PreviousStatus),
		NewStatus:          types.MitigationStatus(doc.NewStatus),
		Progress:           doc.Progress,
		Notes:              doc.Notes,
		DelayReason:        doc.DelayReason,
		CancellationReason: doc.CancellationReason,
		ActorID:            doc.ActorID,
		CreatedAt:          doc.CreatedAt,
	}
}

type historyDocument struct {
	ID             string         `firestore:"id"`
	OrganizationID string         `firestore:"organization_id"`
	RiskID         int64          `firestore:"risk_id"`
	Action         string         `firestore:"action"`
	Before         map[string]any `firestore:"before"`
	After          map[string]any `firestore:"after"`
	Note           string         `firestore:"note"`
	ActorID        string         `firestore:"actor_id"`
	CreatedAt      time.Time      `firestore:"created_at"`
}

func historyToDocument(h *model.RiskHistory) *historyDocument {
	return &historyDocument{
		ID:             h.ID,
		OrganizationID: h.OrganizationID.String(),
		RiskID:         h.RiskID,
		Action:         h.Action.String(),
		Before:         h.Before,
		After:          h.After,
		Note:           h.Note,
		ActorID:        h.ActorID,
		CreatedAt:      h.CreatedAt,
	}
}

func historyToModel(doc *historyDocument) *model.RiskHistory {
	return &model.RiskHistory{
		ID:             doc.ID,
		OrganizationID: types.OrganizationID(doc.OrganizationID),
		RiskID:         doc.RiskID,
		Action:         types.HistoryAction(doc.Action),
		Before:         doc.Before,
		After:          doc.After,
		Note:           doc.Note,
		ActorID:        doc.ActorID,
		CreatedAt:      doc.CreatedAt,
	}
}

type auditLogDocument struct {
	ID             string         `firestore:"id"`
	OrganizationID string         `firestore:"organization_id"`
	UserID         string         `firestore:"user_id"`
	Action         string         `firestore:"action"`
	EntityType     string         `firestore:"entity_type"`
	EntityID       string         `firestore:"entity_id"`
	Description    string         `firestore:"description"`
	Changes        map[string]any `firestore:"changes"`
	CreatedAt      time.Time      `firestore:"created_at"`
}

func auditLogToDocument(l *model.AuditLog) *auditLogDocument {
	return &auditLogDocument{
		ID:             l.ID,
		OrganizationID: l.OrganizationID.String(),
		UserID:         l.UserID,
		Action:         l.Action,
		EntityType:     l.EntityType,
		EntityID:       l.EntityID,
		Description:    l.Description,
		Changes:        l.Changes,
		CreatedAt:      l.CreatedAt,
	}
}

func auditLogToModel(doc *auditLogDocument) *model.AuditLog {
	return &model.AuditLog{
		ID:             doc.ID,
		OrganizationID: types.OrganizationID(doc.OrganizationID),
		UserID:         doc.UserID,
		Action:         doc.Action,
		EntityType:     doc.EntityType,
		EntityID:       doc.EntityID,
		Description:    doc.Description,
		Changes:        doc.Changes,
		CreatedAt:      doc.CreatedAt,
	}
}
