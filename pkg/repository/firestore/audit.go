package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"google.golang.org/api/iterator"
)

const auditLogsCollection = "audit_logs"

type auditLogRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditLogRepository(client *firestore.Client) *auditLogRepository {
	return &auditLogRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *auditLogRepository) collection(orgID types.OrganizationID) *firestore.CollectionRef {
	return r.client.Collection(organizationsCollection(r.collectionPrefix)).
		Doc(orgID.String()).
		Collection(auditLogsCollection)
}

func (r *auditLogRepository) Put(ctx context.Context, log *model.AuditLog) error {
	stored := log.Clone()
	if stored.ID == "" {
		stored.ID = model.NewID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection(stored.OrganizationID).Doc(stored.ID).Set(ctx, auditLogToDocument(stored)); err != nil {
		return goerr.Wrap(err, "failed to put audit log",
			goerr.V("entity_type", stored.EntityType), goerr.V("entity_id", stored.EntityID))
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, orgID types.OrganizationID, entityType, entityID string) ([]*model.AuditLog, error) {
	iter := r.collection(orgID).
		Where("entity_type", "==", entityType).
		Where("entity_id", "==", entityID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	logs := []*model.AuditLog{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate audit logs", goerr.V("entity_id", entityID))
		}
		var doc auditLogDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode audit log", goerr.V("doc_id", snap.Ref.ID))
		}
		logs = append(logs, auditLogToModel(&doc))
	}
	return logs, nil
}
