package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/interfaces"
	"github.com/secmon-lab/riskflow/pkg/domain/model"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	risksCollection            = "risks"
	assessmentsCollection      = "risk_assessments"
	treatmentsCollection       = "risk_treatments"
	treatmentUpdatesCollection = "treatment_updates"
	historiesCollection        = "histories"
	countersCollection         = "counters"
	riskCounterDoc             = "risk_counter"
)

type riskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRiskRepository(client *firestore.Client) *riskRepository {
	return &riskRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *riskRepository) orgDoc(orgID types.OrganizationID) *firestore.DocumentRef {
	return r.client.Collection(organizationsCollection(r.collectionPrefix)).Doc(orgID.String())
}

func docID(id int64) string {
	return fmt.Sprintf("%d", id)
}

func (r *riskRepository) riskRef(orgID types.OrganizationID, riskID int64) *firestore.DocumentRef {
	return r.orgDoc(orgID).Collection(risksCollection).Doc(docID(riskID))
}

func (r *riskRepository) assessmentRef(orgID types.OrganizationID, riskID int64) *firestore.DocumentRef {
	return r.orgDoc(orgID).Collection(assessmentsCollection).Doc(docID(riskID))
}

func (r *riskRepository) treatmentRef(orgID types.OrganizationID, riskID int64) *firestore.DocumentRef {
	return r.orgDoc(orgID).Collection(treatmentsCollection).Doc(docID(riskID))
}

func (r *riskRepository) Create(ctx context.Context, orgID types.OrganizationID, risk *model.Risk, history *model.RiskHistory) (*model.Risk, error) {
	if history == nil {
		return nil, goerr.New("history is required to create a risk")
	}

	counterRef := r.orgDoc(orgID).Collection(countersCollection).Doc(riskCounterDoc)

	var created *model.Risk
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		nextID := int64(1)
		doc, err := tx.Get(counterRef)
		switch {
		case err == nil:
			currentValue, err := doc.DataAt("value")
			if err != nil {
				return goerr.Wrap(err, "failed to get counter value")
			}
			val, ok := currentValue.(int64)
			if !ok {
				return goerr.New("counter value is not of type int64", goerr.V("value", currentValue))
			}
			nextID = val + 1
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get counter")
		}

		now := time.Now().UTC()
		created = risk.Clone()
		created.ID = nextID
		created.Code = model.FormatRiskCode(nextID)
		created.OrganizationID = orgID
		created.Version = 1
		if created.CreatedAt.IsZero() {
			created.CreatedAt = now
		}
		if created.UpdatedAt.IsZero() {
			created.UpdatedAt = created.CreatedAt
		}

		h := history.Clone()
		h.OrganizationID = orgID
		h.RiskID = nextID
		if h.ID == "" {
			h.ID = model.NewID()
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = created.CreatedAt
		}

		riskRef := r.riskRef(orgID, nextID)
		if err := tx.Set(counterRef, map[string]any{"value": nextID}); err != nil {
			return goerr.Wrap(err, "failed to update counter")
		}
		if err := tx.Create(riskRef, riskToDocument(created)); err != nil {
			return goerr.Wrap(err, "failed to create risk")
		}
		if err := tx.Create(riskRef.Collection(historiesCollection).Doc(h.ID), historyToDocument(h)); err != nil {
			return goerr.Wrap(err, "failed to create risk history")
		}
		return nil
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create risk", goerr.V("organization_id", orgID))
	}

	history.RiskID = created.ID
	return created, nil
}

// docReader is satisfied by both client-level and transaction reads
type docReader interface {
	get(ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error)
	documents(q firestore.Query) *firestore.DocumentIterator
}

type clientReader struct{ ctx context.Context }

func (c clientReader) get(ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	return ref.Get(c.ctx)
}

func (c clientReader) documents(q firestore.Query) *firestore.DocumentIterator {
	return q.Documents(c.ctx)
}

type txReader struct{ tx *firestore.Transaction }

func (t txReader) get(ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	return t.tx.Get(ref)
}

func (t txReader) documents(q firestore.Query) *firestore.DocumentIterator {
	return t.tx.Documents(q)
}

func (r *riskRepository) load(reader docReader, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	snap, err := reader.get(r.riskRef(orgID, riskID))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("risk_id", riskID))
	}
	var rd riskDocument
	if err := snap.DataTo(&rd); err != nil {
		return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("risk_id", riskID))
	}
	agg := &model.RiskAggregate{Risk: riskToModel(&rd)}

	snap, err = reader.get(r.assessmentRef(orgID, riskID))
	switch {
	case err == nil:
		var ad assessmentDocument
		if err := snap.DataTo(&ad); err != nil {
			return nil, goerr.Wrap(err, "failed to decode assessment", goerr.V("risk_id", riskID))
		}
		agg.Assessment = assessmentToModel(&ad)
	case status.Code(err) != codes.NotFound:
		return nil, goerr.Wrap(err, "failed to get assessment", goerr.V("risk_id", riskID))
	}

	snap, err = reader.get(r.treatmentRef(orgID, riskID))
	switch {
	case err == nil:
		var td treatmentDocument
		if err := snap.DataTo(&td); err != nil {
			return nil, goerr.Wrap(err, "failed to decode treatment", goerr.V("risk_id", riskID))
		}
		agg.Treatment = treatmentToModel(&td)

		updates, err := r.loadUpdates(reader, orgID, riskID)
		if err != nil {
			return nil, err
		}
		agg.Treatment.Updates = updates
	case status.Code(err) != codes.NotFound:
		return nil, goerr.Wrap(err, "failed to get treatment", goerr.V("risk_id", riskID))
	}

	return agg, nil
}

func (r *riskRepository) loadUpdates(reader docReader, orgID types.OrganizationID, riskID int64) ([]*model.RiskTreatmentUpdate, error) {
	q := r.riskRef(orgID, riskID).Collection(treatmentUpdatesCollection).Query
	iter := reader.documents(q)
	defer iter.Stop()

	updates := []*model.RiskTreatmentUpdate{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate treatment updates", goerr.V("risk_id", riskID))
		}
		var doc treatmentUpdateDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode treatment update", goerr.V("doc_id", snap.Ref.ID))
		}
		updates = append(updates, treatmentUpdateToModel(&doc))
	}
	model.SortTreatmentUpdates(updates)
	return updates, nil
}

func (r *riskRepository) Get(ctx context.Context, orgID types.OrganizationID, riskID int64) (*model.RiskAggregate, error) {
	return r.load(clientReader{ctx: ctx}, orgID, riskID)
}

func (r *riskRepository) List(ctx context.Context, orgID types.OrganizationID) ([]*model.Risk, error) {
	iter := r.orgDoc(orgID).Collection(risksCollection).OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	risks := []*model.Risk{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risks", goerr.V("organization_id", orgID))
		}
		var doc riskDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk", goerr.V("doc_id", snap.Ref.ID))
		}
		risks = append(risks, riskToModel(&doc))
	}
	return risks, nil
}

func (r *riskRepository) Transact(ctx context.Context, orgID types.OrganizationID, riskID int64, fn interfaces.TransactFunc) (*model.RiskAggregate, error) {
	var fnErr error
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		fnErr = nil
		agg, err := r.load(txReader{tx: tx}, orgID, riskID)
		if err != nil {
			return err
		}
		current := agg.Risk.Clone()

		change, err := fn(ctx, agg)
		if err != nil {
			fnErr = err
			return err
		}
		if err := change.Validate(); err != nil {
			return goerr.Wrap(err, "invalid risk change", goerr.V("risk_id", riskID))
		}

		updated := change.Risk.Clone()
		updated.ID = riskID
		updated.OrganizationID = orgID
		updated.Code = current.Code
		updated.CreatedAt = current.CreatedAt
		updated.Version = current.Version + 1

		riskRef := r.riskRef(orgID, riskID)
		if err := tx.Set(riskRef, riskToDocument(updated)); err != nil {
			return goerr.Wrap(err, "failed to update risk", goerr.V("risk_id", riskID))
		}
		if change.Assessment != nil {
			a := change.Assessment.Clone()
			a.RiskID = riskID
			if err := tx.Set(r.assessmentRef(orgID, riskID), assessmentToDocument(a)); err != nil {
				return goerr.Wrap(err, "failed to upsert assessment", goerr.V("risk_id", riskID))
			}
		}
		if change.Treatment != nil {
			t := change.Treatment.Clone()
			t.RiskID = riskID
			if err := tx.Set(r.treatmentRef(orgID, riskID), treatmentToDocument(t)); err != nil {
				return goerr.Wrap(err, "failed to upsert treatment", goerr.V("risk_id", riskID))
			}
		}
		if change.TreatmentUpdate != nil {
			u := change.TreatmentUpdate.Clone()
			u.RiskID = riskID
			if u.ID == "" {
				u.ID = model.NewID()
			}
			ref := riskRef.Collection(treatmentUpdatesCollection).Doc(u.ID)
			if err := tx.Create(ref, treatmentUpdateToDocument(u)); err != nil {
				return goerr.Wrap(err, "failed to append treatment update", goerr.V("risk_id", riskID))
			}
		}

		h := change.History.Clone()
		h.OrganizationID = orgID
		h.RiskID = riskID
		if h.ID == "" {
			h.ID = model.NewID()
		}
		if err := tx.Create(riskRef.Collection(historiesCollection).Doc(h.ID), historyToDocument(h)); err != nil {
			return goerr.Wrap(err, "failed to append risk history", goerr.V("risk_id", riskID))
		}
		return nil
	})
	if err != nil {
		if fnErr != nil {
			return nil, fnErr
		}
		if status.Code(err) == codes.Aborted {
			return nil, goerr.Wrap(interfaces.ErrConflict, "risk was modified concurrently",
				goerr.V("risk_id", riskID), goerr.V("cause", err.Error()))
		}
		return nil, err
	}

	return r.load(clientReader{ctx: ctx}, orgID, riskID)
}

func (r *riskRepository) ListHistory(ctx context.Context, orgID types.OrganizationID, riskID int64) ([]*model.RiskHistory, error) {
	riskRef := r.riskRef(orgID, riskID)
	if _, err := riskRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("risk_id", riskID))
		}
		return nil, goerr.Wrap(err, "failed to check risk existence", goerr.V("risk_id", riskID))
	}

	iter := riskRef.Collection(historiesCollection).Documents(ctx)
	defer iter.Stop()

	histories := []*model.RiskHistory{}
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate risk histories", goerr.V("risk_id", riskID))
		}
		var doc historyDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode risk history", goerr.V("doc_id", snap.Ref.ID))
		}
		histories = append(histories, historyToModel(&doc))
	}
	model.SortHistories(histories)
	return histories, nil
}
