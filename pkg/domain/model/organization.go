package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskflow/pkg/domain/types"
)

// Organization is a tenant of the risk register
type Organization struct {
	ID   types.OrganizationID
	Name string
	// ReviewFrequency is applied to risks that do not set their own cadence
	ReviewFrequency types.ReviewFrequency
	// NotificationChannel receives a copy of workflow notifications (Slack channel ID)
	NotificationChannel string
}

// ErrOrganizationNotFound is returned when an organization is not found in the registry
var ErrOrganizationNotFound = goerr.New("organization not found")

// OrganizationRegistry holds organization settings.
// It does not hold Repository or UseCase instances (settings only).
type OrganizationRegistry struct {
	entries map[types.OrganizationID]*Organization
	order   []types.OrganizationID // preserves registration order
}

// NewOrganizationRegistry creates a new empty OrganizationRegistry
func NewOrganizationRegistry() *OrganizationRegistry {
	return &OrganizationRegistry{
		entries: make(map[types.OrganizationID]*Organization),
	}
}

// Register adds an organization to the registry, replacing an entry with the same ID
func (r *OrganizationRegistry) Register(org *Organization) {
	if _, exists := r.entries[org.ID]; !exists {
		r.order = append(r.order, org.ID)
	}
	r.entries[org.ID] = org
}

// Get retrieves an organization by ID
func (r *OrganizationRegistry) Get(orgID types.OrganizationID) (*Organization, error) {
	org, ok := r.entries[orgID]
	if !ok {
		return nil, goerr.Wrap(ErrOrganizationNotFound, "organization not found",
			goerr.V("organization_id", orgID))
	}
	return org, nil
}

// List returns all registered organizations in registration order
func (r *OrganizationRegistry) List() []*Organization {
	result := make([]*Organization, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// Len returns the number of registered organizations
func (r *OrganizationRegistry) Len() int {
	return len(r.order)
}
