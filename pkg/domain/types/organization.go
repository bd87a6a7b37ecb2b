package types

// OrganizationID identifies a tenant. Every risk belongs to exactly one organization.
type OrganizationID string

// Validate checks if the OrganizationID is valid
func (o OrganizationID) Validate() error {
	return validateSlug("organization", string(o))
}

// String returns the string representation of OrganizationID
func (o OrganizationID) String() string {
	return string(o)
}
