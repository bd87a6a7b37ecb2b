package types

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"
)

// maxSlugLength keeps identifiers usable as Firestore document IDs and Redis key segments
const maxSlugLength = 63

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// validateSlug checks a lowercase, hyphen separated identifier
func validateSlug(kind, s string) error {
	switch {
	case s == "":
		return goerr.New(kind + " ID cannot be empty")
	case len(s) > maxSlugLength:
		return goerr.New(kind+" ID is too long", goerr.V("id", s), goerr.V("max", maxSlugLength))
	case !slugPattern.MatchString(s):
		return goerr.New(kind+" ID must be lowercase alphanumeric with hyphens", goerr.V("id", s))
	}
	return nil
}

// CategoryID classifies a risk, e.g. "data-protection" or "third-party"
type CategoryID string

func (c CategoryID) Validate() error {
	return validateSlug("category", string(c))
}

func (c CategoryID) String() string {
	return string(c)
}
