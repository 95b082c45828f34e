package catalogs

import (
	"strings"

	"github.com/google/uuid"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// DatasetID is the canonical identifier of a dataset. It is the
// reconciliation key against the remote store.
type DatasetID string

// String returns the string representation of a DatasetID.
func (id DatasetID) String() string {
	return string(id)
}

// IdentifierScheme selects how a DatasetID is derived from a project.
type IdentifierScheme string

const (
	// IdentifierSchemeURI uses the project external URI as identifier.
	IdentifierSchemeURI IdentifierScheme = "uri"
	// IdentifierSchemeUUID uses a name-based UUID of the project external URI.
	IdentifierSchemeUUID IdentifierScheme = "uuid"
)

// ParseIdentifierScheme parses a configured scheme name; empty means uri.
func ParseIdentifierScheme(s string) (IdentifierScheme, error) {
	switch IdentifierScheme(strings.ToLower(strings.TrimSpace(s))) {
	case "", IdentifierSchemeURI:
		return IdentifierSchemeURI, nil
	case IdentifierSchemeUUID:
		return IdentifierSchemeUUID, nil
	default:
		return "", errors.NewConfigurationError("img2catalog.identifier_scheme", "unknown identifier scheme "+s, nil)
	}
}

// Identify derives the canonical identifier of a project from its external
// URI. The result depends only on the URI, never on project content.
func (s IdentifierScheme) Identify(externalURI string) (DatasetID, error) {
	if !IsAbsoluteURI(externalURI) {
		return "", errors.NewValidationError("identifier", externalURI, "project URI must be absolute")
	}
	switch s {
	case IdentifierSchemeUUID:
		return DatasetID("urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(externalURI)).String()), nil
	default:
		return DatasetID(externalURI), nil
	}
}
