package catalogs

import (
	"strings"

	"github.com/Health-RI/img2catalog/internal/utils/text"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Agent is a person or organization acting as creator or publisher.
type Agent struct {
	Name       string `json:"name" yaml:"name"`                             // Display name
	Identifier string `json:"identifier" yaml:"identifier"`                 // Absolute URI identifying the agent
	Email      string `json:"email,omitempty" yaml:"email,omitempty"`       // mailto: URI
	Homepage   string `json:"homepage,omitempty" yaml:"homepage,omitempty"` // Homepage URI
}

// Key returns the identity used to deduplicate agents: the case-folded,
// whitespace-normalized name plus the identifier.
func (a Agent) Key() string {
	return text.Fold(text.Squash(a.Name)) + "\x00" + strings.TrimSpace(a.Identifier)
}

// Validate checks that the agent has a name and an absolute identifier.
func (a Agent) Validate(field string) error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.NewValidationError(field, a, "agent name is required")
	}
	if !IsAbsoluteURI(a.Identifier) {
		return errors.NewValidationError(field, a.Identifier, "agent identifier must be an absolute URI")
	}
	if a.Email != "" && !strings.HasPrefix(a.Email, "mailto:") {
		return errors.NewValidationError(field, a.Email, "agent email must be a mailto: URI")
	}
	if a.Homepage != "" && !IsAbsoluteURI(a.Homepage) {
		return errors.NewValidationError(field, a.Homepage, "agent homepage must be an absolute URI")
	}
	return nil
}

// DedupeAgents returns agents in first-seen order with duplicates by Key removed.
func DedupeAgents(agents []Agent) []Agent {
	seen := make(map[string]struct{}, len(agents))
	out := make([]Agent, 0, len(agents))
	for _, a := range agents {
		k := a.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// ContactPoint is the vCard contact of a dataset.
type ContactPoint struct {
	FullName string `json:"full_name" yaml:"full_name"`
	Email    string `json:"email" yaml:"email"`                 // Always a mailto: URI
	UID      string `json:"uid,omitempty" yaml:"uid,omitempty"` // Optional URI
	URL      string `json:"url,omitempty" yaml:"url,omitempty"` // Optional contact page
}

// NewContactPoint builds a contact point, normalizing the email into a mailto: URI.
func NewContactPoint(fullName, email string) ContactPoint {
	return ContactPoint{FullName: strings.TrimSpace(fullName), Email: MailtoURI(email)}
}

// IsZero reports whether no contact information is set.
func (c ContactPoint) IsZero() bool {
	return c.FullName == "" && c.Email == "" && c.UID == "" && c.URL == ""
}

// Validate checks that the contact point can be published.
func (c ContactPoint) Validate() error {
	if c.Email == "" || c.Email == "mailto:" {
		return errors.NewValidationError("contact_point.email", c.Email, "contact point email is required")
	}
	if c.UID != "" && !IsAbsoluteURI(c.UID) {
		return errors.NewValidationError("contact_point.uid", c.UID, "must be an absolute URI")
	}
	return nil
}

// MailtoURI prefixes an email address with mailto: unless it already has it.
func MailtoURI(email string) string {
	email = strings.TrimSpace(email)
	if email == "" || strings.HasPrefix(email, "mailto:") {
		return email
	}
	return "mailto:" + email
}
