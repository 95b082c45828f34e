package mapper

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/Health-RI/img2catalog/internal/utils/ptr"
	"github.com/Health-RI/img2catalog/internal/utils/text"
	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/forms"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// HealthRIName is the name of the Health-RI mapping.
const HealthRIName = "healthri-v2"

// HealthRI maps projects onto the Health-RI DCAT profile.
type HealthRI struct {
	cfg *config.Config
	now func() time.Time
}

// HealthRIOption configures the Health-RI mapping.
type HealthRIOption func(*HealthRI)

// WithClock sets the clock used for issued and modified timestamps.
func WithClock(now func() time.Time) HealthRIOption {
	return func(m *HealthRI) {
		m.now = now
	}
}

// NewHealthRI creates the mapping. cfg must have passed Validate.
func NewHealthRI(cfg *config.Config, opts ...HealthRIOption) *HealthRI {
	m := &HealthRI{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements Mapping.
func (m *HealthRI) Name() string {
	return HealthRIName
}

// MapDataset implements Mapping.
func (m *HealthRI) MapDataset(_ context.Context, in Input) (*catalogs.Dataset, []string, error) {
	p := in.Project
	var warnings []string

	if p.PI == nil || !p.PI.HasName() {
		return nil, nil, &errors.ValidationError{Record: p.ID, Field: "pi", Message: "cannot have empty name of PI"}
	}

	id, err := m.cfg.IdentifierScheme.Identify(p.URI)
	if err != nil {
		return nil, nil, err
	}

	now := m.now().UTC().Truncate(time.Second)
	d := &catalogs.Dataset{
		ID:          id,
		URI:         p.URI,
		ProjectID:   p.ID,
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(html.UnescapeString(p.Description)),
		Issued:      now,
		Modified:    now,
	}

	var fallback bool
	d.Keywords, fallback = m.keywords(in)
	if fallback {
		warnings = append(warnings, "project has no keywords, using fallback keywords")
	}

	d.Creators = m.creators(in)

	if pubs, ok := in.Fields.Agents("publisher"); ok {
		d.Publishers = pubs
	} else if len(m.cfg.Dataset.Publishers) > 0 {
		d.Publishers = append([]catalogs.Agent(nil), m.cfg.Dataset.Publishers...)
	} else {
		d.Publishers = []catalogs.Agent{m.cfg.Catalog.Publisher}
	}
	d.Publishers = catalogs.DedupeAgents(d.Publishers)

	if cp, ok := in.Fields.ContactPoint("contact_point"); ok {
		d.ContactPoint = cp
	} else {
		d.ContactPoint = m.cfg.Dataset.ContactPoint
	}

	m.optionalFields(d, in.Fields)

	if err := d.Validate(); err != nil {
		return nil, warnings, err
	}
	return d, warnings, nil
}

// MapCatalog implements Mapping.
func (m *HealthRI) MapCatalog(datasets []*catalogs.Dataset) (*catalogs.Catalog, error) {
	c := catalogs.NewCatalog(
		m.cfg.Catalog.URI,
		m.cfg.Catalog.Title,
		m.cfg.Catalog.Description,
		[]catalogs.Agent{m.cfg.Catalog.Publisher},
		datasets,
	)
	c.Homepage = m.cfg.Catalog.Publisher.Homepage
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// keywords merges project and form keywords, falling back to the
// configured keywords when both are empty.
func (m *HealthRI) keywords(in Input) ([]string, bool) {
	kw := append([]string(nil), in.Keywords...)
	if extra, ok := in.Fields.Strings("keyword"); ok {
		kw = append(kw, extra...)
	}
	kw = text.Dedupe(kw)
	if len(kw) == 0 && len(m.cfg.Dataset.FallbackKeywords) > 0 {
		return text.Dedupe(m.cfg.Dataset.FallbackKeywords), true
	}
	return kw, false
}

func (m *HealthRI) creators(in Input) []catalogs.Agent {
	p := in.Project
	agents := make([]catalogs.Agent, 0, 1+len(p.Investigators))
	agents = append(agents, m.personAgent(*p.PI))
	for _, inv := range p.Investigators {
		if !inv.HasName() {
			continue
		}
		agents = append(agents, m.personAgent(inv))
	}
	if extra, ok := in.Fields.Agents("creator"); ok {
		agents = append(agents, extra...)
	}
	return catalogs.DedupeAgents(agents)
}

// personAgent builds the agent of an investigator. Investigators known to
// the server are identified by their server record so that a PI who is
// also listed as investigator collapses into one creator.
func (m *HealthRI) personAgent(person sources.Person) catalogs.Agent {
	base := strings.TrimRight(m.cfg.Catalog.URI, "/")
	var identifier string
	if person.ID != "" {
		identifier = base + "/xapi/investigators/" + url.PathEscape(person.ID)
	} else {
		slug := strings.ReplaceAll(text.Fold(text.Squash(person.FirstName+" "+person.LastName)), " ", "-")
		identifier = base + "/investigators/" + url.PathEscape(slug)
	}
	a := catalogs.Agent{Name: person.FullName(), Identifier: identifier}
	if person.Email != "" {
		a.Email = catalogs.MailtoURI(person.Email)
	}
	return a
}

func (m *HealthRI) optionalFields(d *catalogs.Dataset, f forms.Fields) {
	def := m.cfg.Dataset

	d.Themes = listOr(f, "theme", def.Themes)
	d.License = stringOr(f, "license", def.License)
	d.AccessRights = stringOr(f, "access_rights", def.AccessRights)
	d.ApplicableLegislation = listOr(f, "applicable_legislation", def.ApplicableLegislation)
	d.Frequency = stringOr(f, "frequency", def.Frequency)
	d.Status = stringOr(f, "status", def.Status)
	d.HealthThemes = listOr(f, "health_theme", def.HealthThemes)
	d.LandingPage = stringOr(f, "landing_page", def.LandingPage)
	d.Purposes = listOr(f, "purpose", nil)
	d.LegalBasis = listOr(f, "legal_basis", nil)
	d.Documentation = listOr(f, "documentation", nil)
	d.ConformsTo = listOr(f, "conforms_to", nil)
	d.PopulationCoverage = stringOr(f, "population_coverage", "")

	for name, dst := range map[string]**int{
		"minimum_typical_age":          &d.MinimumTypicalAge,
		"maximum_typical_age":          &d.MaximumTypicalAge,
		"number_of_records":            &d.NumberOfRecords,
		"number_of_unique_individuals": &d.NumberOfUniqueIndividuals,
	} {
		if v, ok := f.Int(name); ok {
			*dst = ptr.Int(v)
		}
	}
}

func stringOr(f forms.Fields, name, fallback string) string {
	if v, ok := f.String(name); ok {
		return v
	}
	return fallback
}

func listOr(f forms.Fields, name string, fallback []string) []string {
	if v, ok := f.Strings(name); ok {
		return append([]string(nil), v...)
	}
	if len(fallback) == 0 {
		return nil
	}
	return append([]string(nil), fallback...)
}

// String describes the mapping for logs.
func (m *HealthRI) String() string {
	return fmt.Sprintf("%s (identifiers: %s)", HealthRIName, m.cfg.IdentifierScheme)
}
