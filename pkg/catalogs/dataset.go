// Package catalogs defines the canonical catalog records produced by a
// harvest: datasets, the agents that created or publish them, their
// contact point, and the single catalog that aggregates them.
package catalogs

import (
	"fmt"
	"strings"
	"time"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Dataset is the canonical catalog record derived from one source project.
// It is created by a mapping and never mutated afterwards.
type Dataset struct {
	ID        DatasetID `json:"id" yaml:"id"`                 // Canonical identifier, the reconciliation key
	URI       string    `json:"uri" yaml:"uri"`               // Subject IRI of the dataset in an exported graph
	ProjectID string    `json:"project_id" yaml:"project_id"` // Source project identifier

	// Core descriptive fields
	Title        string       `json:"title" yaml:"title"`
	Description  string       `json:"description" yaml:"description"` // HTML-unescaped
	Keywords     []string     `json:"keywords" yaml:"keywords"`
	Creators     []Agent      `json:"creators" yaml:"creators"`
	Publishers   []Agent      `json:"publishers" yaml:"publishers"`
	ContactPoint ContactPoint `json:"contact_point" yaml:"contact_point"`

	// Access and classification
	Themes                []string `json:"themes,omitempty" yaml:"themes,omitempty"`
	License               string   `json:"license,omitempty" yaml:"license,omitempty"`
	AccessRights          string   `json:"access_rights,omitempty" yaml:"access_rights,omitempty"`
	ApplicableLegislation []string `json:"applicable_legislation,omitempty" yaml:"applicable_legislation,omitempty"`
	Frequency             string   `json:"frequency,omitempty" yaml:"frequency,omitempty"`
	Status                string   `json:"status,omitempty" yaml:"status,omitempty"`
	HealthThemes          []string `json:"health_themes,omitempty" yaml:"health_themes,omitempty"`
	Purposes              []string `json:"purposes,omitempty" yaml:"purposes,omitempty"`
	LegalBasis            []string `json:"legal_basis,omitempty" yaml:"legal_basis,omitempty"`
	Documentation         []string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	ConformsTo            []string `json:"conforms_to,omitempty" yaml:"conforms_to,omitempty"`
	LandingPage           string   `json:"landing_page,omitempty" yaml:"landing_page,omitempty"`

	// Population description
	MinimumTypicalAge         *int   `json:"minimum_typical_age,omitempty" yaml:"minimum_typical_age,omitempty"`
	MaximumTypicalAge         *int   `json:"maximum_typical_age,omitempty" yaml:"maximum_typical_age,omitempty"`
	NumberOfRecords           *int   `json:"number_of_records,omitempty" yaml:"number_of_records,omitempty"`
	NumberOfUniqueIndividuals *int   `json:"number_of_unique_individuals,omitempty" yaml:"number_of_unique_individuals,omitempty"`
	PopulationCoverage        string `json:"population_coverage,omitempty" yaml:"population_coverage,omitempty"`

	// Timestamps
	Issued   time.Time `json:"issued,omitzero" yaml:"issued,omitempty"`
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitempty"`
}

// Validate checks every constraint a dataset must satisfy before it can be
// published. All violations are returned joined; nil means valid.
func (d *Dataset) Validate() error {
	var errs []error
	add := func(field, message string, value any) {
		errs = append(errs, &errors.ValidationError{Record: d.ID.String(), Field: field, Value: value, Message: message})
	}

	if d.ID == "" {
		add("identifier", "identifier is required", d.ID)
	}
	if !IsAbsoluteURI(d.URI) {
		add("uri", "dataset URI must be absolute", d.URI)
	}
	if strings.TrimSpace(d.Title) == "" {
		add("title", "title is required", d.Title)
	}
	if strings.TrimSpace(d.Description) == "" {
		add("description", "description is required", d.Description)
	}
	if len(d.Creators) == 0 {
		add("creator", "at least one creator is required", nil)
	}
	for i, a := range d.Creators {
		if err := a.Validate(fmt.Sprintf("creator[%d]", i)); err != nil {
			add(fmt.Sprintf("creator[%d]", i), messageOf(err), a)
		}
	}
	for i, a := range d.Publishers {
		if err := a.Validate(fmt.Sprintf("publisher[%d]", i)); err != nil {
			add(fmt.Sprintf("publisher[%d]", i), messageOf(err), a)
		}
	}
	if err := d.ContactPoint.Validate(); err != nil {
		add("contact_point", messageOf(err), d.ContactPoint)
	}
	if d.AccessRights != "" && !IsAbsoluteURI(d.AccessRights) {
		add("access_rights", "must be an absolute URI", d.AccessRights)
	}
	if d.License != "" && !IsAbsoluteURI(d.License) {
		add("license", "must be an absolute URI", d.License)
	}
	for field, values := range map[string][]string{
		"theme":                  d.Themes,
		"applicable_legislation": d.ApplicableLegislation,
		"health_theme":           d.HealthThemes,
		"conforms_to":            d.ConformsTo,
	} {
		for _, v := range values {
			if !IsAbsoluteURI(v) {
				add(field, "must be an absolute URI", v)
			}
		}
	}
	if d.MinimumTypicalAge != nil && d.MaximumTypicalAge != nil && *d.MinimumTypicalAge > *d.MaximumTypicalAge {
		add("minimum_typical_age", "exceeds maximum typical age", *d.MinimumTypicalAge)
	}

	return errors.Join(errs...)
}

func messageOf(err error) string {
	var v *errors.ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	return err.Error()
}
