package catalogs

import (
	"slices"
	"strings"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Catalog aggregates every dataset of one harvest run. Exactly one catalog
// is produced per run, after all datasets have been mapped.
type Catalog struct {
	URI         string      `json:"uri" yaml:"uri"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Publishers  []Agent     `json:"publishers" yaml:"publishers"`
	Homepage    string      `json:"homepage,omitempty" yaml:"homepage,omitempty"`
	Datasets    []DatasetID `json:"datasets" yaml:"datasets"`
}

// NewCatalog builds the catalog aggregate over the given datasets. Dataset
// identifiers are sorted so that repeated runs produce identical output.
func NewCatalog(uri, title, description string, publishers []Agent, datasets []*Dataset) *Catalog {
	ids := make([]DatasetID, 0, len(datasets))
	for _, d := range datasets {
		ids = append(ids, d.ID)
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return &Catalog{
		URI:         uri,
		Title:       title,
		Description: description,
		Publishers:  DedupeAgents(publishers),
		Datasets:    ids,
	}
}

// Contains reports whether the catalog references the dataset.
func (c *Catalog) Contains(id DatasetID) bool {
	_, found := slices.BinarySearch(c.Datasets, id)
	return found
}

// Validate checks the catalog-level fields.
func (c *Catalog) Validate() error {
	var errs []error
	if !IsAbsoluteURI(c.URI) {
		errs = append(errs, errors.NewValidationError("catalog.uri", c.URI, "must be an absolute URI"))
	}
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, errors.NewValidationError("catalog.title", c.Title, "is required"))
	}
	if strings.TrimSpace(c.Description) == "" {
		errs = append(errs, errors.NewValidationError("catalog.description", c.Description, "is required"))
	}
	if len(c.Publishers) == 0 {
		errs = append(errs, errors.NewValidationError("catalog.publisher", nil, "at least one publisher is required"))
	}
	for _, p := range c.Publishers {
		if err := p.Validate("catalog.publisher"); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
