// Package mapper turns filtered source projects and their resolved form
// fields into canonical datasets, and the datasets into the run catalog.
// Mappings are strategies so other target profiles can be added next to
// the Health-RI one.
package mapper

import (
	"context"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/forms"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// Input is everything a mapping needs for one project.
type Input struct {
	Project  *sources.Project
	Keywords []string     // Project keywords after inclusion filtering
	Fields   forms.Fields // Resolved supplemental fields
}

// Mapping maps projects to a target catalog profile.
type Mapping interface {
	// Name identifies the target profile.
	Name() string

	// MapDataset maps one project. Recoverable oddities are returned as
	// warnings; a dataset that fails validation is returned as a
	// ValidationError and no dataset.
	MapDataset(ctx context.Context, in Input) (*catalogs.Dataset, []string, error)

	// MapCatalog builds the catalog aggregate. It must only be called once
	// every dataset of the run has been mapped.
	MapCatalog(datasets []*catalogs.Dataset) (*catalogs.Catalog, error)
}
