// Package reconciler decides, per dataset, whether the remote metadata
// store already holds a record for it. The remote store is the only state
// between runs: its identifiers are read once per run into an Index.
package reconciler

import (
	"context"
	"fmt"

	"github.com/Health-RI/img2catalog/internal/sparql"
	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

// Action is what the publisher does with a dataset.
type Action string

const (
	// ActionCreate writes a new record.
	ActionCreate Action = "create"
	// ActionUpdate replaces an existing record.
	ActionUpdate Action = "update"
)

// Decision is the reconciliation outcome for one dataset.
type Decision struct {
	Action    Action
	Reference string // Remote record, set for updates
}

// Index maps canonical identifiers to existing remote records.
type Index map[catalogs.DatasetID]string

// Decide returns UPDATE with the existing reference when the identifier is
// known, CREATE otherwise.
func (ix Index) Decide(id catalogs.DatasetID) Decision {
	if ref, ok := ix[id]; ok {
		return Decision{Action: ActionUpdate, Reference: ref}
	}
	return Decision{Action: ActionCreate}
}

// Querier runs SELECT queries against the remote store.
type Querier interface {
	Select(ctx context.Context, query string) (*sparql.Results, error)
}

// Reconciler builds the remote index for one catalog.
type Reconciler struct {
	querier  Querier
	catalog  string
	endpoint string
}

// New creates a reconciler for datasets in catalog. A nil querier puts
// the reconciler in create-only mode.
func New(q Querier, catalog string) *Reconciler {
	r := &Reconciler{querier: q, catalog: catalog}
	if c, ok := q.(interface{ Endpoint() string }); ok {
		r.endpoint = c.Endpoint()
	}
	return r
}

// Query returns the SELECT query listing every dataset of catalog together
// with its identifier.
func Query(catalog string) string {
	return fmt.Sprintf(`PREFIX dcterms: <http://purl.org/dc/terms/>
SELECT ?subject ?identifier WHERE {
  ?subject dcterms:identifier ?identifier ;
           dcterms:isPartOf %s .
}
ORDER BY ?subject`, sparql.IRI(catalog))
}

// Reconcile returns the remote index. It never fails: without a query
// endpoint, or when the query fails, it returns a nil index and a warning,
// and every dataset is created.
func (rc *Reconciler) Reconcile(ctx context.Context) (Index, []string) {
	logger := logging.FromContext(logging.WithStage(ctx, "reconcile"))

	if rc.querier == nil {
		w := "no query endpoint configured, running in create-only mode: existing records will be duplicated"
		logger.Warn().Msg(w)
		return nil, []string{w}
	}

	res, err := rc.querier.Select(ctx, Query(rc.catalog))
	if err != nil {
		rerr := errors.NewReconciliationError(rc.endpoint, err)
		w := fmt.Sprintf("%v, running in create-only mode", rerr)
		logger.Warn().Err(rerr).Msg("Reconciliation query failed, running in create-only mode")
		return nil, []string{w}
	}

	index := make(Index)
	var warnings []string
	for _, row := range res.Rows() {
		id, ref := row["identifier"], row["subject"]
		if id == "" || ref == "" {
			continue
		}
		key := catalogs.DatasetID(id)
		if existing, dup := index[key]; dup {
			if existing == ref {
				continue
			}
			w := fmt.Sprintf("identifier %s is held by both %s and %s, updating %s", id, existing, ref, existing)
			logger.Warn().Str("dataset", id).Str("kept", existing).Str("ignored", ref).Msg("Duplicate identifier in remote store")
			warnings = append(warnings, w)
			continue
		}
		index[key] = ref
	}

	logger.Info().Int("records", len(index)).Msg("Loaded remote index")
	return index, warnings
}
