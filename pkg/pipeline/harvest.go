package pipeline

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
	"github.com/Health-RI/img2catalog/pkg/logging"
	"github.com/Health-RI/img2catalog/pkg/mapper"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// Harvest is the mapped content of one run.
type Harvest struct {
	Catalog  *catalogs.Catalog
	Datasets []*catalogs.Dataset // Sorted by identifier
	Summary  *Summary
}

// Harvest fetches, filters, resolves and maps every project, then builds
// the catalog once all datasets are mapped. Per-project problems end up in
// the summary; configuration, authentication and cancellation errors abort.
func (p *Pipeline) Harvest(ctx context.Context) (*Harvest, error) {
	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	summary := newSummary(runID, time.Now().UTC())
	h, err := p.harvest(ctx, summary)
	summary.Finished = time.Now().UTC()
	return h, err
}

func (p *Pipeline) harvest(ctx context.Context, summary *Summary) (*Harvest, error) {
	logger := logging.FromContext(ctx)

	projects, fetchErrs, err := sources.FetchAll(logging.WithStage(ctx, StageFetch), p.source, p.cfg.Concurrency)
	if err != nil {
		return nil, err
	}
	summary.Fetched = len(projects)
	for _, ferr := range fetchErrs {
		summary.Failed++
		record := ""
		var fe *errors.FetchError
		if errors.As(ferr, &fe) {
			record = fe.Project
		}
		summary.fail(record, StageFetch, ferr)
	}

	included, excluded := p.filter.Apply(projects)
	for reason, n := range excluded {
		summary.Excluded[reason] += n
		summary.Skipped += n
	}
	logging.FromContext(logging.WithStage(ctx, StageFilter)).Info().
		Int("fetched", len(projects)).
		Int("included", len(included)).
		Int("skipped", summary.Skipped).
		Msg("Filtered projects")

	datasets, err := p.mapAll(ctx, included, summary)
	if err != nil {
		return nil, err
	}

	// Barrier: the catalog is only built from the complete dataset set.
	catalog, err := p.mapping.MapCatalog(datasets)
	if err != nil {
		return nil, err
	}
	summary.Mapped = len(datasets)
	logger.Info().Int("datasets", len(datasets)).Int("dropped", summary.Dropped).Msg("Mapped catalog")

	return &Harvest{Catalog: catalog, Datasets: datasets, Summary: summary}, nil
}

// mapAll resolves and maps projects on a bounded pool and returns the
// datasets sorted by identifier.
func (p *Pipeline) mapAll(ctx context.Context, projects []*sources.Project, summary *Summary) ([]*catalogs.Dataset, error) {
	var (
		mu       sync.Mutex
		datasets = make([]*catalogs.Dataset, 0, len(projects))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.cfg.Concurrency, 1))
	for _, proj := range projects {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			d, warnings, err := p.mapProject(logging.WithProject(gctx, proj.ID), proj)

			mu.Lock()
			defer mu.Unlock()
			summary.Warnings = append(summary.Warnings, warnings...)
			if err != nil {
				if errors.IsFatal(err) {
					return err
				}
				summary.Dropped++
				summary.fail(proj.ID, StageMap, err)
				return nil
			}
			datasets = append(datasets, d)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(errors.ErrCanceled, err)
	}

	slices.SortFunc(datasets, func(a, b *catalogs.Dataset) int {
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	slices.Sort(summary.Warnings)

	// Two projects sharing an identifier would overwrite each other remotely.
	kept := datasets[:0]
	for i, d := range datasets {
		if i > 0 && d.ID == datasets[i-1].ID {
			summary.Dropped++
			summary.fail(d.ProjectID, StageMap, errors.NewValidationError("identifier", d.ID, "identifier already used by project "+datasets[i-1].ProjectID))
			continue
		}
		kept = append(kept, d)
	}
	return kept, nil
}

// mapProject resolves and maps one project. Warnings are prefixed with the
// project identifier.
func (p *Pipeline) mapProject(ctx context.Context, proj *sources.Project) (*catalogs.Dataset, []string, error) {
	logger := logging.FromContext(ctx)

	fields, resolveErrs := p.resolver.Resolve(proj)
	var warnings []string
	for _, rerr := range resolveErrs {
		logging.FromContext(logging.WithStage(ctx, StageResolve)).Warn().Err(rerr).Msg("Form field rejected")
		warnings = append(warnings, rerr.Error())
	}

	d, mapWarnings, err := p.mapping.MapDataset(logging.WithStage(ctx, StageMap), mapper.Input{
		Project:  proj,
		Keywords: p.filter.Keywords(proj),
		Fields:   fields,
	})
	for _, w := range mapWarnings {
		logger.Warn().Msg(w)
		warnings = append(warnings, proj.ID+": "+w)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Dropping project")
		return nil, warnings, err
	}
	return d, warnings, nil
}

// Export harvests and writes the catalog graph, including every dataset,
// to w in the given format.
func (p *Pipeline) Export(ctx context.Context, w io.Writer, format string) (*Summary, error) {
	ser, err := graph.Lookup(format)
	if err != nil {
		return nil, err
	}
	h, err := p.Harvest(ctx)
	if err != nil {
		return nil, err
	}
	if err := ser.Serialize(w, graph.FromCatalog(h.Catalog, h.Datasets)); err != nil {
		return h.Summary, err
	}
	return h.Summary, nil
}

// ExportProject writes the dataset graph of one project. Projects the
// filter excludes, private ones included, are refused.
func (p *Pipeline) ExportProject(ctx context.Context, id string, w io.Writer, format string) error {
	ser, err := graph.Lookup(format)
	if err != nil {
		return err
	}
	ctx = logging.WithProject(ctx, id)

	proj, err := p.source.FetchProject(ctx, id)
	if err != nil {
		return err
	}
	if decision := p.filter.Decide(proj); !decision.Included {
		return &errors.ValidationError{Record: id, Field: "project", Value: decision.Reason, Message: "project is excluded from the catalog (" + decision.Reason.String() + ")"}
	}

	d, _, err := p.mapProject(ctx, proj)
	if err != nil {
		return err
	}
	return ser.Serialize(w, graph.FromDataset(d, ""))
}
