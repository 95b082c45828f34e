package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
	"github.com/Health-RI/img2catalog/pkg/logging"
	"github.com/Health-RI/img2catalog/pkg/publisher"
	"github.com/Health-RI/img2catalog/pkg/reconciler"
)

// loginer is implemented by sinks that can verify credentials up front.
type loginer interface {
	Login(ctx context.Context) error
}

// Publish harvests, reconciles against the remote store and writes every
// dataset. Configuration and credentials are checked before the harvest,
// so a fatal error never leaves a partial write behind. The summary is
// returned even when the run is canceled part way through publishing.
func (p *Pipeline) Publish(ctx context.Context) (*Summary, error) {
	if p.sink == nil {
		return nil, errors.NewConfigurationError("fdp", "no remote store configured", nil)
	}
	if err := p.cfg.ValidatePublish(); err != nil {
		return nil, err
	}

	runID := logging.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.FromContext(ctx)

	if l, ok := p.sink.(loginer); ok {
		if err := l.Login(ctx); err != nil {
			return nil, err
		}
	}

	h, err := p.Harvest(ctx)
	if err != nil {
		return nil, err
	}
	summary := h.Summary
	defer func() { summary.Finished = time.Now().UTC() }()

	container := p.cfg.Publish.Container
	index, warnings := reconciler.New(p.querier, container).Reconcile(ctx)
	summary.Warnings = append(summary.Warnings, warnings...)
	summary.CreateOnly = index == nil

	items := make([]publisher.Item, 0, len(h.Datasets))
	for _, d := range h.Datasets {
		items = append(items, publisher.Item{
			Dataset:  d,
			Graph:    graph.FromDataset(d, container),
			Decision: index.Decide(d.ID),
		})
	}

	results, err := publisher.New(p.sink, p.cfg.Publish, p.publishOpts...).Publish(ctx, items)
	summary.addResults(results)
	summary.NotAttempted = len(items) - len(results)
	if err != nil {
		summary.warn("run canceled, %d datasets were not published", summary.NotAttempted)
		logger.Warn().Int("not_attempted", summary.NotAttempted).Msg("Publishing canceled")
		return summary, err
	}

	logger.Info().
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("failed", summary.Failed).
		Msg("Published catalog")
	return summary, nil
}
