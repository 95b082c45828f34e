// Package publisher writes mapped datasets to a remote metadata store.
// Every write is a create or an update decided by the reconciler; transient
// failures are retried with bounded exponential backoff and writes run on a
// bounded worker pool.
package publisher

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
	"github.com/Health-RI/img2catalog/pkg/logging"
	"github.com/Health-RI/img2catalog/pkg/reconciler"
)

// Sink is a remote metadata store.
type Sink interface {
	// Create adds a new record for subject to container and returns the
	// reference the store assigned to it.
	Create(ctx context.Context, container string, g *graph.Graph, subject string) (string, error)

	// Update replaces the record at reference.
	Update(ctx context.Context, reference string, g *graph.Graph, subject string) error
}

// Outcome is the result of one write.
type Outcome string

const (
	// OutcomeCreated means a new record was written.
	OutcomeCreated Outcome = "created"
	// OutcomeUpdated means an existing record was replaced.
	OutcomeUpdated Outcome = "updated"
	// OutcomeFailed means the write failed after retrying.
	OutcomeFailed Outcome = "failed"
	// OutcomeRejected means the store refused the write permanently.
	OutcomeRejected Outcome = "rejected"
)

// Item is one dataset to write.
type Item struct {
	Dataset  *catalogs.Dataset
	Graph    *graph.Graph
	Decision reconciler.Decision
}

// Result reports the outcome of one item.
type Result struct {
	ID        catalogs.DatasetID `json:"id" yaml:"id"`
	Outcome   Outcome            `json:"outcome" yaml:"outcome"`
	Reference string             `json:"reference,omitempty" yaml:"reference,omitempty"`
	Attempts  int                `json:"attempts" yaml:"attempts"`
	Err       error              `json:"-" yaml:"-"`
}

// Publisher writes items to a Sink.
type Publisher struct {
	sink        Sink
	container   string
	maxAttempts int
	maxElapsed  time.Duration
	concurrency int
	initial     time.Duration
	grace       time.Duration
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithInitialBackoff sets the delay before the first retry.
func WithInitialBackoff(d time.Duration) Option {
	return func(p *Publisher) {
		p.initial = d
	}
}

// WithGracePeriod bounds how long in-flight writes may run after the run
// is canceled.
func WithGracePeriod(d time.Duration) Option {
	return func(p *Publisher) {
		p.grace = d
	}
}

// New creates a publisher for the given sink and settings.
func New(sink Sink, cfg config.Publish, opts ...Option) *Publisher {
	p := &Publisher{
		sink:        sink,
		container:   cfg.Container,
		maxAttempts: max(cfg.MaxAttempts, 1),
		maxElapsed:  cfg.MaxElapsed,
		concurrency: max(cfg.Concurrency, 1),
		initial:     constants.RetryBackoff,
		grace:       constants.InFlightGracePeriod,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes every item and returns one result per attempted item, in
// input order. Once ctx is canceled no further writes are started; writes
// already running finish on a detached context. The returned error is
// non-nil only when the run was canceled before every item was attempted.
func (p *Publisher) Publish(ctx context.Context, items []Item) ([]Result, error) {
	ctx = logging.WithStage(ctx, "publish")
	results := make([]*Result, len(items))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, it := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r := p.write(ctx, it)
			results[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	out := make([]Result, 0, len(items))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	if len(out) < len(items) && ctx.Err() != nil {
		return out, errors.Join(errors.ErrCanceled, ctx.Err())
	}
	return out, nil
}

// write performs one create or update with retries. The write itself runs
// on a context that survives cancellation of ctx, but no new attempt is
// started once ctx is done.
func (p *Publisher) write(ctx context.Context, it Item) Result {
	id := it.Dataset.ID
	ctx = logging.WithDataset(ctx, id.String())
	logger := logging.FromContext(ctx)

	// The grace period starts when ctx is canceled, not when the write starts.
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	stop := context.AfterFunc(ctx, func() {
		time.AfterFunc(p.grace, cancel)
	})
	defer stop()

	var (
		attempts int
		ref      string
		lastErr  error
	)
	op := func() (string, error) {
		if attempts > 0 && ctx.Err() != nil {
			return "", backoff.Permanent(ctx.Err())
		}
		attempts++
		r, err := p.attempt(wctx, it)
		if err == nil {
			ref = r
			return r, nil
		}
		lastErr = err
		if r != "" {
			// Created but not published: retrying would create a duplicate.
			ref = r
			return r, backoff.Permanent(err)
		}
		if !errors.IsTransient(err) {
			return "", backoff.Permanent(err)
		}
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.initial
	b.MaxInterval = constants.MaxRetryBackoff
	retryOpts := []backoff.RetryOption{
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.maxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempts).Dur("retry_in", next).Msg("Write failed, retrying")
		}),
	}
	if p.maxElapsed > 0 {
		retryOpts = append(retryOpts, backoff.WithMaxElapsedTime(p.maxElapsed))
	}

	_, err := backoff.Retry(wctx, op, retryOpts...)

	res := Result{ID: id, Reference: ref, Attempts: attempts}
	if err == nil {
		res.Outcome = OutcomeCreated
		if it.Decision.Action == reconciler.ActionUpdate {
			res.Outcome = OutcomeUpdated
		}
		logger.Info().Str("outcome", string(res.Outcome)).Str("reference", ref).Msg("Published dataset")
		return res
	}

	if lastErr == nil {
		lastErr = err
	}
	res.Outcome = OutcomeFailed
	if attempts == 1 && !errors.IsTransient(lastErr) && ref == "" {
		res.Outcome = OutcomeRejected
	}
	res.Err = errors.NewPublishError(string(it.Decision.Action), id.String(), attempts, lastErr)
	logger.Error().Err(lastErr).Str("outcome", string(res.Outcome)).Int("attempts", attempts).Msg("Failed to publish dataset")
	return res
}

func (p *Publisher) attempt(ctx context.Context, it Item) (string, error) {
	subject := it.Dataset.URI
	switch it.Decision.Action {
	case reconciler.ActionUpdate:
		if err := p.sink.Update(ctx, it.Decision.Reference, it.Graph, subject); err != nil {
			return "", err
		}
		return it.Decision.Reference, nil
	default:
		return p.sink.Create(ctx, p.container, it.Graph, subject)
	}
}

// Tally counts results per outcome.
func Tally(results []Result) map[Outcome]int {
	counts := make(map[Outcome]int, 4)
	for _, r := range results {
		counts[r.Outcome]++
	}
	return counts
}
