// Package pipeline runs a harvest end to end:
//
//	fetch -> filter -> resolve -> map -> (catalog) -> reconcile -> publish
//
// or, as an alternative sink, serializes the catalog graph. Every stage
// takes its settings from one config.Config value, and the run ends with a
// Summary of what happened to every project.
//
// Example usage:
//
//	p, err := pipeline.New(cfg, xnatClient,
//	    pipeline.WithSink(fdpClient),
//	    pipeline.WithQuerier(sparqlClient),
//	)
//	summary, err := p.Publish(ctx)
package pipeline

import (
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/filter"
	"github.com/Health-RI/img2catalog/pkg/forms"
	"github.com/Health-RI/img2catalog/pkg/mapper"
	"github.com/Health-RI/img2catalog/pkg/publisher"
	"github.com/Health-RI/img2catalog/pkg/reconciler"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// Pipeline wires the stages of one run together.
type Pipeline struct {
	cfg      *config.Config
	source   sources.Source
	filter   *filter.Filter
	resolver *forms.Resolver
	mapping  mapper.Mapping

	querier     reconciler.Querier
	sink        publisher.Sink
	publishOpts []publisher.Option
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMapping replaces the default Health-RI mapping.
func WithMapping(m mapper.Mapping) Option {
	return func(p *Pipeline) {
		p.mapping = m
	}
}

// WithResolver replaces the resolver built from the configured definition.
func WithResolver(r *forms.Resolver) Option {
	return func(p *Pipeline) {
		p.resolver = r
	}
}

// WithSink sets the remote store Publish writes to.
func WithSink(s publisher.Sink) Option {
	return func(p *Pipeline) {
		p.sink = s
	}
}

// WithQuerier sets the query endpoint used for reconciliation. Without one
// Publish runs in create-only mode.
func WithQuerier(q reconciler.Querier) Option {
	return func(p *Pipeline) {
		p.querier = q
	}
}

// WithPublisherOptions passes options through to the publisher.
func WithPublisherOptions(opts ...publisher.Option) Option {
	return func(p *Pipeline) {
		p.publishOpts = append(p.publishOpts, opts...)
	}
}

// New validates cfg and builds a pipeline reading from src. The form
// definition is loaded here, once per run.
func New(cfg *config.Config, src sources.Source, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.NewConfigurationError("config", "configuration is required", nil)
	}
	if src == nil {
		return nil, errors.NewConfigurationError("source", "a project source is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		source: src,
		filter: filter.New(cfg.Selection),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.resolver == nil {
		def, err := loadDefinition(cfg.Forms)
		if err != nil {
			return nil, err
		}
		p.resolver = forms.New(def)
	}
	if p.mapping == nil {
		p.mapping = mapper.NewHealthRI(cfg)
	}
	return p, nil
}

func loadDefinition(f config.Forms) (*forms.Definition, error) {
	if f.DefinitionFile != "" {
		return forms.LoadFile(f.DefinitionFile)
	}
	return forms.Default()
}
