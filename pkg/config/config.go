// Package config holds the run configuration threaded through every
// pipeline stage. It is a plain value: the CLI layer builds it from the
// config file, the environment and flags, and nothing reads global state.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Config is the complete configuration of one harvest run.
type Config struct {
	Selection Selection // Which projects are catalogued
	Catalog   Catalog   // Catalog-level metadata
	Dataset   Dataset   // Dataset-level defaults
	Forms     Forms     // Supplemental form settings
	Publish   Publish   // Remote store behaviour

	// IdentifierScheme selects how dataset identifiers are derived.
	IdentifierScheme catalogs.IdentifierScheme

	// Concurrency bounds the fetch and map worker pools.
	Concurrency int
}

// Selection configures the inclusion filter.
type Selection struct {
	OptIn       string // Only projects carrying this keyword are included
	OptOut      string // Projects carrying this keyword are excluded
	RemoveOptIn bool   // Drop the opt-in keyword from published keywords
}

// Catalog holds the catalog-level metadata.
type Catalog struct {
	URI         string         // Defaults to the source server URL
	Title       string
	Description string
	Publisher   catalogs.Agent
}

// Dataset holds the defaults applied to every dataset.
type Dataset struct {
	Publishers            []catalogs.Agent
	ContactPoint          catalogs.ContactPoint
	FallbackKeywords      []string
	Themes                []string
	License               string
	AccessRights          string
	ApplicableLegislation []string
	Frequency             string
	Status                string
	HealthThemes          []string
	LandingPage           string
}

// Forms configures supplemental form resolution.
type Forms struct {
	FormID         string // Identifier of the custom form on the server
	DefinitionFile string // YAML field definition, empty for the built-in one
}

// Publish configures writes to the remote metadata store.
type Publish struct {
	Container   string        // Catalog URI datasets are attached to
	MaxAttempts int           // Attempts per write, including the first
	MaxElapsed  time.Duration // Upper bound on time spent retrying one write
	Concurrency int           // Concurrent writes
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Selection: Selection{
			RemoveOptIn: true,
		},
		IdentifierScheme: catalogs.IdentifierSchemeURI,
		Concurrency:      constants.MaxConcurrentRequests,
		Publish: Publish{
			MaxAttempts: constants.MaxRetries,
			MaxElapsed:  constants.MaxRetryElapsed,
			Concurrency: constants.MaxConcurrentWrites,
		},
	}
}

// Option is a function that configures a Config.
type Option func(*Config)

// Apply applies the given options to the configuration.
func (c *Config) Apply(opts ...Option) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithOptIn sets the opt-in keyword.
func WithOptIn(keyword string) Option {
	return func(c *Config) {
		c.Selection.OptIn = strings.TrimSpace(keyword)
	}
}

// WithOptOut sets the opt-out keyword.
func WithOptOut(keyword string) Option {
	return func(c *Config) {
		c.Selection.OptOut = strings.TrimSpace(keyword)
	}
}

// WithCatalogURI sets the catalog URI.
func WithCatalogURI(uri string) Option {
	return func(c *Config) {
		c.Catalog.URI = uri
	}
}

// WithContainer sets the remote catalog datasets are attached to.
func WithContainer(uri string) Option {
	return func(c *Config) {
		c.Publish.Container = uri
	}
}

// Validate checks the settings needed to harvest and map. Publishing
// settings are checked separately by ValidatePublish.
func (c *Config) Validate() error {
	var errs []error
	bad := func(key, format string, args ...any) {
		errs = append(errs, errors.NewConfigurationError(key, fmt.Sprintf(format, args...), nil))
	}

	if c.Selection.OptIn != "" && c.Selection.OptIn == c.Selection.OptOut {
		bad("img2catalog.optin", "opt-in and opt-out keyword are both %q", c.Selection.OptIn)
	}
	if !catalogs.IsAbsoluteURI(c.Catalog.URI) {
		bad("catalog.uri", "must be an absolute URI, got %q", c.Catalog.URI)
	}
	if strings.TrimSpace(c.Catalog.Title) == "" {
		bad("catalog.title", "is required")
	}
	if strings.TrimSpace(c.Catalog.Description) == "" {
		bad("catalog.description", "is required")
	}
	if err := c.Catalog.Publisher.Validate("catalog.publisher"); err != nil {
		bad("catalog.publisher", "%v", err)
	}
	for i, p := range c.Dataset.Publishers {
		if err := p.Validate("dataset.publisher"); err != nil {
			bad(fmt.Sprintf("dataset.publisher[%d]", i), "%v", err)
		}
	}
	if err := c.Dataset.ContactPoint.Validate(); err != nil {
		bad("dataset.contact_point", "%v", err)
	}
	if _, err := catalogs.ParseIdentifierScheme(string(c.IdentifierScheme)); err != nil {
		errs = append(errs, err)
	}
	if c.Concurrency < 1 {
		bad("concurrency", "must be at least 1, got %d", c.Concurrency)
	}

	return errors.Join(errs...)
}

// ValidatePublish checks the settings needed to write to a remote store.
func (c *Config) ValidatePublish() error {
	var errs []error
	if !catalogs.IsAbsoluteURI(c.Publish.Container) {
		errs = append(errs, errors.NewConfigurationError("fdp.catalog", fmt.Sprintf("must be an absolute URI, got %q", c.Publish.Container), nil))
	}
	if c.Publish.MaxAttempts < 1 {
		errs = append(errs, errors.NewConfigurationError("fdp.max_attempts", "must be at least 1", nil))
	}
	if c.Publish.MaxElapsed < 0 {
		errs = append(errs, errors.NewConfigurationError("fdp.max_elapsed", "must be non-negative", nil))
	}
	if c.Publish.Concurrency < 1 {
		errs = append(errs, errors.NewConfigurationError("fdp.concurrency", "must be at least 1", nil))
	}
	return errors.Join(errs...)
}
