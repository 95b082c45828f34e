// Package app wires the img2catalog CLI: configuration loading, logging,
// the XNAT source and the remote store clients. Commands receive their
// dependencies from the App, which tests replace through options.
package app

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/internal/xnat"
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/publisher"
	"github.com/Health-RI/img2catalog/pkg/reconciler"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// App represents the img2catalog application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// CLI configuration: flags, environment and logging
	config *Config

	// Run configuration read from the TOML file, loaded before each command
	run *config.Config

	logger *zerolog.Logger
	stdout io.Writer

	// Injected collaborators; nil means build the real client
	source  sources.Source
	sink    publisher.Sink
	querier reconciler.Querier
}

// New creates a new App instance with the given version information.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdout:  os.Stdout,
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = cfg

	logger, _ := NewLogger(cfg)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the CLI configuration.
func (a *App) Config() *Config {
	return a.config
}

// RunConfig returns the run configuration of the current command.
func (a *App) RunConfig() *config.Config {
	return a.run
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Source returns the project source, connecting to XNAT unless one was injected.
func (a *App) Source() (sources.Source, error) {
	if a.source != nil {
		return a.source, nil
	}
	if a.config.Server == "" {
		return nil, errors.NewConfigurationError("server",
			"XNAT server is required: use --server or set "+constants.EnvXNATPYHost+" or "+constants.EnvXNATHost, nil)
	}

	formID := ""
	if a.run != nil {
		formID = a.run.Forms.FormID
	}
	src, err := xnat.New(xnat.Config{
		Server:   a.config.Server,
		Username: a.config.Username,
		Password: a.config.Password,
		FormID:   formID,
	}, a.transportOptions()...)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("server", a.config.Server).Str("username", a.config.Username).Msg("Connecting to XNAT")
	a.source = src
	return src, nil
}

func (a *App) transportOptions() []transport.Option {
	return []transport.Option{transport.WithUserAgent(constants.AppName + "/" + a.version)}
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom CLI configuration.
func WithConfig(cfg *Config) Option {
	return func(a *App) error {
		a.config = cfg
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithOutput redirects command output, which defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) error {
		a.stdout = w
		return nil
	}
}

// WithSource sets the project source instead of connecting to XNAT.
func WithSource(src sources.Source) Option {
	return func(a *App) error {
		a.source = src
		return nil
	}
}

// WithSink sets the remote store instead of connecting to an FDP.
func WithSink(sink publisher.Sink) Option {
	return func(a *App) error {
		a.sink = sink
		return nil
	}
}

// WithQuerier sets the reconciliation query endpoint.
func WithQuerier(q reconciler.Querier) Option {
	return func(a *App) error {
		a.querier = q
		return nil
	}
}
