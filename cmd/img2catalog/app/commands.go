package app

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Health-RI/img2catalog/internal/cmd/output"
	"github.com/Health-RI/img2catalog/internal/fdp"
	"github.com/Health-RI/img2catalog/internal/sparql"
	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
	"github.com/Health-RI/img2catalog/pkg/pipeline"
	"github.com/Health-RI/img2catalog/pkg/publisher"
	"github.com/Health-RI/img2catalog/pkg/reconciler"
)

const formatHelp = "RDF serialization: turtle, nt, nquads or json-ld"

// NewDCATCommand creates the dcat command.
func (a *App) NewDCATCommand() *cobra.Command {
	var outputPath, format string
	cmd := &cobra.Command{
		Use:   "dcat",
		Short: "Extract the metadata of all projects and write them as a catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			summary, err := p.Export(cmd.Context(), &buf, format)
			if err != nil {
				return err
			}
			if err := a.write(cmd, outputPath, buf.Bytes()); err != nil {
				return err
			}
			a.logSummary(summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "destination file, stdout when not set")
	cmd.Flags().StringVarP(&format, "format", "f", constants.DefaultFormat, formatHelp)
	return cmd
}

// NewProjectCommand creates the project command.
func (a *App) NewProjectCommand() *cobra.Command {
	var outputPath, format string
	cmd := &cobra.Command{
		Use:   "project <project-id>",
		Short: "Extract the metadata of a single project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.pipeline()
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := p.ExportProject(cmd.Context(), args[0], &buf, format); err != nil {
				return err
			}
			return a.write(cmd, outputPath, buf.Bytes())
		},
	}
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "destination file, stdout when not set")
	cmd.Flags().StringVarP(&format, "format", "f", constants.DefaultFormat, formatHelp)
	return cmd
}

// fdpFlags holds the flags of the fdp command.
type fdpFlags struct {
	url        string
	username   string
	password   string
	catalog    string
	sparql     string
	format     string
	reportPath string
}

// NewFDPCommand creates the fdp command.
func (a *App) NewFDPCommand() *cobra.Command {
	var f fdpFlags
	cmd := &cobra.Command{
		Use:   "fdp",
		Short: "Extract the metadata of all projects and publish them to a FAIR Data Point",
		Long: `Publishes every catalogued project to a FAIR Data Point.

When a SPARQL endpoint is available, datasets published by earlier runs are
updated in place; without one every dataset is created as a new record.
Failed records are listed in the summary and can be retried by running
the command again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runFDP(cmd, f)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&f.url, "fdp", "", "URL of the FDP to push datasets to (env "+constants.EnvFDP+")")
	flags.StringVar(&f.username, "fdp-username", "", "FDP username (env "+constants.EnvFDPUser+")")
	flags.StringVar(&f.password, "fdp-password", "", "FDP password (env "+constants.EnvFDPPass+")")
	flags.StringVar(&f.catalog, "catalog", "", "catalog URI the datasets are placed in (default fdp.catalog from the config file)")
	flags.StringVar(&f.sparql, "sparql", "", "SPARQL endpoint of the FDP, used to find datasets to update (env "+constants.EnvSPARQLEndpoint+")")
	flags.StringVar(&f.format, "format", "", "summary format: table, json, yaml (auto-detected when not set)")
	flags.StringVar(&f.reportPath, "report", "", "write a Markdown run report to this file")
	return cmd
}

func (a *App) runFDP(cmd *cobra.Command, f fdpFlags) error {
	format, err := output.ParseFormat(f.format)
	if err != nil {
		return err
	}

	if f.catalog != "" {
		a.run.Publish.Container = f.catalog
	}
	if a.run.Publish.Container == "" {
		return errors.NewConfigurationError("fdp.catalog", "no catalog URI set: use --catalog or fdp.catalog in the config file", nil)
	}

	sink, err := a.fdpSink(f)
	if err != nil {
		return err
	}
	opts := []pipeline.Option{pipeline.WithSink(sink)}
	if q := a.sparqlQuerier(f); q != nil {
		opts = append(opts, pipeline.WithQuerier(q))
	}

	p, err := a.pipeline(opts...)
	if err != nil {
		return err
	}

	summary, runErr := p.Publish(cmd.Context())
	if summary == nil {
		return runErr
	}
	a.logSummary(summary)

	if err := output.WriteSummary(cmd.OutOrStdout(), summary, output.DetectFormat(string(format))); err != nil {
		return err
	}
	if f.reportPath != "" {
		if err := writeReport(f.reportPath, summary); err != nil {
			a.logger.Error().Err(err).Str("report", f.reportPath).Msg("Cannot write run report")
		}
	}
	return runErr
}

func (a *App) fdpSink(f fdpFlags) (publisher.Sink, error) {
	if a.sink != nil {
		return a.sink, nil
	}
	env := a.config.Env
	client, err := fdp.New(fdp.Config{
		URL:      firstNonEmpty(f.url, env.FDP),
		Email:    firstNonEmpty(f.username, env.FDPUser),
		Password: firstNonEmpty(f.password, env.FDPPass),
	}, a.transportOptions()...)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// sparqlQuerier returns the injected querier, or a client for the
// configured endpoint, or nil for create-only publishing.
func (a *App) sparqlQuerier(f fdpFlags) reconciler.Querier {
	if a.querier != nil {
		return a.querier
	}
	endpoint := firstNonEmpty(f.sparql, a.config.Env.SPARQL)
	if endpoint == "" {
		return nil
	}
	client, err := sparql.New(endpoint, &transport.NoAuth{}, a.transportOptions()...)
	if err != nil {
		a.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("Invalid SPARQL endpoint, publishing in create-only mode")
		return nil
	}
	return client
}

// pipeline builds a pipeline over the current source and run configuration.
func (a *App) pipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	src, err := a.Source()
	if err != nil {
		return nil, err
	}
	return pipeline.New(a.run, src, opts...)
}

// write sends data to path, or to the command output when path is empty.
func (a *App) write(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		a.logger.Debug().Msg("Sending output to stdout")
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	a.logger.Debug().Str("output", path).Msg("Writing output to file")
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (a *App) logSummary(s *pipeline.Summary) {
	event := a.logger.Info()
	if s.HasFailures() {
		event = a.logger.Warn()
	}
	event.Str("run_id", s.RunID).Msg("Run finished: " + s.String())
}

func writeReport(path string, s *pipeline.Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := output.WriteReport(file, s); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{annotationNoRunConfig: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", constants.AppName, a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
				cmd.Printf("  formats:  %v\n", graph.Formats())
			}
		},
	}
}
