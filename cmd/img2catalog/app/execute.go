package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

// annotationNoRunConfig marks commands that run without the TOML configuration.
const annotationNoRunConfig = "img2catalog/no-run-config"

// Execute runs the img2catalog CLI application with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(a.stdout)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     constants.AppName,
		Short:   "Publish XNAT project metadata as a DCAT catalog",
		Version: a.version,
		Long: `img2catalog harvests project metadata from an XNAT server and maps it
to DCAT datasets following the Health-RI metadata model.

The catalog can be written to a file or stdout in an RDF serialization,
or published to a FAIR Data Point, where records from earlier runs are
updated instead of duplicated.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.config.Server, "server", "s", "",
		"URI of the XNAT server, including http:// or https:// (env "+constants.EnvXNATPYHost+" or "+constants.EnvXNATHost+")")
	flags.StringVarP(&a.config.Username, "username", "u", "", "XNAT username (env "+constants.EnvXNATUser+")")
	flags.StringVarP(&a.config.Password, "password", "p", "", "XNAT password (env "+constants.EnvXNATPass+")")
	flags.StringVarP(&a.config.ConfigFile, "config", "c", "", "config file (default is "+constants.DefaultConfigPath+")")
	flags.BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	flags.StringVar(&a.config.LogLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	flags.StringVarP(&a.config.LogFile, "logfile", "l", constants.DefaultLogFile, "path of the log file, empty to disable")
	flags.StringVar(&a.config.OptIn, "optin", "", "opt-in keyword: only projects with this keyword are included")
	flags.StringVar(&a.config.OptOut, "optout", "", "opt-out keyword: projects with this keyword are excluded")
	rootCmd.MarkFlagsMutuallyExclusive("optin", "optout")

	rootCmd.SetVersionTemplate(constants.AppName + " {{.Version}}\n")

	rootCmd.AddCommand(a.NewDCATCommand())
	rootCmd.AddCommand(a.NewProjectCommand())
	rootCmd.AddCommand(a.NewFDPCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand runs before every command: it layers the environment under
// the flags, rebuilds the logger and loads the run configuration.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	a.config.ApplyEnvironment(cmd.Flags().Changed)

	logger, fileErr := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	if fileErr != nil {
		a.logger.Warn().Err(fileErr).Str("logfile", a.config.LogFile).Msg("Cannot open log file, logging to console only")
	}

	if cmd.Annotations[annotationNoRunConfig] != "" {
		return nil
	}

	a.logger.Info().Str("version", a.version).Str("command", cmd.Name()).Msg("======= img2catalog new run ========")

	run, source, err := LoadRunConfig(a.config.ConfigFile, a.config.Server)
	if err != nil {
		return err
	}
	if source == ExampleConfigSource {
		a.logger.Warn().Msg("No configuration file found or specified! Using example configuration")
	} else {
		a.logger.Info().Str("config", string(source)).Msg("Using configuration file")
	}

	if a.config.OptIn != "" || a.config.OptOut != "" {
		run.Selection.OptIn = a.config.OptIn
		run.Selection.OptOut = a.config.OptOut
	}
	a.run = run
	return nil
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
