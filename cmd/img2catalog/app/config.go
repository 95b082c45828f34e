package app

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Health-RI/img2catalog/internal/embedded"
	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Environment holds the settings read from environment variables.
type Environment struct {
	XNATPYHost string `env:"XNATPY_HOST"`
	XNATHost   string `env:"XNAT_HOST"`
	XNATUser   string `env:"XNAT_USER"`
	XNATPass   string `env:"XNAT_PASS"`

	FDP     string `env:"IMG2CATALOG_FDP"`
	FDPUser string `env:"IMG2CATALOG_FDP_USER"`
	FDPPass string `env:"IMG2CATALOG_FDP_PASS"`
	SPARQL  string `env:"IMG2CATALOG_SPARQL_ENDPOINT"`

	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"auto"`
	LogOutput string `env:"LOG_OUTPUT" envDefault:"stderr"`
}

// Config holds the CLI configuration: global flags layered over the
// environment. The catalog settings live in the TOML file and are loaded
// separately by LoadRunConfig.
type Config struct {
	// XNAT connection
	Server   string
	Username string
	Password string

	// Config file
	ConfigFile string

	// Selection overrides
	OptIn  string
	OptOut string

	// Logging configuration
	Verbose   bool
	Quiet     bool
	LogLevel  string
	LogFile   string
	LogFormat string
	LogOutput string

	Env Environment
}

// LoadConfig loads .env files and the environment. Flags are applied on
// top by ApplyEnvironment once cobra has parsed them.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	var e Environment
	if err := env.Parse(&e); err != nil {
		return nil, errors.NewConfigurationError("environment", "invalid environment", err)
	}

	return &Config{
		Env:       e,
		LogFormat: e.LogFormat,
		LogOutput: e.LogOutput,
	}, nil
}

// ApplyEnvironment fills settings not given as flags from the environment.
// changed reports whether a flag was set on the command line.
func (c *Config) ApplyEnvironment(changed func(name string) bool) {
	if !changed("server") {
		c.Server = firstNonEmpty(c.Server, c.Env.XNATPYHost, c.Env.XNATHost)
	}

	usernameFromEnv := !changed("username") && c.Env.XNATUser != ""
	passwordFromEnv := !changed("password") && c.Env.XNATPass != ""
	if usernameFromEnv {
		c.Username = c.Env.XNATUser
	}
	if passwordFromEnv {
		c.Password = c.Env.XNATPass
	}
	// A password from the environment only belongs to a username from the environment
	if passwordFromEnv && !usernameFromEnv {
		c.Password = ""
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env, and neither overrides the real environment.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// RunConfigSource describes where the run configuration came from.
type RunConfigSource string

// ExampleConfigSource marks the built-in example configuration.
const ExampleConfigSource RunConfigSource = "built-in example configuration"

// LoadRunConfig reads the TOML run configuration. An explicit path must
// exist; otherwise ~/.img2catalog/config.toml is used when present, and the
// built-in example configuration as a last resort. server is the default
// catalog URI.
func LoadRunConfig(path, server string) (*config.Config, RunConfigSource, error) {
	v := viper.New()
	v.SetConfigType("toml")

	var source RunConfigSource
	switch {
	case path != "":
		if _, err := os.Stat(path); err != nil {
			return nil, "", errors.NewConfigurationError("config", fmt.Sprintf("configuration file does not exist at %s", path), err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.NewConfigurationError("config", "cannot read "+path, err)
		}
		source = RunConfigSource(path)
	case homeConfigPath() != "":
		home := homeConfigPath()
		v.SetConfigFile(home)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", errors.NewConfigurationError("config", "cannot read "+home, err)
		}
		source = RunConfigSource(home)
	default:
		if err := v.ReadConfig(bytes.NewReader(embedded.ExampleConfig)); err != nil {
			return nil, "", errors.NewConfigurationError("config", "cannot read example configuration", err)
		}
		source = ExampleConfigSource
	}

	cfg, err := runConfigFrom(v, server)
	if err != nil {
		return nil, "", err
	}
	return cfg, source, nil
}

// homeConfigPath returns the per-user config file if it exists.
func homeConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, strings.TrimPrefix(constants.DefaultConfigPath, "~/"))
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func runConfigFrom(v *viper.Viper, server string) (*config.Config, error) {
	cfg := config.Defaults()

	cfg.Selection.OptIn = strings.TrimSpace(v.GetString("img2catalog.optin"))
	cfg.Selection.OptOut = strings.TrimSpace(v.GetString("img2catalog.optout"))
	if v.IsSet("img2catalog.remove_optin") {
		cfg.Selection.RemoveOptIn = v.GetBool("img2catalog.remove_optin")
	}
	if v.IsSet("img2catalog.identifier_scheme") {
		scheme, err := catalogs.ParseIdentifierScheme(v.GetString("img2catalog.identifier_scheme"))
		if err != nil {
			return nil, err
		}
		cfg.IdentifierScheme = scheme
	}
	if v.IsSet("img2catalog.concurrency") {
		cfg.Concurrency = v.GetInt("img2catalog.concurrency")
	}

	cfg.Forms.FormID = v.GetString("xnat.dataset_form_id")
	cfg.Forms.DefinitionFile = v.GetString("xnat.form_definition")

	cfg.Catalog.URI = firstNonEmpty(v.GetString("catalog.uri"), strings.TrimRight(server, "/"))
	cfg.Catalog.Title = v.GetString("catalog.title")
	cfg.Catalog.Description = v.GetString("catalog.description")
	cfg.Catalog.Publisher = agentFrom(v.GetStringMap("catalog.publisher"))

	cfg.Dataset.Publishers = agentsFrom(v.Get("dataset.publisher"))
	cfg.Dataset.ContactPoint = catalogs.NewContactPoint(
		v.GetString("dataset.contact_point.full_name"),
		v.GetString("dataset.contact_point.email"),
	)
	cfg.Dataset.ContactPoint.UID = v.GetString("dataset.contact_point.uid")
	cfg.Dataset.ContactPoint.URL = v.GetString("dataset.contact_point.url")
	cfg.Dataset.FallbackKeywords = v.GetStringSlice("img2catalog.fallback_keywords")
	cfg.Dataset.Themes = v.GetStringSlice("dataset.theme")
	cfg.Dataset.License = v.GetString("dataset.license")
	cfg.Dataset.AccessRights = v.GetString("dataset.access_rights")
	cfg.Dataset.ApplicableLegislation = v.GetStringSlice("dataset.applicable_legislation")
	cfg.Dataset.Frequency = v.GetString("dataset.frequency")
	cfg.Dataset.Status = v.GetString("dataset.status")
	cfg.Dataset.HealthThemes = v.GetStringSlice("dataset.health_theme")
	cfg.Dataset.LandingPage = v.GetString("dataset.landing_page")

	cfg.Publish.Container = v.GetString("fdp.catalog")
	if v.IsSet("fdp.max_attempts") {
		cfg.Publish.MaxAttempts = v.GetInt("fdp.max_attempts")
	}
	if v.IsSet("fdp.max_elapsed") {
		cfg.Publish.MaxElapsed = v.GetDuration("fdp.max_elapsed")
	}
	if v.IsSet("fdp.concurrency") {
		cfg.Publish.Concurrency = v.GetInt("fdp.concurrency")
	}

	return cfg, nil
}

// agentsFrom accepts a single table or an array of tables.
func agentsFrom(raw any) []catalogs.Agent {
	switch t := raw.(type) {
	case map[string]any:
		return []catalogs.Agent{agentFrom(t)}
	case []any:
		agents := make([]catalogs.Agent, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				agents = append(agents, agentFrom(m))
			}
		}
		return agents
	case []map[string]any:
		agents := make([]catalogs.Agent, 0, len(t))
		for _, m := range t {
			agents = append(agents, agentFrom(m))
		}
		return agents
	default:
		return nil
	}
}

func agentFrom(m map[string]any) catalogs.Agent {
	str := func(key string) string {
		s, _ := m[key].(string)
		return strings.TrimSpace(s)
	}
	a := catalogs.Agent{
		Name:       str("name"),
		Identifier: str("identifier"),
		Homepage:   str("homepage"),
	}
	if email := str("email"); email != "" {
		a.Email = catalogs.MailtoURI(email)
	}
	return a
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
