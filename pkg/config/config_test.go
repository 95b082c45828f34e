package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

func validConfig() *Config {
	c := Defaults()
	c.Catalog = Catalog{
		URI:         "https://xnat.example.com",
		Title:       "Example XNAT catalog",
		Description: "This is an example XNAT catalog description",
		Publisher:   catalogs.Agent{Name: "Example publishing institution", Identifier: "https://www.example.com"},
	}
	c.Dataset.ContactPoint = catalogs.NewContactPoint("Example Data Management office", "datamanager@example.com")
	return c
}

func TestDefaults(t *testing.T) {
	c := Defaults()
	assert.True(t, c.Selection.RemoveOptIn)
	assert.Equal(t, catalogs.IdentifierSchemeURI, c.IdentifierScheme)
	assert.Positive(t, c.Concurrency)
	assert.Positive(t, c.Publish.MaxAttempts)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"same opt-in and opt-out", func(c *Config) { c.Apply(WithOptIn("x"), WithOptOut("x")) }},
		{"relative catalog uri", func(c *Config) { c.Apply(WithCatalogURI("xnat.example.com")) }},
		{"missing title", func(c *Config) { c.Catalog.Title = "" }},
		{"missing contact email", func(c *Config) { c.Dataset.ContactPoint.Email = "" }},
		{"bad publisher", func(c *Config) { c.Dataset.Publishers = []catalogs.Agent{{Name: "x"}} }},
		{"bad scheme", func(c *Config) { c.IdentifierScheme = "doi" }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
			assert.True(t, errors.IsFatal(err))
		})
	}
}

func TestValidatePublish(t *testing.T) {
	c := validConfig()
	assert.Error(t, c.ValidatePublish())

	c.Apply(WithContainer("https://fdp.example.com/catalog/abc"))
	require.NoError(t, c.ValidatePublish())

	c.Publish.MaxAttempts = 0
	assert.True(t, errors.IsConfiguration(c.ValidatePublish()))
}
