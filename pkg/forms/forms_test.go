package forms

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

const testDefinition = `
fields:
  - name: theme
    shape: uri_list
    fallback: http://publications.europa.eu/resource/authority/data-theme/HEAL
  - name: license
    shape: uri
  - name: minimum_typical_age
    shape: integer
  - name: contact_point
    shape: contact_point
  - name: publisher
    shape: agent_list
  - name: population_coverage
    key: population.coverage
    shape: string
    fallback: Adults
  - name: extra
    shape: object
`

func mustParse(t *testing.T, doc string) *Definition {
	t.Helper()
	def, err := Parse([]byte(doc), "test.yaml")
	require.NoError(t, err)
	return def
}

func TestDefaultDefinition(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)
	for _, name := range []string{"keyword", "creator", "publisher", "contact_point", "theme", "license", "access_rights"} {
		_, ok := def.Field(name)
		assert.True(t, ok, name)
	}
}

func TestParseRejectsBadDefinitions(t *testing.T) {
	tests := map[string]string{
		"unknown shape":      "fields:\n  - name: a\n    shape: blob\n",
		"missing name":       "fields:\n  - shape: string\n",
		"duplicate":          "fields:\n  - name: a\n    shape: string\n  - name: a\n    shape: string\n",
		"fallback mismatch":  "fields:\n  - name: a\n    shape: uri\n    fallback: not a uri\n",
		"integer mismatch":   "fields:\n  - name: a\n    shape: integer\n    fallback: many\n",
		"malformed document": "fields: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), "bad.yaml")
			require.Error(t, err)
			assert.True(t, errors.IsConfiguration(err))
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testDefinition), 0o644))
	def, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, def.Fields, 7)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsConfiguration(err))
}

func TestResolve(t *testing.T) {
	r := New(mustParse(t, testDefinition))

	t.Run("no payload uses fallbacks", func(t *testing.T) {
		fields, warnings := r.Resolve(&sources.Project{ID: "P1"})
		assert.Empty(t, warnings)
		themes, ok := fields.Strings("theme")
		require.True(t, ok)
		assert.Equal(t, []string{"http://publications.europa.eu/resource/authority/data-theme/HEAL"}, themes)
		coverage, _ := fields.String("population_coverage")
		assert.Equal(t, "Adults", coverage)
		_, ok = fields["license"]
		assert.False(t, ok)
	})

	t.Run("well-formed values win", func(t *testing.T) {
		p := &sources.Project{ID: "P1", Supplemental: map[string]any{
			"theme":               []any{"http://example.com/a", "http://example.com/b"},
			"license":             "https://creativecommons.org/licenses/by/4.0/",
			"minimum_typical_age": float64(18),
			"contact_point":       map[string]any{"full_name": "Desk", "email": "desk@example.com"},
			"publisher":           `[{"name": "Hospital", "identifier": "https://hospital.example.com"}]`,
			"population":          map[string]any{"coverage": "Children"},
			"extra":               map[string]any{"a": []any{1.0, 2.0}},
		}}
		fields, warnings := r.Resolve(p)
		assert.Empty(t, warnings)

		themes, _ := fields.Strings("theme")
		assert.Equal(t, []string{"http://example.com/a", "http://example.com/b"}, themes)
		age, ok := fields.Int("minimum_typical_age")
		require.True(t, ok)
		assert.Equal(t, 18, age)
		cp, ok := fields.ContactPoint("contact_point")
		require.True(t, ok)
		assert.Equal(t, "mailto:desk@example.com", cp.Email)
		pubs, ok := fields.Agents("publisher")
		require.True(t, ok)
		assert.Equal(t, []catalogs.Agent{{Name: "Hospital", Identifier: "https://hospital.example.com"}}, pubs)
		coverage, _ := fields.String("population_coverage")
		assert.Equal(t, "Children", coverage)
		_, ok = fields.Object("extra")
		assert.True(t, ok)
	})

	t.Run("single value accepted for list", func(t *testing.T) {
		fields, warnings := r.Resolve(&sources.Project{ID: "P1", Supplemental: map[string]any{"theme": "http://example.com/only"}})
		assert.Empty(t, warnings)
		themes, _ := fields.Strings("theme")
		assert.Equal(t, []string{"http://example.com/only"}, themes)
	})

	t.Run("malformed values fall back with warnings", func(t *testing.T) {
		p := &sources.Project{ID: "P1", Supplemental: map[string]any{
			"theme":               []any{"http://example.com/a", "HEAL"},
			"license":             "cc-by",
			"minimum_typical_age": 12.5,
			"publisher":           `[{"name": "Hospital"`,
		}}
		fields, warnings := r.Resolve(p)
		require.Len(t, warnings, 4)
		for _, w := range warnings {
			assert.ErrorIs(t, w, errors.ErrResolution)
		}
		themes, _ := fields.Strings("theme")
		assert.Equal(t, []string{"http://publications.europa.eu/resource/authority/data-theme/HEAL"}, themes)
		_, ok := fields["license"]
		assert.False(t, ok)
		_, ok = fields["publisher"]
		assert.False(t, ok)
	})

	t.Run("project is not modified", func(t *testing.T) {
		payload := map[string]any{"publisher": `[{"name": "H", "identifier": "https://h.example.com"}]`}
		p := &sources.Project{ID: "P1", Supplemental: payload}
		_, _ = r.Resolve(p)
		assert.IsType(t, "", p.Supplemental["publisher"])
	})
}

func TestResolveBounds(t *testing.T) {
	def := mustParse(t, "fields:\n  - name: extra\n    shape: object\n")

	deep := map[string]any{}
	cur := deep
	for range 50 {
		next := map[string]any{}
		cur["child"] = next
		cur = next
	}

	t.Run("too deep", func(t *testing.T) {
		fields, warnings := New(def).Resolve(&sources.Project{ID: "P", Supplemental: map[string]any{"extra": deep}})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Error(), "nested deeper")
		assert.Empty(t, fields)
	})

	t.Run("deeply nested JSON string", func(t *testing.T) {
		payload := strings.Repeat(`{"a":`, 40) + "1" + strings.Repeat("}", 40)
		_, warnings := New(def).Resolve(&sources.Project{ID: "P", Supplemental: map[string]any{"extra": payload}})
		require.Len(t, warnings, 1)
	})

	t.Run("unterminated JSON string", func(t *testing.T) {
		payload := strings.Repeat(`{"a":`, 1000)
		_, warnings := New(def).Resolve(&sources.Project{ID: "P", Supplemental: map[string]any{"extra": payload}})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Error(), "malformed")
	})

	t.Run("too many nodes", func(t *testing.T) {
		wide := map[string]any{}
		list := make([]any, 100)
		for i := range list {
			list[i] = "x"
		}
		wide["list"] = list
		_, warnings := New(def, WithLimits(10, 50)).Resolve(&sources.Project{ID: "P", Supplemental: map[string]any{"extra": wide}})
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Error(), "nodes")
	})

	t.Run("within limits", func(t *testing.T) {
		fields, warnings := New(def, WithLimits(60, 1000)).Resolve(&sources.Project{ID: "P", Supplemental: map[string]any{"extra": deep}})
		assert.Empty(t, warnings)
		_, ok := fields.Object("extra")
		assert.True(t, ok)
	})
}
