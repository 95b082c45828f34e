package reconciler

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/internal/sparql"
	"github.com/Health-RI/img2catalog/pkg/catalogs"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

type fakeQuerier struct {
	rows  [][2]string // subject, identifier
	err   error
	query string
}

func (f *fakeQuerier) Select(_ context.Context, query string) (*sparql.Results, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	res := &sparql.Results{}
	for _, r := range f.rows {
		res.Results.Bindings = append(res.Results.Bindings, map[string]sparql.Binding{
			"subject":    {Type: "uri", Value: r[0]},
			"identifier": {Type: "literal", Value: r[1]},
		})
	}
	return res, nil
}

func (f *fakeQuerier) Endpoint() string { return "https://fdp.example.org/sparql" }

const catalog = "https://fdp.example.org/catalog/1"

func TestReconcile(t *testing.T) {
	q := &fakeQuerier{rows: [][2]string{
		{"https://fdp.example.org/dataset/a", "P1"},
		{"https://fdp.example.org/dataset/b", "P2"},
	}}

	index, warnings := New(q, catalog).Reconcile(context.Background())
	assert.Empty(t, warnings)
	assert.Len(t, index, 2)
	assert.Contains(t, q.query, "dcterms:isPartOf <"+catalog+">")

	assert.Equal(t, Decision{Action: ActionUpdate, Reference: "https://fdp.example.org/dataset/a"}, index.Decide("P1"))
	assert.Equal(t, Decision{Action: ActionCreate}, index.Decide("P3"))
	assert.Equal(t, Index{
		"P1": "https://fdp.example.org/dataset/a",
		"P2": "https://fdp.example.org/dataset/b",
	}, index)
}

func TestReconcileDuplicateIdentifier(t *testing.T) {
	logs := logging.CaptureLoggingForTest(t)
	q := &fakeQuerier{rows: [][2]string{
		{"https://fdp.example.org/dataset/a", "P1"},
		{"https://fdp.example.org/dataset/a", "P1"},
		{"https://fdp.example.org/dataset/z", "P1"},
	}}

	index, warnings := New(q, catalog).Reconcile(context.Background())
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "dataset/z")
	assert.Equal(t, "https://fdp.example.org/dataset/a", index[catalogs.DatasetID("P1")])
	logs.AssertContains(t, "Duplicate identifier")
}

func TestReconcileCreateOnly(t *testing.T) {
	t.Run("no endpoint", func(t *testing.T) {
		index, warnings := New(nil, catalog).Reconcile(context.Background())
		assert.Nil(t, index)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], "create-only")
	})

	t.Run("query fails", func(t *testing.T) {
		q := &fakeQuerier{err: errors.NewAPIError("sparql", 502, "bad gateway")}
		index, warnings := New(q, catalog).Reconcile(context.Background())
		assert.Nil(t, index)
		require.Len(t, warnings, 1)
		assert.True(t, strings.Contains(warnings[0], "https://fdp.example.org/sparql"))
		assert.Equal(t, ActionCreate, index.Decide("P1").Action)
	})
}

func TestQuery(t *testing.T) {
	q := Query(catalog)
	assert.Contains(t, q, "PREFIX dcterms: <http://purl.org/dc/terms/>")
	assert.Contains(t, q, "?subject dcterms:identifier ?identifier")
}
