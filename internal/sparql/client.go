// Package sparql is a minimal SPARQL 1.1 protocol client for SELECT
// queries with JSON results.
package sparql

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

const (
	serviceName = "sparql"

	resultsMediaType = "application/sparql-results+json"
)

// Binding is one value of a solution.
type Binding struct {
	Type     string `json:"type"` // uri, literal, bnode
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Results is a decoded SELECT result set.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]Binding `json:"bindings"`
	} `json:"results"`
}

// Rows returns the solutions as variable to value maps, dropping unbound
// variables.
func (r *Results) Rows() []map[string]string {
	rows := make([]map[string]string, 0, len(r.Results.Bindings))
	for _, b := range r.Results.Bindings {
		row := make(map[string]string, len(b))
		for name, v := range b {
			row[name] = v.Value
		}
		rows = append(rows, row)
	}
	return rows
}

// Client queries one SPARQL endpoint.
type Client struct {
	endpoint string
	http     *transport.Client
}

// New creates a client for the given endpoint URL.
func New(endpoint string, auth transport.Authenticator, opts ...transport.Option) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigurationError("sparql", "SPARQL endpoint must be an absolute URL, got "+endpoint, err)
	}
	return &Client{
		endpoint: u.String(),
		http:     transport.New(serviceName, auth, opts...),
	}, nil
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Select runs a SELECT query as a form-encoded POST.
func (c *Client) Select(ctx context.Context, query string) (*Results, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.WrapConfiguration("sparql", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)

	resp, err := c.http.DoWithContext(ctx, req)
	if err != nil {
		return nil, err
	}
	var res Results
	if err := transport.DecodeResponse(resp, serviceName, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// IRI formats an IRI for inclusion in a query.
func IRI(iri string) string {
	r := strings.NewReplacer("<", "%3C", ">", "%3E", `"`, "%22", " ", "%20", "\n", "", "\r", "")
	return "<" + r.Replace(iri) + ">"
}
