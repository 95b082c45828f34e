// Package fdp is a client for the FAIR Data Point metadata API. Datasets
// are created as Turtle documents, moved to the PUBLISHED state, and later
// replaced in place.
package fdp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

const serviceName = "fdp"

// Config holds the FDP connection settings.
type Config struct {
	URL      string // Base URL of the FDP
	Email    string
	Password string
}

// Client writes dataset records to a FAIR Data Point.
type Client struct {
	base   *url.URL
	http   *transport.Client
	tokens *tokenSource
	turtle graph.Turtle
}

// New creates an FDP client.
func New(cfg Config, opts ...transport.Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.URL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigurationError("fdp", "FDP URL must be an absolute URL, got "+cfg.URL, err)
	}
	if cfg.Email == "" || cfg.Password == "" {
		return nil, errors.NewConfigurationError("fdp", "FDP username and password are required", nil)
	}

	login := transport.New(serviceName, nil, opts...)
	ts := newTokenSource(u.JoinPath("tokens").String(), cfg.Email, cfg.Password, login)
	return &Client{
		base:   u,
		http:   transport.New(serviceName, &transport.TokenAuth{Source: ts}, opts...),
		tokens: ts,
	}, nil
}

// Login obtains a token, verifying the credentials before any write.
func (c *Client) Login(ctx context.Context) error {
	_, err := c.tokens.Token(ctx)
	return err
}

// Create posts a new dataset to container and publishes it. The returned
// reference is the subject IRI assigned by the FDP. When the record was
// created but could not be published, the reference is returned together
// with the error.
func (c *Client) Create(ctx context.Context, container string, g *graph.Graph, subject string) (string, error) {
	doc := g.Clone()
	doc.Add(graph.IRI(subject), graph.DCTIsPartOf, graph.IRI(container))

	body, err := c.encode(doc)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, http.MethodPost, c.base.JoinPath("dataset").String(), c.turtle.MediaType(), body)
	if err != nil {
		return "", err
	}
	if err := transport.Discard(resp, serviceName); err != nil {
		return "", err
	}

	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", errors.NewAPIError(serviceName, resp.StatusCode, "create response carried no Location header")
	}
	ref, err := resp.Request.URL.Parse(loc)
	if err != nil {
		return "", errors.WrapAPI(serviceName, resp.StatusCode, err)
	}

	if err := c.publish(ctx, ref.String()); err != nil {
		return ref.String(), err
	}
	logging.FromContext(ctx).Debug().Str("reference", ref.String()).Msg("Created FDP dataset")
	return ref.String(), nil
}

// Update replaces the record at reference and publishes it, so a record
// left in draft by an earlier create is published too. The graph subject is
// rewritten to the reference first.
func (c *Client) Update(ctx context.Context, reference string, g *graph.Graph, subject string) error {
	doc := g.Rename(subject, reference)
	body, err := c.encode(doc)
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, reference, c.turtle.MediaType(), body)
	if err != nil {
		return err
	}
	if err := transport.Discard(resp, serviceName); err != nil {
		return err
	}
	return c.publish(ctx, reference)
}

// publish moves a record to the PUBLISHED state.
func (c *Client) publish(ctx context.Context, reference string) error {
	body, _ := json.Marshal(map[string]string{"current": "PUBLISHED"})
	resp, err := c.do(ctx, http.MethodPut, strings.TrimRight(reference, "/")+"/meta/state", "application/json", body)
	if err != nil {
		return err
	}
	return transport.Discard(resp, serviceName)
}

// do sends a request. A 401 drops the cached token and the request is sent
// once more with a fresh login; a second 401 is returned to the caller.
func (c *Client) do(ctx context.Context, method, target, contentType string, body []byte) (*http.Response, error) {
	resp, err := c.http.Send(ctx, method, target, contentType, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	c.tokens.Invalidate()
	logging.FromContext(ctx).Debug().Str("method", method).Str("url", target).Msg("FDP token rejected, logging in again")

	resp, err = c.http.Send(ctx, method, target, contentType, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	return resp, nil
}

func (c *Client) encode(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.turtle.Serialize(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
