// Package transport provides the HTTP client shared by the XNAT, SPARQL and
// FAIR Data Point clients: pluggable authentication, a bounded timeout and
// uniform classification of failed responses.
package transport

import (
	"bytes"
	"context"
	"net/http"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http      *http.Client
	auth      Authenticator
	service   string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a new transport client for the named service.
func New(service string, auth Authenticator, opts ...Option) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		auth:      auth,
		service:   service,
		userAgent: constants.AppName,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the service name used in error messages.
func (c *Client) Service() string {
	return c.service
}

// DoWithContext performs an HTTP request with authentication applied.
// Requests that never produce a response are returned as TransportError.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.auth.Apply(ctx, req); err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Join(errors.ErrCanceled, ctx.Err())
		}
		return nil, errors.WrapTransport(c.service, err)
	}
	return resp, nil
}

// Get performs a GET request with the given Accept header.
func (c *Client) Get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapConfiguration("url", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.DoWithContext(ctx, req)
}

// Send performs a request with a body of the given content type.
func (c *Client) Send(ctx context.Context, method, url, contentType string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WrapConfiguration("url", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.DoWithContext(ctx, req)
}
