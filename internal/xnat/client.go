// Package xnat implements sources.Source for an XNAT server using its REST
// API. Projects are listed once; details, accessibility and the custom form
// payload are fetched per project.
package xnat

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

const serviceName = "xnat"

// Config holds the connection settings for an XNAT server.
type Config struct {
	Server   string // Base URL, e.g. https://xnat.example.org
	Username string // Empty for anonymous access
	Password string
	FormID   string // Custom form whose fields become the supplemental payload
}

// Client is an XNAT project source.
type Client struct {
	server *url.URL
	formID string
	http   *transport.Client
}

var _ sources.Source = (*Client)(nil)

// New creates an XNAT client. The server URL must be absolute.
func New(cfg Config, opts ...transport.Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.Server), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewConfigurationError("server", fmt.Sprintf("XNAT server must be an absolute URL, got %q", cfg.Server), err)
	}
	auth := &transport.BasicAuth{Username: cfg.Username, Password: cfg.Password}
	return &Client{
		server: u,
		formID: cfg.FormID,
		http:   transport.New(serviceName, auth, opts...),
	}, nil
}

// ID implements sources.Source.
func (c *Client) ID() sources.ID {
	return sources.XNATID
}

// URL returns the server URL. It is the default catalog URI.
func (c *Client) URL() string {
	return c.server.String()
}

// ProjectURI returns the external URI of a project.
func (c *Client) ProjectURI(id string) string {
	return c.endpoint("data", "archive", "projects", id)
}

// ListProjects implements sources.Source.
func (c *Client) ListProjects(ctx context.Context) ([]string, error) {
	resp, err := c.http.Get(ctx, c.endpoint("data", "projects")+"?format=json", "application/json")
	if err != nil {
		return nil, err
	}
	var list projectList
	if err := transport.DecodeResponse(resp, serviceName, &list); err != nil {
		if errors.IsAuthentication(err) {
			return nil, errors.NewAuthenticationError(serviceName, "basic", "server rejected credentials", err)
		}
		return nil, err
	}

	ids := make([]string, 0, len(list.ResultSet.Result))
	for _, r := range list.ResultSet.Result {
		if r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

// FetchProject implements sources.Source. A 403 on a single project is a
// FetchError for that project only; a 401 means the credentials stopped
// working and is returned as an AuthenticationError.
func (c *Client) FetchProject(ctx context.Context, id string) (*sources.Project, error) {
	p, err := c.fetchProject(ctx, id)
	if err == nil {
		return p, nil
	}

	var apiErr *errors.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized:
			return nil, errors.NewAuthenticationError(serviceName, "basic", "server rejected credentials", err)
		case http.StatusForbidden:
			return nil, &errors.FetchError{Project: id, Message: apiErr.Error()}
		}
	}
	if errors.IsCanceled(err) {
		return nil, err
	}
	return nil, errors.NewFetchError(id, err)
}

func (c *Client) fetchProject(ctx context.Context, id string) (*sources.Project, error) {
	logger := logging.FromContext(ctx)

	resp, err := c.http.Get(ctx, c.endpoint("data", "projects", id)+"?format=json", "application/json")
	if err != nil {
		return nil, err
	}
	var detail projectDetail
	if err := transport.DecodeResponse(resp, serviceName, &detail); err != nil {
		return nil, err
	}
	if len(detail.Items) == 0 {
		return nil, errors.NewValidationError("project", id, "server returned no project item")
	}
	root := detail.Items[0]

	access, err := c.accessibility(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &sources.Project{
		ID:            id,
		URI:           c.ProjectURI(id),
		Accessibility: access,
		Title:         root.str("name"),
		Description:   root.str("description"),
		Keywords:      sources.SplitKeywords(root.str("keywords")),
	}
	if pis := root.children(fieldPI); len(pis) > 0 {
		pi := person(pis[0])
		p.PI = &pi
	}
	for _, inv := range root.children(fieldInvestigators) {
		p.Investigators = append(p.Investigators, person(inv))
	}

	// Private projects are dropped by the filter, so their form is never needed.
	if c.formID != "" && access != sources.AccessibilityPrivate {
		payload, err := c.formPayload(ctx, id)
		if err != nil {
			return nil, err
		}
		p.Supplemental = payload
	}

	logger.Debug().
		Str("project", id).
		Str("accessibility", access.String()).
		Int("investigators", len(p.Investigators)).
		Msg("Fetched project")
	return p, nil
}

func (c *Client) accessibility(ctx context.Context, id string) (sources.Accessibility, error) {
	resp, err := c.http.Get(ctx, c.endpoint("data", "projects", id, "accessibility"), "text/plain")
	if err != nil {
		return "", err
	}
	raw, err := transport.ReadText(resp, serviceName)
	if err != nil {
		return "", err
	}
	return sources.ParseAccessibility(raw)
}

// formPayload returns the fields of the configured custom form. A project
// without that form yields an empty payload.
func (c *Client) formPayload(ctx context.Context, id string) (map[string]any, error) {
	resp, err := c.http.Get(ctx, c.endpoint("xapi", "custom-fields", "projects", id, "fields"), "application/json")
	if err != nil {
		return nil, err
	}
	var forms map[string]any
	if err := transport.DecodeResponse(resp, serviceName, &forms); err != nil {
		if errors.IsNotFound(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	payload, ok := forms[c.formID].(map[string]any)
	if !ok {
		return map[string]any{}, nil
	}
	return payload, nil
}

func (c *Client) endpoint(segments ...string) string {
	return c.server.JoinPath(segments...).String()
}

func person(it item) sources.Person {
	return sources.Person{
		ID:          it.str("xnat_investigatordata_id"),
		Title:       it.str("title"),
		FirstName:   it.str("firstname"),
		LastName:    it.str("lastname"),
		Email:       it.str("email"),
		Institution: it.str("institution"),
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
