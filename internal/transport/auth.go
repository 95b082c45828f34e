package transport

import (
	"context"
	"net/http"
)

// Authenticator applies authentication to HTTP requests.
type Authenticator interface {
	Apply(ctx context.Context, req *http.Request) error
}

// NoAuth implements no authentication.
type NoAuth struct{}

// Apply implements the Authenticator interface for NoAuth.
func (a *NoAuth) Apply(_ context.Context, _ *http.Request) error {
	return nil
}

// BasicAuth implements HTTP basic authentication, used against XNAT.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements the Authenticator interface for BasicAuth.
// Anonymous access is used when no username is configured.
func (a *BasicAuth) Apply(_ context.Context, req *http.Request) error {
	if a.Username == "" {
		return nil
	}
	req.SetBasicAuth(a.Username, a.Password)
	return nil
}

// BearerAuth implements Bearer token authentication with a fixed token.
type BearerAuth struct {
	Token string
}

// Apply implements the Authenticator interface for BearerAuth.
func (a *BearerAuth) Apply(_ context.Context, req *http.Request) error {
	if a.Token != "" {
		req.Header.Set("Authorization", "Bearer "+a.Token)
	}
	return nil
}

// TokenSource yields a bearer token, logging in or refreshing as needed.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenAuth implements Bearer authentication with tokens from a TokenSource.
type TokenAuth struct {
	Source TokenSource
}

// Apply implements the Authenticator interface for TokenAuth.
func (a *TokenAuth) Apply(ctx context.Context, req *http.Request) error {
	token, err := a.Source.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}
