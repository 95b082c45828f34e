package transport

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

type staticSource struct {
	token string
	err   error
}

func (s staticSource) Token(context.Context) (string, error) { return s.token, s.err }

// TestNoAuth tests that NoAuth applies no authentication.
func TestNoAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	if err := (&NoAuth{}).Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Header) != 0 {
		t.Errorf("Expected no headers, got %d", len(req.Header))
	}
}

// TestBasicAuth tests HTTP basic authentication.
func TestBasicAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	auth := &BasicAuth{Username: "alice", Password: "secret"}
	if err := auth.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, pass, ok := req.BasicAuth()
	if !ok || user != "alice" || pass != "secret" {
		t.Errorf("Expected basic auth alice/secret, got %q/%q (ok=%v)", user, pass, ok)
	}

	anon := &http.Request{Header: make(http.Header)}
	_ = (&BasicAuth{}).Apply(context.Background(), anon)
	if anon.Header.Get("Authorization") != "" {
		t.Error("Anonymous basic auth should not set Authorization")
	}
}

// TestBearerAuth tests Bearer token authentication.
func TestBearerAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	_ = (&BearerAuth{Token: "abc"}).Apply(context.Background(), req)
	if got := req.Header.Get("Authorization"); got != "Bearer abc" {
		t.Errorf("Expected Authorization header 'Bearer abc', got '%s'", got)
	}
}

// TestTokenAuth tests tokens obtained from a TokenSource.
func TestTokenAuth(t *testing.T) {
	req := &http.Request{Header: make(http.Header)}
	auth := &TokenAuth{Source: staticSource{token: "jwt"}}
	if err := auth.Apply(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer jwt" {
		t.Errorf("Expected 'Bearer jwt', got '%s'", got)
	}

	failing := &TokenAuth{Source: staticSource{err: errors.New("login refused")}}
	if err := failing.Apply(context.Background(), &http.Request{Header: make(http.Header)}); err == nil {
		t.Error("Expected token source error to propagate")
	}
}
