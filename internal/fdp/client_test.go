package fdp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/graph"
)

type fakeFDP struct {
	*httptest.Server

	logins atomic.Int32
	revoke atomic.Int32 // Requests still to be refused with 401

	mu      sync.Mutex
	records map[string]string // path -> turtle
	states  map[string]string // path -> state
	next    int
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix()}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func newFakeFDP(t *testing.T) *fakeFDP {
	t.Helper()
	f := &fakeFDP{records: map[string]string{}, states: map[string]string{}}
	token := signedToken(t, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tokens", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds["email"] != "albert.einstein@example.com" || creds["password"] != "password" {
			http.Error(w, `{"message":"invalid credentials"}`, http.StatusUnauthorized)
			return
		}
		f.logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	authorized := func(w http.ResponseWriter, r *http.Request) bool {
		if n := f.revoke.Load(); n > 0 && f.revoke.CompareAndSwap(n, n-1) {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}
	mux.HandleFunc("POST /dataset", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.next++
		path := "/dataset/" + string(rune('a'-1+f.next))
		f.records[path] = string(body)
		f.states[path] = "DRAFT"
		f.mu.Unlock()
		w.Header().Set("Location", path)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("PUT /dataset/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		assert.Equal(t, "text/turtle", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.records[r.URL.Path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.records[r.URL.Path] = string(body)
	})
	mux.HandleFunc("PUT /dataset/{id}/meta/state", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(w, r) {
			return
		}
		var state map[string]string
		_ = json.NewDecoder(r.Body).Decode(&state)
		f.mu.Lock()
		f.states["/dataset/"+r.PathValue("id")] = state["current"]
		f.mu.Unlock()
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func testGraph(subject string) *graph.Graph {
	g := graph.New()
	g.Add(graph.IRI(subject), graph.RDFType, graph.DCATDataset)
	g.Add(graph.IRI(subject), graph.DCTTitle, graph.Literal("Study & Trial"))
	return g
}

// statements decodes a stored Turtle record into N-Triples statements.
func statements(t *testing.T, turtle string) []string {
	t.Helper()
	triples, err := rdf.NewTripleDecoder(strings.NewReader(turtle), rdf.Turtle).DecodeAll()
	require.NoError(t, err)
	out := make([]string, 0, len(triples))
	for _, tr := range triples {
		out = append(out, tr.Subj.Serialize(rdf.NTriples)+" "+tr.Pred.Serialize(rdf.NTriples)+" "+tr.Obj.Serialize(rdf.NTriples))
	}
	return out
}

func statement(s, p, o graph.Term) string {
	return s.String() + " " + p.String() + " " + o.String()
}

func newTestClient(t *testing.T, f *fakeFDP, password string) *Client {
	t.Helper()
	c, err := New(Config{URL: f.URL, Email: "albert.einstein@example.com", Password: password})
	require.NoError(t, err)
	return c
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{URL: "fdp.example.org", Email: "a", Password: "b"})
	assert.True(t, errors.IsConfiguration(err))

	_, err = New(Config{URL: "https://fdp.example.org"})
	assert.True(t, errors.IsConfiguration(err))
}

func TestCreateAndUpdate(t *testing.T) {
	f := newFakeFDP(t)
	c := newTestClient(t, f, "password")
	ctx := context.Background()
	container := f.URL + "/catalog/1"
	subject := "https://xnat.example.org/data/archive/projects/P1"

	ref, err := c.Create(ctx, container, testGraph(subject), subject)
	require.NoError(t, err)
	assert.Equal(t, f.URL+"/dataset/a", ref)
	assert.Equal(t, "PUBLISHED", f.states["/dataset/a"])
	created := statements(t, f.records["/dataset/a"])
	assert.Contains(t, created, statement(graph.IRI(subject), graph.DCTIsPartOf, graph.IRI(container)))
	assert.Contains(t, created, statement(graph.IRI(subject), graph.RDFType, graph.DCATDataset))

	require.NoError(t, c.Update(ctx, ref, testGraph(subject), subject))
	assert.Contains(t, statements(t, f.records["/dataset/a"]), statement(graph.IRI(ref), graph.RDFType, graph.DCATDataset))
	assert.NotContains(t, f.records["/dataset/a"], subject)

	assert.Equal(t, int32(1), f.logins.Load(), "token must be cached across requests")
}

func TestUpdatePublishesDraft(t *testing.T) {
	f := newFakeFDP(t)
	c := newTestClient(t, f, "password")
	ctx := context.Background()
	subject := "https://xnat.example.org/data/archive/projects/P1"

	ref, err := c.Create(ctx, f.URL+"/catalog/1", testGraph(subject), subject)
	require.NoError(t, err)
	f.mu.Lock()
	f.states["/dataset/a"] = "DRAFT"
	f.mu.Unlock()

	require.NoError(t, c.Update(ctx, ref, testGraph(subject), subject))
	assert.Equal(t, "PUBLISHED", f.states["/dataset/a"])
}

func TestExpiredTokenIsRenewedOnce(t *testing.T) {
	f := newFakeFDP(t)
	c := newTestClient(t, f, "password")
	ctx := context.Background()
	subject := "https://xnat.example.org/data/archive/projects/P1"
	require.NoError(t, c.Login(ctx))

	f.revoke.Store(1)
	ref, err := c.Create(ctx, f.URL+"/catalog/1", testGraph(subject), subject)
	require.NoError(t, err)
	assert.Equal(t, f.URL+"/dataset/a", ref)
	assert.Equal(t, int32(2), f.logins.Load())

	f.revoke.Store(2)
	err = c.Update(ctx, ref, testGraph(subject), subject)
	require.Error(t, err)
	var apiErr *errors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.False(t, errors.IsTransient(err))
	assert.Equal(t, int32(3), f.logins.Load())
}

func TestUpdateMissingRecord(t *testing.T) {
	f := newFakeFDP(t)
	c := newTestClient(t, f, "password")

	err := c.Update(context.Background(), f.URL+"/dataset/zz", testGraph("https://x.example.org/p"), "https://x.example.org/p")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.False(t, errors.IsTransient(err))
}

func TestLoginRejected(t *testing.T) {
	f := newFakeFDP(t)
	c := newTestClient(t, f, "wrong")

	err := c.Login(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthentication(err))
	assert.True(t, errors.IsFatal(err))
}

func TestTokenTTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	ts := newTokenSource("", "", "", nil)
	ts.now = func() time.Time { return now }

	tests := []struct {
		name  string
		token string
		want  time.Duration
	}{
		{"exp in one hour", signedToken(t, now.Add(time.Hour)), time.Hour - constants.TokenExpiryMargin},
		{"already expired", signedToken(t, now.Add(-time.Minute)), time.Nanosecond},
		{"opaque token", "not-a-jwt", constants.TokenCacheTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ts.ttl(tt.token))
		})
	}
}

func TestCreateWithoutLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/tokens") {
			_, _ = w.Write([]byte(`{"token":"opaque"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Email: "a@example.org", Password: "p"})
	require.NoError(t, err)

	ref, err := c.Create(context.Background(), srv.URL+"/catalog/1", testGraph("https://x.example.org/p"), "https://x.example.org/p")
	require.Error(t, err)
	assert.Empty(t, ref)
	assert.Contains(t, err.Error(), "Location")
}
