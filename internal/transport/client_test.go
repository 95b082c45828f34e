package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

func TestClientAppliesAuthAndUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, _ := r.BasicAuth()
		assert.Equal(t, "alice", user)
		assert.Equal(t, "img2catalog-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := New("xnat", &BasicAuth{Username: "alice", Password: "pw"}, WithUserAgent("img2catalog-test"))
	resp, err := client.Get(context.Background(), server.URL, "application/json")
	require.NoError(t, err)

	var body struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, DecodeResponse(resp, client.Service(), &body))
	assert.True(t, body.OK)
}

func TestCheckStatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
		auth      bool
	}{
		{http.StatusTooManyRequests, true, false},
		{http.StatusBadGateway, true, false},
		{http.StatusUnauthorized, false, true},
		{http.StatusBadRequest, false, false},
		{http.StatusConflict, false, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := New("fdp", nil)
			resp, err := client.Send(context.Background(), http.MethodPost, server.URL, "text/turtle", []byte("<a> <b> <c> ."))
			require.NoError(t, err)

			err = CheckStatus(resp, "fdp")
			require.Error(t, err)
			var apiErr *errors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "nope", apiErr.Message)
			assert.Equal(t, tt.transient, errors.IsTransient(err))
			assert.Equal(t, tt.auth, errors.IsAuthentication(err))
		})
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New("xnat", nil).Get(context.Background(), url, "")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestReadText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("  Public\n"))
	}))
	defer server.Close()

	client := New("xnat", nil)
	resp, err := client.Get(context.Background(), server.URL, "text/plain")
	require.NoError(t, err)
	text, err := ReadText(resp, "xnat")
	require.NoError(t, err)
	assert.Equal(t, "Public", text)
}
