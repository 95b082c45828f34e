package fdp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gocache "github.com/patrickmn/go-cache"

	"github.com/Health-RI/img2catalog/internal/transport"
	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/logging"
)

// tokenSource logs in with email and password and caches the bearer token
// until shortly before it expires.
type tokenSource struct {
	login    string // POST endpoint
	email    string
	password string
	http     *transport.Client
	now      func() time.Time

	mu    sync.Mutex // serializes logins
	cache *gocache.Cache
}

var _ transport.TokenSource = (*tokenSource)(nil)

func newTokenSource(login, email, password string, hc *transport.Client) *tokenSource {
	return &tokenSource{
		login:    login,
		email:    email,
		password: password,
		http:     hc,
		now:      time.Now,
		cache:    gocache.New(constants.TokenCacheTTL, constants.CacheCleanupInterval),
	}
}

// Token implements transport.TokenSource.
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cache.Get(s.email); ok {
		return tok.(string), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.cache.Get(s.email); ok {
		return tok.(string), nil
	}

	tok, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}
	ttl := s.ttl(tok)
	s.cache.Set(s.email, tok, ttl)
	logging.FromContext(ctx).Debug().Dur("ttl", ttl).Msg("Obtained FDP token")
	return tok, nil
}

// Invalidate drops the cached token so the next request logs in again.
func (s *tokenSource) Invalidate() {
	s.cache.Delete(s.email)
}

func (s *tokenSource) fetch(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{"email": s.email, "password": s.password})
	if err != nil {
		return "", err
	}
	resp, err := s.http.Send(ctx, http.MethodPost, s.login, "application/json", body)
	if err != nil {
		return "", err
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := transport.DecodeResponse(resp, serviceName, &out); err != nil {
		var apiErr *errors.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return "", errors.NewAuthenticationError(serviceName, "token", "login rejected for "+s.email, err)
		}
		return "", err
	}
	if out.Token == "" {
		return "", errors.NewAuthenticationError(serviceName, "token", "login response carried no token", nil)
	}
	return out.Token, nil
}

// ttl derives the cache lifetime from the token's exp claim. Tokens that
// are not JWTs, or carry no exp, are cached for the default TTL.
func (s *tokenSource) ttl(tok string) time.Duration {
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return constants.TokenCacheTTL
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return constants.TokenCacheTTL
	}
	ttl := exp.Sub(s.now()) - constants.TokenExpiryMargin
	if ttl <= 0 {
		// Already (nearly) expired; use it for this request only.
		return time.Nanosecond
	}
	return ttl
}
