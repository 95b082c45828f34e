package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/Health-RI/img2catalog/pkg/errors"
)

func TestTaxonomySentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		fatal    bool
	}{
		{"configuration", pkgerrors.NewConfigurationError("catalog.uri", "is required", nil), pkgerrors.ErrConfiguration, true},
		{"authentication", pkgerrors.NewAuthenticationError("fdp", "token", "rejected", nil), pkgerrors.ErrAuthentication, true},
		{"fetch", pkgerrors.NewFetchError("P1", errors.New("boom")), pkgerrors.ErrFetch, false},
		{"resolution", pkgerrors.NewResolutionError("P1", "theme", "too deep"), pkgerrors.ErrResolution, false},
		{"validation", pkgerrors.NewValidationError("title", "", "is required"), pkgerrors.ErrInvalidInput, false},
		{"reconciliation", pkgerrors.NewReconciliationError("https://sparql", errors.New("down")), pkgerrors.ErrReconciliation, false},
		{"publish", pkgerrors.NewPublishError("create", "D1", 3, errors.New("502")), pkgerrors.ErrPublish, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			wrapped := fmt.Errorf("stage failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel))
			assert.Equal(t, tt.fatal, pkgerrors.IsFatal(wrapped))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "configuration error for fdp.catalog: is required",
		pkgerrors.NewConfigurationError("fdp.catalog", "is required", nil).Error())
	assert.Equal(t, "failed to fetch project P1: boom",
		pkgerrors.NewFetchError("P1", errors.New("boom")).Error())
	assert.Equal(t, "failed to update D1 after 4 attempts: 503",
		pkgerrors.NewPublishError("update", "D1", 4, errors.New("503")).Error())

	v := &pkgerrors.ValidationError{Record: "D1", Field: "creator", Message: "at least one creator is required"}
	assert.Equal(t, "validation failed for D1 field creator: at least one creator is required", v.Error())
}

func TestAPIErrorClassification(t *testing.T) {
	t.Run("rate limited", func(t *testing.T) {
		err := pkgerrors.NewAPIError("fdp", 429, "slow down")
		assert.True(t, errors.Is(err, pkgerrors.ErrRateLimited))
		assert.True(t, pkgerrors.IsTransient(err))
	})

	t.Run("server error", func(t *testing.T) {
		err := fmt.Errorf("create: %w", pkgerrors.NewAPIError("fdp", 503, "maintenance"))
		assert.True(t, pkgerrors.IsTransient(err))
	})

	t.Run("unauthorized is authentication and permanent", func(t *testing.T) {
		err := pkgerrors.NewAPIError("xnat", 401, "bad credentials")
		assert.True(t, pkgerrors.IsAuthentication(err))
		assert.True(t, pkgerrors.IsFatal(err))
		assert.False(t, pkgerrors.IsTransient(err))
	})

	t.Run("bad request is permanent", func(t *testing.T) {
		assert.False(t, pkgerrors.IsTransient(pkgerrors.NewAPIError("fdp", 400, "shacl violation")))
	})

	t.Run("not found", func(t *testing.T) {
		assert.True(t, pkgerrors.IsNotFound(pkgerrors.NewAPIError("xnat", 404, "")))
	})
}

func TestIsTransient(t *testing.T) {
	assert.False(t, pkgerrors.IsTransient(nil))
	assert.False(t, pkgerrors.IsTransient(errors.New("plain")))
	assert.True(t, pkgerrors.IsTransient(pkgerrors.WrapTransport("fdp", errors.New("connection reset"))))
	assert.False(t, pkgerrors.IsTransient(pkgerrors.NewValidationError("title", nil, "empty")))
	assert.False(t, pkgerrors.IsTransient(errors.Join(pkgerrors.ErrCanceled, errors.New("context canceled"))))
}

func TestUnwrap(t *testing.T) {
	base := errors.New("socket closed")
	err := pkgerrors.NewReconciliationError("https://sparql", base)
	require.ErrorIs(t, err, base)

	var recErr *pkgerrors.ReconciliationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &recErr))
	assert.Equal(t, "https://sparql", recErr.Endpoint)
}

func TestWrapHelpersNil(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapParse("json", "x", nil))
	assert.Nil(t, pkgerrors.WrapAPI("fdp", 500, nil))
	assert.Nil(t, pkgerrors.WrapTransport("fdp", nil))
	assert.Nil(t, pkgerrors.WrapConfiguration("k", nil))

	err := pkgerrors.WrapConfiguration("dataset.contact_point.email", errors.New("missing"))
	assert.True(t, pkgerrors.IsConfiguration(err))
}
