package sources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/errors"
)

func TestParseAccessibility(t *testing.T) {
	tests := []struct {
		in   string
		want Accessibility
	}{
		{"public", AccessibilityPublic},
		{"Public", AccessibilityPublic},
		{" PROTECTED\n", AccessibilityProtected},
		{"private", AccessibilityPrivate},
	}
	for _, tt := range tests {
		got, err := ParseAccessibility(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseAccessibility("secret")
	assert.True(t, errors.IsValidationError(err))
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"mri ct", []string{"mri", "ct"}},
		{"mri,ct;pet:us.xray", []string{"mri", "ct", "pet", "us", "xray"}},
		{" brain,, ,  scan ", []string{"brain", "scan"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitKeywords(tt.in), tt.in)
	}
}

func TestProjectHasKeyword(t *testing.T) {
	p := &Project{Keywords: []string{"Include_Catalog", "mri"}}
	assert.True(t, p.HasKeyword("include_catalog"))
	assert.True(t, p.HasKeyword("MRI"))
	assert.False(t, p.HasKeyword("include"))
	assert.False(t, p.HasKeyword(""))
}

func TestPersonFullName(t *testing.T) {
	assert.Equal(t, "Dr. Jane Doe", Person{Title: "Dr.", FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.Equal(t, "Jane Doe", Person{FirstName: "Jane", LastName: "Doe"}.FullName())
	assert.True(t, Person{LastName: "Doe"}.HasName())
	assert.False(t, Person{Title: "Prof."}.HasName())
}

func TestFetchAll(t *testing.T) {
	src := NewMemory(
		&Project{ID: "B"},
		&Project{ID: "A"},
		&Project{ID: "C"},
	)
	src.Fail("C", errors.New("timeout"))
	src.Fail("D", errors.NewFetchError("D", errors.ErrNotFound))

	projects, failures, err := FetchAll(context.Background(), src, 2)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "A", projects[0].ID)
	assert.Equal(t, "B", projects[1].ID)
	require.Len(t, failures, 2)
	for _, f := range failures {
		assert.ErrorIs(t, f, errors.ErrFetch)
	}
}

func TestFetchAllFatal(t *testing.T) {
	t.Run("listing rejected", func(t *testing.T) {
		src := NewMemory()
		src.FailListing(errors.NewAuthenticationError("xnat", "basic", "rejected", nil))
		_, _, err := FetchAll(context.Background(), src, 4)
		assert.True(t, errors.IsFatal(err))
	})

	t.Run("project rejected", func(t *testing.T) {
		src := NewMemory(&Project{ID: "A"})
		src.Fail("B", errors.NewAuthenticationError("xnat", "basic", "session expired", nil))
		_, _, err := FetchAll(context.Background(), src, 1)
		assert.True(t, errors.IsAuthentication(err))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := FetchAll(ctx, NewMemory(&Project{ID: "A"}), 1)
		assert.Error(t, err)
	})
}
