package sources

import (
	"regexp"
	"strings"

	"github.com/Health-RI/img2catalog/internal/utils/text"
	"github.com/Health-RI/img2catalog/pkg/errors"
)

// Accessibility is the visibility of a project on its repository server.
type Accessibility string

const (
	// AccessibilityPublic projects are visible to everyone.
	AccessibilityPublic Accessibility = "public"
	// AccessibilityProtected projects are listed but their data is restricted.
	AccessibilityProtected Accessibility = "protected"
	// AccessibilityPrivate projects are never catalogued.
	AccessibilityPrivate Accessibility = "private"
)

// String returns the string representation of an Accessibility.
func (a Accessibility) String() string {
	return string(a)
}

// ParseAccessibility parses a server-reported accessibility. Servers are
// inconsistent about case so the value is folded; anything else is an error.
func ParseAccessibility(s string) (Accessibility, error) {
	switch Accessibility(text.Fold(strings.TrimSpace(s))) {
	case AccessibilityPublic:
		return AccessibilityPublic, nil
	case AccessibilityProtected:
		return AccessibilityProtected, nil
	case AccessibilityPrivate:
		return AccessibilityPrivate, nil
	default:
		return "", errors.NewValidationError("accessibility", s, "unknown accessibility value")
	}
}

// Person is an investigator as recorded on the repository server.
type Person struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"` // Server-scoped investigator id, if known
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	FirstName   string `json:"first_name" yaml:"first_name"`
	LastName    string `json:"last_name" yaml:"last_name"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Institution string `json:"institution,omitempty" yaml:"institution,omitempty"`
}

// FullName returns "title first last" with empty parts left out.
func (p Person) FullName() string {
	return text.Squash(p.Title + " " + p.FirstName + " " + p.LastName)
}

// HasName reports whether either the first or last name is set.
func (p Person) HasName() bool {
	return strings.TrimSpace(p.FirstName) != "" || strings.TrimSpace(p.LastName) != ""
}

// Project is a descriptive record harvested from the repository server.
// It is immutable once fetched.
type Project struct {
	ID            string         `json:"id" yaml:"id"`
	URI           string         `json:"uri" yaml:"uri"` // External URI, {server}/data/archive/projects/{id}
	Accessibility Accessibility  `json:"accessibility" yaml:"accessibility"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	Keywords      []string       `json:"keywords" yaml:"keywords"`
	PI            *Person        `json:"pi,omitempty" yaml:"pi,omitempty"`
	Investigators []Person       `json:"investigators,omitempty" yaml:"investigators,omitempty"`
	Supplemental  map[string]any `json:"supplemental,omitempty" yaml:"supplemental,omitempty"` // Form payload, may be nil
}

// HasKeyword reports whether keyword is a member of the project keyword
// set. Comparison is an exact match under Unicode case folding.
func (p *Project) HasKeyword(keyword string) bool {
	if keyword == "" {
		return false
	}
	want := text.Fold(keyword)
	for _, k := range p.Keywords {
		if text.Fold(k) == want {
			return true
		}
	}
	return false
}

var keywordSeparators = regexp.MustCompile(`[.,;: ]`)

// SplitKeywords splits a server keyword string on periods, commas,
// semicolons, colons and spaces. Empty entries are dropped.
func SplitKeywords(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, k := range keywordSeparators.Split(s, -1) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
