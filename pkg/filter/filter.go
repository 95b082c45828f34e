// Package filter decides which source projects are eligible for the
// catalog. Decisions are pure functions of the project and the selection
// settings.
package filter

import (
	"github.com/Health-RI/img2catalog/internal/utils/text"
	"github.com/Health-RI/img2catalog/pkg/config"
	"github.com/Health-RI/img2catalog/pkg/sources"
)

// Reason explains an inclusion decision.
type Reason string

// String returns the string representation of a Reason.
func (r Reason) String() string {
	return string(r)
}

const (
	// ReasonIncluded means no rule excluded the project.
	ReasonIncluded Reason = "included"
	// ReasonOptedIn means the project carries the opt-in keyword.
	ReasonOptedIn Reason = "opted-in"
	// ReasonPrivate means the project is private and is never catalogued.
	ReasonPrivate Reason = "private"
	// ReasonNotOptedIn means an opt-in keyword is configured and missing.
	ReasonNotOptedIn Reason = "not-opted-in"
	// ReasonOptedOut means the project carries the opt-out keyword.
	ReasonOptedOut Reason = "opted-out"
)

// Decision is the outcome of filtering one project.
type Decision struct {
	Included bool
	Reason   Reason
}

// Filter applies the inclusion rules.
type Filter struct {
	optIn       string
	optOut      string
	removeOptIn bool
}

// New creates a filter from the selection settings.
func New(sel config.Selection) *Filter {
	return &Filter{optIn: sel.OptIn, optOut: sel.OptOut, removeOptIn: sel.RemoveOptIn}
}

// Decide applies the rules in order: private projects are rejected; with an
// opt-in keyword configured only projects carrying it are included and the
// opt-out keyword is ignored; otherwise projects carrying the opt-out
// keyword are excluded; everything else is included.
func (f *Filter) Decide(p *sources.Project) Decision {
	if p.Accessibility == sources.AccessibilityPrivate {
		return Decision{Reason: ReasonPrivate}
	}
	if f.optIn != "" {
		if p.HasKeyword(f.optIn) {
			return Decision{Included: true, Reason: ReasonOptedIn}
		}
		return Decision{Reason: ReasonNotOptedIn}
	}
	if f.optOut != "" && p.HasKeyword(f.optOut) {
		return Decision{Reason: ReasonOptedOut}
	}
	return Decision{Included: true, Reason: ReasonIncluded}
}

// Keywords returns the project keywords to publish. The opt-in keyword is
// removed when configured to do so. The project is not modified.
func (f *Filter) Keywords(p *sources.Project) []string {
	if f.optIn == "" || !f.removeOptIn {
		return append([]string(nil), p.Keywords...)
	}
	optIn := text.Fold(f.optIn)
	out := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		if text.Fold(k) != optIn {
			out = append(out, k)
		}
	}
	return out
}

// Apply splits projects into included ones and a count of excluded ones
// per reason.
func (f *Filter) Apply(projects []*sources.Project) ([]*sources.Project, map[Reason]int) {
	included := make([]*sources.Project, 0, len(projects))
	excluded := make(map[Reason]int)
	for _, p := range projects {
		d := f.Decide(p)
		if d.Included {
			included = append(included, p)
			continue
		}
		excluded[d.Reason]++
	}
	return included, excluded
}
