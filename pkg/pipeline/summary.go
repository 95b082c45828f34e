package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/Health-RI/img2catalog/pkg/filter"
	"github.com/Health-RI/img2catalog/pkg/publisher"
)

// Stage names used in failures and log fields.
const (
	StageFetch   = "fetch"
	StageFilter  = "filter"
	StageResolve = "resolve"
	StageMap     = "map"
	StagePublish = "publish"
)

// Failure records why one project or dataset did not make it.
type Failure struct {
	Record  string `json:"record" yaml:"record"`
	Stage   string `json:"stage" yaml:"stage"`
	Outcome string `json:"outcome,omitempty" yaml:"outcome,omitempty"`
	Reason  string `json:"reason" yaml:"reason"`
}

// Summary is the complete account of one run.
type Summary struct {
	RunID    string    `json:"run_id" yaml:"run_id"`
	Started  time.Time `json:"started" yaml:"started"`
	Finished time.Time `json:"finished" yaml:"finished"`

	// Harvest
	Fetched  int                   `json:"fetched" yaml:"fetched"`   // Projects retrieved from the source
	Skipped  int                   `json:"skipped" yaml:"skipped"`   // Projects excluded by the filter
	Excluded map[filter.Reason]int `json:"excluded" yaml:"excluded"` // Skipped projects per reason
	Mapped   int                   `json:"mapped" yaml:"mapped"`     // Datasets produced
	Dropped  int                   `json:"dropped" yaml:"dropped"`   // Projects rejected by validation

	// Publish
	CreateOnly   bool `json:"create_only" yaml:"create_only"`
	Created      int  `json:"created" yaml:"created"`
	Updated      int  `json:"updated" yaml:"updated"`
	Failed       int  `json:"failed" yaml:"failed"` // Fetch failures, retried-then-failed and rejected writes
	NotAttempted int  `json:"not_attempted" yaml:"not_attempted"`

	Failures []Failure `json:"failures,omitempty" yaml:"failures,omitempty"`
	Warnings []string  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newSummary(runID string, started time.Time) *Summary {
	return &Summary{RunID: runID, Started: started, Excluded: make(map[filter.Reason]int)}
}

// HasFailures reports whether any project or write failed.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0 || s.Dropped > 0 || s.NotAttempted > 0
}

// Duration returns the wall time of the run.
func (s *Summary) Duration() time.Duration {
	if s.Finished.IsZero() {
		return 0
	}
	return s.Finished.Sub(s.Started)
}

func (s *Summary) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

func (s *Summary) fail(record, stage string, err error) {
	s.Failures = append(s.Failures, Failure{Record: record, Stage: stage, Reason: err.Error()})
}

func (s *Summary) addResults(results []publisher.Result) {
	for _, r := range results {
		switch r.Outcome {
		case publisher.OutcomeCreated:
			s.Created++
		case publisher.OutcomeUpdated:
			s.Updated++
		default:
			s.Failed++
			s.Failures = append(s.Failures, Failure{
				Record:  r.ID.String(),
				Stage:   StagePublish,
				Outcome: string(r.Outcome),
				Reason:  r.Err.Error(),
			})
		}
	}
}

// String returns a one-line human-readable summary.
func (s *Summary) String() string {
	parts := []string{
		fmt.Sprintf("%d fetched", s.Fetched),
		fmt.Sprintf("%d skipped", s.Skipped),
		fmt.Sprintf("%d mapped", s.Mapped),
	}
	if s.Dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d dropped", s.Dropped))
	}
	if s.Created+s.Updated > 0 || s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d created", s.Created), fmt.Sprintf("%d updated", s.Updated))
	}
	if s.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", s.Failed))
	}
	if s.NotAttempted > 0 {
		parts = append(parts, fmt.Sprintf("%d not attempted", s.NotAttempted))
	}
	out := strings.Join(parts, ", ")
	if s.CreateOnly {
		out += " (create-only)"
	}
	return out
}
