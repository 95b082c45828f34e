package output

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/Health-RI/img2catalog/pkg/filter"
	"github.com/Health-RI/img2catalog/pkg/pipeline"
)

// SummaryToTableData lays a run summary out as a two-column table,
// followed by one row per failure.
func SummaryToTableData(s *pipeline.Summary) Data {
	rows := [][]string{
		{"run_id", s.RunID},
		{"fetched", strconv.Itoa(s.Fetched)},
		{"skipped", strconv.Itoa(s.Skipped)},
	}
	for _, reason := range sortedReasons(s.Excluded) {
		rows = append(rows, []string{"  " + reason.String(), strconv.Itoa(s.Excluded[reason])})
	}
	rows = append(rows,
		[]string{"mapped", strconv.Itoa(s.Mapped)},
		[]string{"dropped", strconv.Itoa(s.Dropped)},
		[]string{"created", strconv.Itoa(s.Created)},
		[]string{"updated", strconv.Itoa(s.Updated)},
		[]string{"failed", strconv.Itoa(s.Failed)},
	)
	if s.NotAttempted > 0 {
		rows = append(rows, []string{"not_attempted", strconv.Itoa(s.NotAttempted)})
	}
	if s.CreateOnly {
		rows = append(rows, []string{"mode", "create-only"})
	}
	if d := s.Duration(); d > 0 {
		rows = append(rows, []string{"duration", d.Round(1e6).String()})
	}
	for _, f := range s.Failures {
		rows = append(rows, []string{f.Stage + " " + f.Record, f.Reason})
	}
	return Data{Headers: []string{"item", "value"}, Rows: rows}
}

// WriteSummary writes a run summary in the given format.
func WriteSummary(w io.Writer, s *pipeline.Summary, format Format) error {
	if s == nil {
		return nil
	}
	var data any = s
	if format == FormatTable || format == "" {
		data = SummaryToTableData(s)
	}
	if err := NewFormatter(format).Format(w, data); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func sortedReasons(m map[filter.Reason]int) []filter.Reason {
	reasons := make([]filter.Reason, 0, len(m))
	for r := range m {
		reasons = append(reasons, r)
	}
	slices.Sort(reasons)
	return reasons
}
