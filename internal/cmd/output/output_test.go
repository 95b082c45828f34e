package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Health-RI/img2catalog/pkg/errors"
	"github.com/Health-RI/img2catalog/pkg/filter"
	"github.com/Health-RI/img2catalog/pkg/pipeline"
)

func testSummary() *pipeline.Summary {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &pipeline.Summary{
		RunID:    "run-1",
		Started:  started,
		Finished: started.Add(3 * time.Second),
		Fetched:  4,
		Skipped:  1,
		Excluded: map[filter.Reason]int{filter.ReasonPrivate: 1},
		Mapped:   2,
		Dropped:  1,
		Created:  1,
		Updated:  1,
		Failed:   1,
		Failures: []pipeline.Failure{
			{Record: "P5", Stage: "fetch", Reason: "server returned 500"},
		},
		Warnings: []string{"P1: contact point missing"},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrConfiguration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestSummaryToTableData(t *testing.T) {
	data := SummaryToTableData(testSummary())

	assert.Equal(t, []string{"item", "value"}, data.Headers)
	assert.Contains(t, data.Rows, []string{"fetched", "4"})
	assert.Contains(t, data.Rows, []string{"  private", "1"})
	assert.Contains(t, data.Rows, []string{"duration", "3s"})
	assert.Contains(t, data.Rows, []string{"fetch P5", "server returned 500"})
	assert.NotContains(t, data.Rows, []string{"mode", "create-only"})
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, testSummary(), FormatTable))

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "item")
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "server returned 500")
}

func TestWriteSummaryJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, testSummary(), FormatJSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.EqualValues(t, 2, decoded["mapped"])
}

func TestWriteSummaryYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, testSummary(), FormatYAML))
	assert.Contains(t, buf.String(), "run_id: run-1")
	assert.Contains(t, buf.String(), "created: 1")
}

func TestWriteSummaryNil(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, nil, FormatJSON))
	assert.Empty(t, buf.String())
}

func TestWriteReport(t *testing.T) {
	s := testSummary()
	s.CreateOnly = true

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "# img2catalog run run-1")
	assert.Contains(t, out, "## Counts")
	assert.Contains(t, out, "## Failures")
	assert.Contains(t, out, "`P5`")
	assert.Contains(t, out, "- P1: contact point missing")
	assert.Contains(t, out, "created as a new record")
}
