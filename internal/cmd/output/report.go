package output

import (
	"fmt"
	"io"
	"strconv"

	md "github.com/nao1215/markdown"

	"github.com/Health-RI/img2catalog/pkg/constants"
	"github.com/Health-RI/img2catalog/pkg/pipeline"
)

// WriteReport writes a Markdown report of a run: the counts, every failure
// and every warning.
func WriteReport(w io.Writer, s *pipeline.Summary) error {
	doc := md.NewMarkdown(w)

	doc.H1("img2catalog run " + s.RunID).LF()
	doc.PlainText(fmt.Sprintf("Started %s, finished %s.",
		s.Started.Format(constants.TimeFormatISO8601),
		s.Finished.Format(constants.TimeFormatISO8601))).LF()
	if s.CreateOnly {
		doc.LF().Blockquote("No query endpoint was available; every dataset was created as a new record.").LF()
	}

	doc.H2("Counts").LF()
	doc.Table(md.TableSet{
		Header: []string{"Fetched", "Skipped", "Mapped", "Dropped", "Created", "Updated", "Failed"},
		Rows: [][]string{{
			strconv.Itoa(s.Fetched),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Mapped),
			strconv.Itoa(s.Dropped),
			strconv.Itoa(s.Created),
			strconv.Itoa(s.Updated),
			strconv.Itoa(s.Failed),
		}},
	}).LF()

	if len(s.Failures) > 0 {
		doc.H2("Failures").LF()
		rows := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			rows = append(rows, []string{md.Code(f.Record), f.Stage, f.Outcome, f.Reason})
		}
		doc.Table(md.TableSet{
			Header: []string{"Record", "Stage", "Outcome", "Reason"},
			Rows:   rows,
		}).LF()
	}

	if len(s.Warnings) > 0 {
		doc.H2("Warnings").LF()
		doc.BulletList(s.Warnings...).LF()
	}

	if err := doc.Build(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
