package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/mrz1836/vercheck/internal/errors"
)

// csvHeader is the fixed column set of the CSV report.
var csvHeader = []string{
	"Timestamp", "Tool", "Version_old", "Version_new",
	"Phase", "Status", "Memo", "Item", "Metric", "Link",
}

// WriteCSV renders the report to path, one row per visible verification
// item. Rows keep the canonical item order within each run.
func (r *Report) WriteCSV(path string) error {
	f, err := os.Create(path) //nolint:gosec // report path comes from configuration
	if err != nil {
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}

	for _, run := range r.runs {
		for _, item := range visibleItems(run) {
			row := []string{
				item.Timestamp.Format(rowTimestampLayout),
				run.Tool,
				run.OldVersion,
				run.NewVersion,
				item.Phase.Label(),
				string(item.Status),
				item.Memo,
				item.Item,
				item.Metric,
				formatLink(item.EvidenceLink),
			}
			if err := w.Write(row); err != nil {
				return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}
	return nil
}

// formatLink renders an evidence path as a markdown-style link, matching
// the format downstream spreadsheet tooling expects.
func formatLink(path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("[evidence](%s)", path)
}
