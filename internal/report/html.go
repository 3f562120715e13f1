package report

import (
	_ "embed"
	"html/template"
	"os"

	"github.com/mrz1836/vercheck/internal/errors"
	"github.com/mrz1836/vercheck/internal/verify"
)

//go:embed report.html.tmpl
var htmlTemplate string

// htmlRow is one rendered table row.
type htmlRow struct {
	Timestamp  string
	Tool       string
	OldVersion string
	NewVersion string
	Phase      string
	Status     string
	Memo       string
	Item       string
	Metric     string
	Link       string
}

// htmlRun is one tool run's section data.
type htmlRun struct {
	Tool       string
	OldVersion string
	NewVersion string
	RunID      string
	Status     string
	StatusMemo string
	Rows       []htmlRow
}

// htmlData is the template's root context.
type htmlData struct {
	Generated string
	Runs      []htmlRun
}

// WriteHTML renders the report to path using the embedded template.
func (r *Report) WriteHTML(path string) error {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return errors.Wrap(err, "report template does not parse")
	}

	data := htmlData{Generated: r.generated.Format("2006/01/02 15:04:05")}
	for _, run := range r.runs {
		summary := run.Summary()
		hr := htmlRun{
			Tool:       run.Tool,
			OldVersion: run.OldVersion,
			NewVersion: run.NewVersion,
			RunID:      run.RunID,
			Status:     statusClass(summary.Status),
			StatusMemo: summary.Memo,
		}
		for _, item := range visibleItems(run) {
			hr.Rows = append(hr.Rows, htmlRow{
				Timestamp:  item.Timestamp.Format(rowTimestampLayout),
				Tool:       run.Tool,
				OldVersion: run.OldVersion,
				NewVersion: run.NewVersion,
				Phase:      item.Phase.Label(),
				Status:     statusClass(item.Status),
				Memo:       item.Memo,
				Item:       item.Item,
				Metric:     item.Metric,
				Link:       item.EvidenceLink,
			})
		}
		data.Runs = append(data.Runs, hr)
	}

	f, err := os.Create(path) //nolint:gosec // report path comes from configuration
	if err != nil {
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := tmpl.Execute(f, data); err != nil {
		return errors.Wrapf(errors.ErrReportWrite, "%s: %v", path, err)
	}
	return nil
}

// statusClass maps a status to its CSS class / display name. NotApplicable
// needs an escape-safe class name.
func statusClass(s verify.Status) string {
	if s == verify.StatusNotApplicable {
		return "NA"
	}
	return string(s)
}
