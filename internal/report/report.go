// Package report renders ordered verification items into CSV and HTML
// reports. It is the Report Writer collaborator: it performs rendering and
// file I/O only and never re-judges items.
package report

import (
	"time"

	"github.com/mrz1836/vercheck/internal/verify"
)

// rowTimestampLayout formats item timestamps in report rows.
const rowTimestampLayout = "2006/01/02 15:04:05.000"

// ToolRun is the reportable record of one tool verification run: run
// metadata plus the canonical ordered item list from the verify engine.
type ToolRun struct {
	RunID      string
	Tool       string
	OldVersion string
	NewVersion string
	Items      []verify.VerificationItem
}

// Summary returns the run's summary item. The engine guarantees exactly one
// summary per run; a missing one (degenerate input) reads as Error.
func (tr *ToolRun) Summary() verify.VerificationItem {
	for _, item := range tr.Items {
		if item.Phase == verify.PhaseSummary {
			return item
		}
	}
	return verify.VerificationItem{
		Phase:  verify.PhaseSummary,
		Status: verify.StatusError,
		Memo:   "no summary produced",
	}
}

// Report accumulates tool runs for rendering.
type Report struct {
	runs      []ToolRun
	generated time.Time
}

// New creates an empty report stamped with the given generation time.
func New(generated time.Time) *Report {
	return &Report{generated: generated}
}

// Add appends one tool run to the report.
func (r *Report) Add(run ToolRun) {
	r.runs = append(r.runs, run)
}

// Runs returns the accumulated tool runs in insertion order.
func (r *Report) Runs() []ToolRun {
	return r.runs
}

// visibleItems filters a run's items for rendering: NotApplicable rows are
// hidden except the summary, which is always shown so that the overall
// judgment is reproducible even for degenerate input.
func visibleItems(run ToolRun) []verify.VerificationItem {
	var out []verify.VerificationItem
	for _, item := range run.Items {
		if item.Status == verify.StatusNotApplicable && item.Phase != verify.PhaseSummary {
			continue
		}
		out = append(out, item)
	}
	return out
}
