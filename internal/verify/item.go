// Package verify implements the comparison and verification-item engine.
//
// It decides, per tool, how two artifact/log pairs are compared (class-based
// comparator, config-based comparator, or the built-in default), applies
// tolerance policies to extracted metrics, and normalizes raw comparison
// outcomes into an ordered sequence of verification items. The ordered item
// list is the canonical data handed to report rendering.
package verify

import "time"

// Phase identifies one of the four verification stages. Phases are a fixed,
// ordered set: Execution < Artifact < Log < Summary.
type Phase string

// Phase constants in report order.
const (
	PhaseExecution Phase = "execution"
	PhaseArtifact  Phase = "artifact"
	PhaseLog       Phase = "log"
	PhaseSummary   Phase = "summary"
)

// phaseOrder maps phases to their position in the report.
var phaseOrder = map[Phase]int{
	PhaseExecution: 0,
	PhaseArtifact:  1,
	PhaseLog:       2,
	PhaseSummary:   3,
}

// Order returns the phase's position in the fixed report ordering.
// Unknown phases sort last.
func (p Phase) Order() int {
	if o, ok := phaseOrder[p]; ok {
		return o
	}
	return len(phaseOrder)
}

// Label returns the human-readable phase name used in report headers.
func (p Phase) Label() string {
	switch p {
	case PhaseExecution:
		return "Execution"
	case PhaseArtifact:
		return "Artifact"
	case PhaseLog:
		return "Log"
	case PhaseSummary:
		return "Summary"
	default:
		return string(p)
	}
}

// Status is the judgment of a single verification item.
//
// NotApplicable is used exactly when a required input (artifact or log) is
// absent; it must never be conflated with Error, which means the check could
// not run for another reason (missing pattern match, undefined tolerance,
// comparator failure).
type Status string

// Status constants. The string values appear verbatim in report rows.
const (
	StatusSuccess       Status = "Success"
	StatusFailed        Status = "Failed"
	StatusError         Status = "Error"
	StatusNotApplicable Status = "N/A"
)

// Severity ranks statuses for summary aggregation: Error > Failed > Success,
// with NotApplicable excluded from the judgment entirely.
func (s Status) Severity() int {
	switch s {
	case StatusError:
		return 3
	case StatusFailed:
		return 2
	case StatusSuccess:
		return 1
	default:
		return 0
	}
}

// VerificationItem is one normalized, reportable result row. Items are
// immutable once created; within one tool run they are totally ordered by
// phase and, within a phase, by declaration order in the tool's item list.
type VerificationItem struct {
	// Phase is the verification stage this item belongs to.
	Phase Phase `json:"phase"`

	// Item is the identifier of the specific check (e.g. "line_count").
	Item string `json:"item"`

	// Status is the judgment for this check.
	Status Status `json:"status"`

	// Memo is a short human-readable explanation, either a template memo
	// for the status or a dynamically computed message.
	Memo string `json:"memo"`

	// Metric is the evaluation criterion actually applied (e.g.
	// "tolerance: 1%"). Present whenever a quantitative check ran.
	Metric string `json:"metric,omitempty"`

	// EvidenceLink optionally references a file that substantiates the
	// result (raw log, diff view, artifact path).
	EvidenceLink string `json:"evidence_link,omitempty"`

	// Timestamp is the item creation time. Timestamps are monotonically
	// non-decreasing across the items of one tool run.
	Timestamp time.Time `json:"timestamp"`
}
