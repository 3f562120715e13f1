package verify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mrz1836/vercheck/internal/clock"
)

// LinkType names the kind of evidence a verification item links to.
type LinkType string

// Link types supported by item templates.
const (
	LinkNone             LinkType = ""
	LinkLog              LinkType = "log"
	LinkNewArtifact      LinkType = "new_artifact"
	LinkCompareArtifacts LinkType = "compare_artifacts"
	LinkReport           LinkType = "report"
)

// ItemTemplate describes one verification item a tool's report is expected
// to carry: its phase, name, the memo texts for the success/failure cases,
// and the evidence it links to.
type ItemTemplate struct {
	Phase       Phase
	Item        string
	SuccessMemo string
	FailedMemo  string
	LinkType    LinkType
}

// ItemTemplates maps lowercase tool names to their ordered item template
// lists, falling back to a built-in default list for tools without an entry.
// The mapping is read-only configuration injected into the Aggregator; it is
// never mutated during a run.
type ItemTemplates struct {
	byTool   map[string][]ItemTemplate
	defaults []ItemTemplate
}

// defaultTemplates is the built-in verification item list applied to tools
// without a specific entry.
func defaultTemplates() []ItemTemplate {
	return []ItemTemplate{
		{PhaseExecution, "startup and execution check", "clean exit", "abnormal exit", LinkLog},
		{PhaseArtifact, "output format check", "no differences", "format changed", LinkNewArtifact},
		{PhaseArtifact, "result accuracy check", "within tolerance", "accuracy degraded", LinkCompareArtifacts},
		{PhaseArtifact, "performance check", "no regression", "performance degraded", LinkLog},
		{PhaseArtifact, "summary consistency check", "consistent", "inconsistent", LinkNewArtifact},
		{PhaseLog, "warning and error analysis", "no new errors", "new warnings or errors", LinkLog},
		{PhaseSummary, "version compatibility assessment", "safe to migrate", "action required", LinkReport},
	}
}

// NewItemTemplates returns the built-in template configuration: the default
// list plus per-tool customizations.
func NewItemTemplates() *ItemTemplates {
	t := &ItemTemplates{
		byTool:   make(map[string][]ItemTemplate),
		defaults: defaultTemplates(),
	}

	// icc2_smoke swaps the generic performance item for a memory check.
	icc2 := defaultTemplates()
	for i := range icc2 {
		if icc2[i].Item == "performance check" {
			icc2[i] = ItemTemplate{PhaseArtifact, "memory usage check", "improved", "regressed", LinkLog}
		}
	}
	t.byTool["icc2_smoke"] = icc2

	return t
}

// Set installs a template list for a tool, replacing any existing entry.
// Intended for configuration at startup, before any run begins.
func (t *ItemTemplates) Set(tool string, items []ItemTemplate) {
	t.byTool[strings.ToLower(tool)] = items
}

// ForTool returns the template list for a tool, or the defaults.
func (t *ItemTemplates) ForTool(tool string) []ItemTemplate {
	if items, ok := t.byTool[strings.ToLower(tool)]; ok {
		return items
	}
	return t.defaults
}

// forPhase filters a template list to one phase, preserving order.
func forPhase(templates []ItemTemplate, phase Phase) []ItemTemplate {
	var out []ItemTemplate
	for _, tpl := range templates {
		if tpl.Phase == phase {
			out = append(out, tpl)
		}
	}
	return out
}

// ExecutionResult is the Tool Runner's verdict for one version run.
// Execution can only succeed or error; a semantic mismatch is categorically
// different and never reported here. A negative ExitCode means the version
// never started, so there is no exit status to report.
type ExecutionResult struct {
	Version  string
	Status   Status
	ExitCode int
}

// PhaseOutcomes carries the raw per-phase results handed to the aggregator.
type PhaseOutcomes struct {
	Executions []ExecutionResult
	Artifacts  []Outcome
	Logs       []Outcome
}

// Evidence holds the file paths available for substantiating items.
type Evidence struct {
	OldArtifact string
	NewArtifact string
	RunLog      string
	ReportPath  string
}

// link renders the evidence reference for a template link type.
func (e Evidence) link(t LinkType) string {
	switch t {
	case LinkLog:
		return e.RunLog
	case LinkNewArtifact:
		return e.NewArtifact
	case LinkCompareArtifacts:
		if e.OldArtifact == "" || e.NewArtifact == "" {
			return ""
		}
		return fmt.Sprintf("%s -> %s", e.OldArtifact, e.NewArtifact)
	case LinkReport:
		return e.ReportPath
	default:
		return ""
	}
}

// Aggregator normalizes comparator and execution outcomes into the ordered
// verification item list handed to reporting.
type Aggregator struct {
	templates *ItemTemplates
	clk       clock.Clock
}

// NewAggregator creates an aggregator using the given template configuration
// and clock. A nil clock uses the system clock.
func NewAggregator(templates *ItemTemplates, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Aggregator{templates: templates, clk: clk}
}

// BuildReportItems merges execution, artifact, and log phase outcomes into
// the canonical ordered item list for one tool run:
//
//   - one Execution item per version run (Success or Error, never Failed),
//   - Artifact items in template declaration order, unnamed comparator
//     outcomes taking their name and memo from the next free template,
//   - Log items likewise,
//   - exactly one Summary item judging every non-NotApplicable item above
//     with precedence Error > Failed > Success. A run where nothing was
//     verifiable yields a NotApplicable summary rather than a crash.
//
// Item timestamps are assigned in final order and are therefore
// monotonically non-decreasing.
func (a *Aggregator) BuildReportItems(tool, oldVersion, newVersion string, po PhaseOutcomes, ev Evidence) []VerificationItem {
	templates := a.templates.ForTool(tool)

	execs := make([]ExecutionResult, len(po.Executions))
	copy(execs, po.Executions)
	for i := range execs {
		if execs[i].Version != "" {
			continue
		}
		// Executions arrive in old-then-new order; fill missing version
		// labels from the run metadata.
		switch i {
		case 0:
			execs[i].Version = oldVersion
		case 1:
			execs[i].Version = newVersion
		}
	}

	var items []VerificationItem
	items = append(items, a.executionItems(templates, execs, ev)...)
	items = append(items, a.phaseItems(PhaseArtifact, po.Artifacts, templates, ev)...)
	items = append(items, a.phaseItems(PhaseLog, po.Logs, templates, ev)...)
	items = append(items, a.summaryItem(templates, items, ev))

	for i := range items {
		items[i].Timestamp = a.clk.Now()
	}
	return items
}

// executionItems emits one Execution item per version run. Any non-Success
// execution status is reported as Error: failure to run is not a semantic
// mismatch.
func (a *Aggregator) executionItems(templates []ItemTemplate, execs []ExecutionResult, ev Evidence) []VerificationItem {
	tpls := forPhase(templates, PhaseExecution)
	tpl := ItemTemplate{Phase: PhaseExecution, Item: "startup and execution check",
		SuccessMemo: "clean exit", FailedMemo: "abnormal exit", LinkType: LinkLog}
	if len(tpls) > 0 {
		tpl = tpls[0]
	}

	var items []VerificationItem
	for _, exec := range execs {
		status := StatusError
		if exec.Status == StatusSuccess {
			status = StatusSuccess
		}
		name := tpl.Item
		if exec.Version != "" {
			name = fmt.Sprintf("%s (%s)", tpl.Item, exec.Version)
		}
		metric := ""
		if exec.ExitCode >= 0 {
			metric = fmt.Sprintf("exit code: %d", exec.ExitCode)
		}
		items = append(items, VerificationItem{
			Phase:        PhaseExecution,
			Item:         name,
			Status:       status,
			Memo:         memoFor(tpl, status, ""),
			Metric:       metric,
			EvidenceLink: ev.link(tpl.LinkType),
		})
	}
	return items
}

// phaseItems normalizes one phase's outcomes against the tool's templates.
// Outcomes that name their item keep that name (matching a template of the
// same name when one exists); unnamed outcomes consume templates in
// declaration order. Templated items sort in template order ahead of
// unmatched outcomes, which keep their emitted order.
func (a *Aggregator) phaseItems(phase Phase, outcomes []Outcome, templates []ItemTemplate, ev Evidence) []VerificationItem {
	tpls := forPhase(templates, phase)
	consumed := make([]bool, len(tpls))

	type ranked struct {
		order int
		item  VerificationItem
	}
	var out []ranked

	nextFree := func() (int, bool) {
		for i, used := range consumed {
			if !used {
				return i, true
			}
		}
		return 0, false
	}
	byName := func(name string) (int, bool) {
		for i, tpl := range tpls {
			if !consumed[i] && tpl.Item == name {
				return i, true
			}
		}
		return 0, false
	}

	for emitIdx, oc := range outcomes {
		idx, templated := -1, false
		if oc.Item == "" {
			if i, ok := nextFree(); ok {
				idx, templated = i, true
			}
		} else if i, ok := byName(oc.Item); ok {
			idx, templated = i, true
		}

		item := VerificationItem{
			Phase:        phase,
			Item:         oc.Item,
			Status:       oc.Status,
			Memo:         oc.Detail,
			Metric:       oc.Metric,
			EvidenceLink: oc.EvidencePath,
		}

		order := len(tpls) + emitIdx
		if templated {
			consumed[idx] = true
			tpl := tpls[idx]
			order = idx
			if item.Item == "" {
				item.Item = tpl.Item
			}
			if item.Memo == "" {
				item.Memo = memoFor(tpl, oc.Status, oc.Detail)
			}
			if item.EvidenceLink == "" {
				item.EvidenceLink = ev.link(tpl.LinkType)
			}
		} else {
			if item.Memo == "" {
				item.Memo = memoFor(ItemTemplate{}, oc.Status, "")
			}
			if item.EvidenceLink == "" && phase == PhaseArtifact {
				item.EvidenceLink = ev.link(LinkCompareArtifacts)
			}
			if item.EvidenceLink == "" && phase == PhaseLog {
				item.EvidenceLink = ev.link(LinkLog)
			}
		}
		out = append(out, ranked{order: order, item: item})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].order < out[j].order })

	items := make([]VerificationItem, 0, len(out))
	for _, r := range out {
		items = append(items, r.item)
	}
	return items
}

// summaryItem judges the whole run. NotApplicable items are excluded from
// the judgment; a run with no applicable results at all is itself
// NotApplicable.
func (a *Aggregator) summaryItem(templates []ItemTemplate, items []VerificationItem, ev Evidence) VerificationItem {
	tpl := ItemTemplate{Phase: PhaseSummary, Item: "version compatibility assessment",
		SuccessMemo: "safe to migrate", FailedMemo: "action required", LinkType: LinkReport}
	if tpls := forPhase(templates, PhaseSummary); len(tpls) > 0 {
		tpl = tpls[0]
	}

	status := StatusNotApplicable
	for _, item := range items {
		if item.Status == StatusNotApplicable {
			continue
		}
		if item.Status.Severity() > status.Severity() {
			status = item.Status
		}
	}

	return VerificationItem{
		Phase:        PhaseSummary,
		Item:         tpl.Item,
		Status:       status,
		Memo:         memoFor(tpl, status, ""),
		Metric:       "overall assessment of all checks",
		EvidenceLink: ev.link(tpl.LinkType),
	}
}

// memoFor picks the memo text for a status, preferring a dynamically
// computed detail when present.
func memoFor(tpl ItemTemplate, status Status, detail string) string {
	if detail != "" {
		return detail
	}
	switch status {
	case StatusSuccess:
		if tpl.SuccessMemo != "" {
			return tpl.SuccessMemo
		}
		return "passed"
	case StatusFailed:
		if tpl.FailedMemo != "" {
			return tpl.FailedMemo
		}
		return "failed"
	case StatusError:
		return "verification incomplete"
	case StatusNotApplicable:
		return "not applicable"
	default:
		return string(status)
	}
}
