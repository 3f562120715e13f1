package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vercheck/internal/clock"
)

func testAggregator() *Aggregator {
	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return NewAggregator(NewItemTemplates(), clock.NewStepping(start, time.Millisecond))
}

func successExecutions() []ExecutionResult {
	return []ExecutionResult{
		{Version: "1.0.0", Status: StatusSuccess},
		{Version: "2.0.0", Status: StatusSuccess},
	}
}

func TestAggregator_PhaseOrdering(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: successExecutions(),
		Artifacts: []Outcome{
			{Item: ItemLineCount, Status: StatusSuccess, Detail: "line count: 5 -> 5"},
		},
		Logs: []Outcome{
			{Item: ItemLogAnalysis, Status: StatusSuccess},
		},
	}, Evidence{})

	require.NotEmpty(t, items)

	// Phases appear in canonical order and never interleave.
	lastOrder := 0
	for _, item := range items {
		require.GreaterOrEqual(t, item.Phase.Order(), lastOrder,
			"phase %s out of order", item.Phase)
		lastOrder = item.Phase.Order()
	}

	// Exactly one summary, and it is last.
	summaries := 0
	for _, item := range items {
		if item.Phase == PhaseSummary {
			summaries++
		}
	}
	assert.Equal(t, 1, summaries)
	assert.Equal(t, PhaseSummary, items[len(items)-1].Phase)
}

func TestAggregator_TimestampsNonDecreasing(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: successExecutions(),
		Artifacts:  []Outcome{{Status: StatusSuccess}, {Status: StatusSuccess}},
	}, Evidence{})

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Timestamp.Before(items[i-1].Timestamp))
	}
}

func TestAggregator_ExecutionItems(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: []ExecutionResult{
			{Status: StatusSuccess},
			{Status: StatusError},
		},
	}, Evidence{RunLog: "logs/run.log"})

	var execs []VerificationItem
	for _, item := range items {
		if item.Phase == PhaseExecution {
			execs = append(execs, item)
		}
	}
	require.Len(t, execs, 2)

	// Missing version labels are filled from run metadata, old then new.
	assert.Equal(t, "startup and execution check (1.0.0)", execs[0].Item)
	assert.Equal(t, StatusSuccess, execs[0].Status)
	assert.Equal(t, "clean exit", execs[0].Memo)
	assert.Equal(t, "logs/run.log", execs[0].EvidenceLink)

	assert.Equal(t, "startup and execution check (2.0.0)", execs[1].Item)
	assert.Equal(t, StatusError, execs[1].Status)
}

func TestAggregator_ExecutionExitCodes(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: []ExecutionResult{
			{Version: "1.0.0", Status: StatusSuccess, ExitCode: 0},
			{Version: "2.0.0", Status: StatusError, ExitCode: 2},
			{Version: "2.0.1", Status: StatusError, ExitCode: -1},
		},
	}, Evidence{})

	var execs []VerificationItem
	for _, item := range items {
		if item.Phase == PhaseExecution {
			execs = append(execs, item)
		}
	}
	require.Len(t, execs, 3)

	assert.Equal(t, "exit code: 0", execs[0].Metric)
	// A failed run reports the exit code it actually got.
	assert.Equal(t, "exit code: 2", execs[1].Metric)
	// A version that never started has no exit status to report.
	assert.Empty(t, execs[2].Metric)
}

func TestAggregator_UnnamedOutcomesTakeTemplateNames(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: successExecutions(),
		Artifacts: []Outcome{
			{Status: StatusSuccess},
			{Status: StatusFailed, Detail: "accuracy drifted"},
		},
	}, Evidence{NewArtifact: "artifacts/new.txt"})

	var artifacts []VerificationItem
	for _, item := range items {
		if item.Phase == PhaseArtifact {
			artifacts = append(artifacts, item)
		}
	}
	require.Len(t, artifacts, 2)

	// Unnamed outcomes consume templates in declaration order.
	assert.Equal(t, "output format check", artifacts[0].Item)
	assert.Equal(t, "no differences", artifacts[0].Memo)
	assert.Equal(t, "artifacts/new.txt", artifacts[0].EvidenceLink)

	assert.Equal(t, "result accuracy check", artifacts[1].Item)
	assert.Equal(t, "accuracy drifted", artifacts[1].Memo)
}

func TestAggregator_SummaryPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		outcomes []Outcome
		want     Status
	}{
		{
			"all success",
			[]Outcome{{Status: StatusSuccess}, {Status: StatusSuccess}},
			StatusSuccess,
		},
		{
			"failed beats success",
			[]Outcome{{Status: StatusSuccess}, {Status: StatusFailed}},
			StatusFailed,
		},
		{
			"error beats failed",
			[]Outcome{{Status: StatusFailed}, {Status: StatusError}},
			StatusError,
		},
		{
			"not applicable is ignored",
			[]Outcome{{Status: StatusNotApplicable}, {Status: StatusSuccess}},
			StatusSuccess,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			agg := testAggregator()
			items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
				Executions: successExecutions(),
				Artifacts:  tc.outcomes,
			}, Evidence{})

			summary := items[len(items)-1]
			require.Equal(t, PhaseSummary, summary.Phase)
			assert.Equal(t, tc.want, summary.Status)
		})
	}
}

func TestAggregator_AllNotApplicableSummary(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Artifacts: []Outcome{{Status: StatusNotApplicable}},
		Logs:      []Outcome{{Status: StatusNotApplicable}},
	}, Evidence{})

	summary := items[len(items)-1]
	require.Equal(t, PhaseSummary, summary.Phase)
	assert.Equal(t, StatusNotApplicable, summary.Status)
}

func TestItemTemplates_ICC2SmokeOverride(t *testing.T) {
	t.Parallel()

	templates := NewItemTemplates()

	found := false
	for _, tpl := range templates.ForTool("icc2_smoke") {
		if tpl.Item == "memory usage check" {
			found = true
		}
		assert.NotEqual(t, "performance check", tpl.Item)
	}
	assert.True(t, found)

	// Other tools keep the default list.
	defaultHasPerformance := false
	for _, tpl := range templates.ForTool("anything-else") {
		if tpl.Item == "performance check" {
			defaultHasPerformance = true
		}
	}
	assert.True(t, defaultHasPerformance)
}

func TestAggregator_NamedOutcomeKeepsName(t *testing.T) {
	t.Parallel()

	agg := testAggregator()
	items := agg.BuildReportItems("sometool", "1.0.0", "2.0.0", PhaseOutcomes{
		Executions: successExecutions(),
		Artifacts: []Outcome{
			{Item: ItemLineCount, Status: StatusFailed, Detail: "line count: 2 -> 3"},
		},
	}, Evidence{OldArtifact: "a_old.txt", NewArtifact: "a_new.txt"})

	var artifact *VerificationItem
	for i := range items {
		if items[i].Phase == PhaseArtifact {
			artifact = &items[i]
		}
	}
	require.NotNil(t, artifact)
	assert.Equal(t, ItemLineCount, artifact.Item)
	assert.Equal(t, "line count: 2 -> 3", artifact.Memo)
	assert.Equal(t, "a_old.txt -> a_new.txt", artifact.EvidenceLink)
}
