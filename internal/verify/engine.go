package verify

import (
	stderrors "errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/errors"
)

// RunInput is everything the engine needs to verify one tool-version pair:
// the Tool Runner's execution verdicts and the located artifact/log files.
// Empty paths mean the corresponding file was never produced.
type RunInput struct {
	Tool       string
	OldVersion string
	NewVersion string

	OldArtifact string
	NewArtifact string
	OldLog      string
	NewLog      string

	Executions []ExecutionResult
	Evidence   Evidence
}

// Engine drives the verification of one tool run: it resolves the
// comparator, invokes it inside the fault boundary, and aggregates the
// outcomes into the canonical ordered item list.
//
// The engine publishes either the full ordered list for a tool or, when the
// run fails fatally, a single Error item summarizing the condition. A
// partial item set is never returned.
type Engine struct {
	resolver *Resolver
	agg      *Aggregator
	logger   zerolog.Logger
}

// NewEngine creates an engine over the given resolver and aggregator.
func NewEngine(resolver *Resolver, agg *Aggregator, logger zerolog.Logger) *Engine {
	return &Engine{
		resolver: resolver,
		agg:      agg,
		logger:   logger.With().Str("component", "engine").Logger(),
	}
}

// Verify produces the ordered verification items for one tool run. It never
// returns an error or panics: comparator failures are downgraded to Error
// items at this boundary.
func (e *Engine) Verify(in RunInput) (items []VerificationItem) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("tool", in.Tool).Any("panic", r).
				Msg("verification run failed fatally")
			items = []VerificationItem{{
				Phase:  PhaseSummary,
				Item:   "version compatibility assessment",
				Status: StatusError,
				Memo:   fmt.Sprintf("verification aborted: %v", r),
			}}
		}
	}()

	res := e.resolver.Resolve(in.Tool)
	e.logger.Info().Str("tool", in.Tool).Str("comparator", res.Kind.String()).
		Msg("comparing versions")

	artifacts := e.safeCompare(res.Comparator.CompareArtifacts, in.OldArtifact, in.NewArtifact, errors.ErrArtifactMissing)
	logs := e.safeCompare(res.Comparator.CompareLogs, in.OldLog, in.NewLog, errors.ErrLogMissing)

	return e.agg.BuildReportItems(in.Tool, in.OldVersion, in.NewVersion, PhaseOutcomes{
		Executions: in.Executions,
		Artifacts:  artifacts,
		Logs:       logs,
	}, in.Evidence)
}

// safeCompare invokes one comparator phase inside the fault boundary. A
// panic or returned error becomes a single outcome: NotApplicable when the
// error says the required input is absent, Error otherwise, carrying the
// message as the memo. Nothing propagates to the caller.
func (e *Engine) safeCompare(fn func(string, string) ([]Outcome, error), oldPath, newPath string, missing error) (outcomes []Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn().Any("panic", r).Msg("comparator panicked")
			outcomes = []Outcome{{
				Status: StatusError,
				Detail: fmt.Sprintf("%v: %v", errors.ErrComparatorPanicked, r),
			}}
		}
	}()

	outcomes, err := fn(oldPath, newPath)
	if err != nil {
		if stderrors.Is(err, missing) {
			return []Outcome{{Status: StatusNotApplicable, Detail: err.Error()}}
		}
		e.logger.Warn().Err(err).Msg("comparator reported failure")
		return []Outcome{{Status: StatusError, Detail: err.Error()}}
	}
	return outcomes
}
