package verify

import (
	stderrors "errors"
	"fmt"

	"github.com/mrz1836/vercheck/internal/errors"
)

// Outcome is the structured result of one comparator check. Comparators
// never report bare booleans; legacy boolean-style implementations are
// lifted into this shape at the boundary so that Error is never collapsed
// into Failed.
type Outcome struct {
	// Item is the canonical check name. Class-based comparators may leave
	// it empty, in which case the aggregator supplies the name from the
	// tool's item templates.
	Item string

	// Status is the judgment of the check.
	Status Status

	// Detail is a human-readable explanation of the judgment.
	Detail string

	// Metric is the criterion the check applied, when quantitative.
	Metric string

	// EvidencePath optionally points at a file substantiating the result,
	// such as a written diff.
	EvidencePath string
}

// Comparator is the polymorphic comparison contract. Implementations compare
// an old/new file pair and yield structured outcomes for the artifact and
// log phases.
//
// A nil or missing input path means the corresponding file was never
// produced; implementations should report NotApplicable outcomes (or return
// an error wrapping ErrArtifactMissing/ErrLogMissing) rather than failing.
// Returned errors and panics are absorbed at the resolver boundary and
// downgraded to a single Error item; they never propagate past the per-tool
// pipeline.
type Comparator interface {
	CompareArtifacts(oldPath, newPath string) ([]Outcome, error)
	CompareLogs(oldPath, newPath string) ([]Outcome, error)
}

// LiftBool converts a boolean check result into an Outcome. True lifts to
// Success, false to Failed. Use this only for checks that actually ran;
// a check that could not run must be reported as Error or NotApplicable.
func LiftBool(ok bool, detail string) Outcome {
	status := StatusFailed
	if ok {
		status = StatusSuccess
	}
	return Outcome{Status: status, Detail: detail}
}

// LegacyCompareFunc is the shape of an older-style comparison function: a
// pass/fail boolean plus a message, with a separate error for checks that
// could not run at all.
type LegacyCompareFunc func(oldPath, newPath string) (ok bool, detail string, err error)

// legacyComparator adapts a pair of LegacyCompareFuncs to the Comparator
// contract, lifting booleans without information loss: a returned error
// becomes an Error outcome, never Failed.
type legacyComparator struct {
	artifacts LegacyCompareFunc
	logs      LegacyCompareFunc
}

// NewLegacyComparator wraps boolean-style artifact and log comparison
// functions into a Comparator. Either function may be nil, in which case the
// corresponding phase yields no outcomes.
func NewLegacyComparator(artifacts, logs LegacyCompareFunc) Comparator {
	return &legacyComparator{artifacts: artifacts, logs: logs}
}

func (c *legacyComparator) CompareArtifacts(oldPath, newPath string) ([]Outcome, error) {
	return liftLegacy(c.artifacts, oldPath, newPath)
}

func (c *legacyComparator) CompareLogs(oldPath, newPath string) ([]Outcome, error) {
	return liftLegacy(c.logs, oldPath, newPath)
}

func liftLegacy(fn LegacyCompareFunc, oldPath, newPath string) ([]Outcome, error) {
	if fn == nil {
		return nil, nil
	}
	ok, detail, err := fn(oldPath, newPath)
	if err != nil {
		// Absent inputs pass through to the engine, which classifies the
		// phase as NotApplicable. Only checks that genuinely could not run
		// become Error outcomes.
		if stderrors.Is(err, errors.ErrArtifactMissing) || stderrors.Is(err, errors.ErrLogMissing) {
			return nil, err
		}
		return []Outcome{{
			Status: StatusError,
			Detail: fmt.Sprintf("check could not run: %v", err),
		}}, nil
	}
	return []Outcome{LiftBool(ok, detail)}, nil
}
