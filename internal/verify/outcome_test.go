package verify

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vercheck/internal/errors"
)

func TestLiftBool(t *testing.T) {
	t.Parallel()

	ok := LiftBool(true, "matched")
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "matched", ok.Detail)

	bad := LiftBool(false, "mismatch")
	assert.Equal(t, StatusFailed, bad.Status)
}

func TestLegacyComparator_ErrorIsNeverFailed(t *testing.T) {
	t.Parallel()

	comp := NewLegacyComparator(
		func(_, _ string) (bool, string, error) {
			return false, "", stderrors.New("could not open file")
		},
		nil,
	)

	outcomes, err := comp.CompareArtifacts("old", "new")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	// A check that could not run is an Error outcome, not a failure.
	assert.Equal(t, StatusError, outcomes[0].Status)
	assert.Contains(t, outcomes[0].Detail, "could not open file")
}

func TestLegacyComparator_MissingInputSurfaces(t *testing.T) {
	t.Parallel()

	comp := NewLegacyComparator(
		func(_, _ string) (bool, string, error) {
			return false, "", errors.Wrap(errors.ErrArtifactMissing, "no path")
		},
		func(_, _ string) (bool, string, error) {
			return false, "", errors.Wrap(errors.ErrLogMissing, "no path")
		},
	)

	// An absent input is not an Error outcome; the sentinel reaches the
	// caller so the engine can classify the phase as NotApplicable.
	outcomes, err := comp.CompareArtifacts("", "")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrArtifactMissing))
	assert.Empty(t, outcomes)

	outcomes, err = comp.CompareLogs("", "")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrLogMissing))
	assert.Empty(t, outcomes)
}

func TestLegacyComparator_BoolLifting(t *testing.T) {
	t.Parallel()

	comp := NewLegacyComparator(
		func(_, _ string) (bool, string, error) { return true, "artifacts match", nil },
		func(_, _ string) (bool, string, error) { return false, "log drift", nil },
	)

	artifacts, err := comp.CompareArtifacts("old", "new")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, StatusSuccess, artifacts[0].Status)
	assert.Equal(t, "artifacts match", artifacts[0].Detail)

	logs, err := comp.CompareLogs("old", "new")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, StatusFailed, logs[0].Status)
}

func TestLegacyComparator_NilFuncYieldsNothing(t *testing.T) {
	t.Parallel()

	comp := NewLegacyComparator(nil, nil)

	outcomes, err := comp.CompareArtifacts("old", "new")
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestStatusSeverity(t *testing.T) {
	t.Parallel()

	assert.Greater(t, StatusError.Severity(), StatusFailed.Severity())
	assert.Greater(t, StatusFailed.Severity(), StatusSuccess.Severity())
	assert.Greater(t, StatusSuccess.Severity(), StatusNotApplicable.Severity())
}

func TestPhaseOrder(t *testing.T) {
	t.Parallel()

	assert.Less(t, PhaseExecution.Order(), PhaseArtifact.Order())
	assert.Less(t, PhaseArtifact.Order(), PhaseLog.Order())
	assert.Less(t, PhaseLog.Order(), PhaseSummary.Order())
}
