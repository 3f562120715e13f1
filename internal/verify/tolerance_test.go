package verify

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vercheck/internal/errors"
)

func TestEvaluateTolerance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		oldValue  float64
		newValue  float64
		tolerance float64
		wantPass  bool
	}{
		{"within tolerance", 100, 100.5, 1.0, true},
		{"exactly at tolerance", 100, 101, 1.0, true},
		{"beyond tolerance", 100, 102, 1.0, false},
		{"identical values", 100, 100, 1.0, true},
		{"negative drift within", 100, 99, 1.0, true},
		{"negative drift beyond", 100, 98, 1.0, false},
		{"negative baseline", -100, -101, 1.0, true},
		{"both zero", 0, 0, 1.0, true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res, err := EvaluateTolerance(tc.oldValue, tc.newValue, tc.tolerance)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPass, res.Pass)
		})
	}
}

func TestEvaluateTolerance_ZeroBaseline(t *testing.T) {
	t.Parallel()

	_, err := EvaluateTolerance(0, 5, 1.0)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrToleranceUndefined))
}

func TestEvaluateTolerance_DeltaRendering(t *testing.T) {
	t.Parallel()

	res, err := EvaluateTolerance(100, 101, 1.0)
	require.NoError(t, err)
	assert.Equal(t, "100 -> 101 (+1.0%)", res.Delta)
	assert.InDelta(t, 1.0, res.DeltaPercent, 1e-9)
}

func TestEvaluateTolerance_SignedDelta(t *testing.T) {
	t.Parallel()

	res, err := EvaluateTolerance(200, 190, 10.0)
	require.NoError(t, err)
	assert.True(t, res.Pass)
	assert.InDelta(t, -5.0, res.DeltaPercent, 1e-9)
	assert.Equal(t, "200 -> 190 (-5.0%)", res.Delta)
}
