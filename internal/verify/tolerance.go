package verify

import (
	"fmt"
	"math"

	"github.com/mrz1836/vercheck/internal/errors"
)

// DefaultTolerancePercent is the method-wide fallback applied to custom
// patterns that have no criterion registered under their name.
const DefaultTolerancePercent = 1.0

// ToleranceResult reports how an old/new scalar pair compared against a
// relative tolerance.
type ToleranceResult struct {
	// Pass is true when |DeltaPercent| <= the configured tolerance.
	Pass bool

	// DeltaPercent is (new - old) / |old| * 100, signed.
	DeltaPercent float64

	// Delta is a human-readable rendering of the change,
	// e.g. "100 -> 101 (+1.0%)".
	Delta string
}

// EvaluateTolerance compares an old and new scalar value against a tolerance
// expressed as a percentage.
//
// The relative delta uses |old| in the denominator so that the sign of the
// baseline does not flip the judgment. When old == 0 and new != old the
// relative tolerance is undefined and errors.ErrToleranceUndefined is
// returned; when both are zero the values are identical and the check
// passes with a zero delta.
func EvaluateTolerance(oldValue, newValue, tolerancePercent float64) (ToleranceResult, error) {
	if oldValue == 0 {
		if newValue != oldValue {
			return ToleranceResult{}, errors.Wrapf(errors.ErrToleranceUndefined,
				"old=0 new=%v", newValue)
		}
		return ToleranceResult{
			Pass:  true,
			Delta: formatDelta(oldValue, newValue, 0),
		}, nil
	}

	deltaPercent := (newValue - oldValue) / math.Abs(oldValue) * 100
	return ToleranceResult{
		Pass:         math.Abs(deltaPercent) <= tolerancePercent,
		DeltaPercent: deltaPercent,
		Delta:        formatDelta(oldValue, newValue, deltaPercent),
	}, nil
}

func formatDelta(oldValue, newValue, deltaPercent float64) string {
	return fmt.Sprintf("%s -> %s (%+.1f%%)",
		formatScalar(oldValue), formatScalar(newValue), deltaPercent)
}

// formatScalar renders a value without trailing zero noise.
func formatScalar(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
