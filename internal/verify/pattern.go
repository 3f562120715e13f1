package verify

import (
	"regexp"
	"strconv"

	"github.com/mrz1836/vercheck/internal/errors"
)

// Extracted is the value captured by a custom pattern. The captured text is
// converted to a float when it parses as a number; otherwise the raw string
// stands on its own and tolerance evaluation does not apply.
type Extracted struct {
	Raw       string
	Value     float64
	IsNumeric bool
}

// ExtractPattern evaluates a named regular expression against a text blob
// and returns the first captured value.
//
// The pattern must contain at least one capturing group; the first group is
// the extracted value. A pattern that does not match returns
// errors.ErrPatternNotFound, which is distinct from a match with an empty
// capture; callers must treat it as "value absent", never as zero.
func ExtractPattern(name, pattern, text string) (Extracted, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Extracted{}, errors.Wrapf(err, "pattern %q does not compile", name)
	}
	if re.NumSubexp() < 1 {
		return Extracted{}, errors.Wrapf(errors.ErrPatternNoCaptureGroup, "pattern %q", name)
	}

	m := re.FindStringSubmatch(text)
	if m == nil {
		return Extracted{}, errors.Wrapf(errors.ErrPatternNotFound, "pattern %q", name)
	}

	raw := m[1]
	if v, perr := strconv.ParseFloat(raw, 64); perr == nil {
		return Extracted{Raw: raw, Value: v, IsNumeric: true}, nil
	}
	return Extracted{Raw: raw}, nil
}
