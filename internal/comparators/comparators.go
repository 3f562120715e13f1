// Package comparators holds the tool-specific comparator implementations.
// Each tool registers its factory with the verify registry at init time;
// importing this package (blank import from the CLI) is what makes the
// tools resolvable by name.
package comparators

import (
	"os"
	"regexp"
	"strconv"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/mrz1836/vercheck/internal/errors"
)

// readFile reads a comparison input. A missing file is reported via
// errors.ErrArtifactMissing so the engine can classify the phase as
// not applicable instead of failing it.
func readFile(path string) (string, error) {
	if path == "" {
		return "", errors.Wrap(errors.ErrArtifactMissing, "no path")
	}
	data, err := os.ReadFile(path) //nolint:gosec // paths come from run discovery
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(errors.ErrArtifactMissing, "%s", path)
		}
		return "", err
	}
	return string(data), nil
}

// extractFloat returns the first capture of re in text as a float, plus
// whether anything matched at all.
func extractFloat(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// extractInt returns the first capture of re in text as an int, plus
// whether anything matched.
func extractInt(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// countDiffLines counts added and removed lines in a unified diff of the
// two texts.
func countDiffLines(oldText, newText string) int {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:       difflib.SplitLines(oldText),
		B:       difflib.SplitLines(newText),
		Context: 1,
	})
	if err != nil {
		return 0
	}
	changed := 0
	for _, line := range difflib.SplitLines(diff) {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '+', '-':
			if len(line) > 2 && (line[:3] == "+++" || line[:3] == "---") {
				continue
			}
			changed++
		}
	}
	return changed
}
