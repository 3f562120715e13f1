package comparators

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/verify"
)

func init() { //nolint:gochecknoinits // driver-style registration
	verify.Register("demotool", func(zerolog.Logger) (verify.Comparator, error) {
		return verify.NewLegacyComparator(compareDemoArtifacts, compareDemoLogs), nil
	})
}

// demotool output markers. The log error scan is intentionally broad,
// matching anything that smells like a failure.
var (
	demoTimeRe     = regexp.MustCompile(`processing time:\s*(\d+\.\d+)s`)
	demoLogErrorRe = regexp.MustCompile(`(?i)error|exception|fail|fault`)
)

// compareDemoArtifacts is a boolean-style artifact comparison kept in the
// older contract shape to exercise the lifting adapter. It averages the
// per-file processing times when both reports carry them, and otherwise
// falls back to a plain content diff.
func compareDemoArtifacts(oldPath, newPath string) (bool, string, error) {
	oldText, err := readFile(oldPath)
	if err != nil {
		return false, "", err
	}
	newText, err := readFile(newPath)
	if err != nil {
		return false, "", err
	}

	oldAvg, oldN := averageTimes(oldText)
	newAvg, newN := averageTimes(newText)
	if oldN > 0 && newN > 0 {
		if newAvg <= oldAvg {
			improvement := (oldAvg - newAvg) / oldAvg * 100
			return true, fmt.Sprintf("processing time improved: %.1fs -> %.1fs (%.1f%%)",
				oldAvg, newAvg, improvement), nil
		}
		return false, fmt.Sprintf("processing time regressed: %.1fs -> %.1fs", oldAvg, newAvg), nil
	}

	if changed := countDiffLines(oldText, newText); changed > 0 {
		return true, fmt.Sprintf("artifacts differ (%d lines)", changed), nil
	}
	return true, "artifacts match", nil
}

// compareDemoLogs is the log-phase counterpart. Missing logs are tolerated:
// demotool runs do not always produce them.
func compareDemoLogs(oldPath, newPath string) (bool, string, error) {
	oldText, oldErr := readFile(oldPath)
	newText, newErr := readFile(newPath)
	if oldErr != nil || newErr != nil {
		return true, "log files not found", nil
	}

	oldErrors := len(demoLogErrorRe.FindAllString(oldText, -1))
	newErrors := len(demoLogErrorRe.FindAllString(newText, -1))
	if newErrors > oldErrors {
		return false, fmt.Sprintf("error mentions increased: %d -> %d", oldErrors, newErrors), nil
	}
	return true, fmt.Sprintf("error mentions: %d -> %d", oldErrors, newErrors), nil
}

// averageTimes averages every processing-time marker in text.
func averageTimes(text string) (avg float64, n int) {
	total := 0.0
	for _, m := range demoTimeRe.FindAllStringSubmatch(text, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		total += v
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return total / float64(n), n
}
