package comparators

import (
	"fmt"
	"regexp"

	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/verify"
)

func init() { //nolint:gochecknoinits // driver-style registration
	verify.Register("icc2_smoke", func(logger zerolog.Logger) (verify.Comparator, error) {
		return NewICC2Smoke(logger), nil
	})
}

// icc2_smoke report markers.
var (
	icc2FilesRe      = regexp.MustCompile(`processed files:\s*(\d+)`)
	icc2ViolationsRe = regexp.MustCompile(`timing violations:\s*(\d+)`)
	icc2MemoryRe     = regexp.MustCompile(`memory usage:\s*(\d+)MB`)
	icc2TimeRe       = regexp.MustCompile(`processing time:\s*([\d.]+)s`)
	icc2ErrorRe      = regexp.MustCompile(`\[ERROR\]`)
)

// memory usage may grow by this much before the check fails.
const icc2MemorySlackPercent = 10.0

// ICC2Smoke compares icc2_smoke place-and-route smoke run reports. Timing
// violations must not increase across versions, the processed file set must
// match, and memory usage may only grow within a slack margin. Memory is
// optional in the report; older versions never emit it.
type ICC2Smoke struct {
	logger zerolog.Logger
}

// NewICC2Smoke creates the icc2_smoke comparator.
func NewICC2Smoke(logger zerolog.Logger) *ICC2Smoke {
	return &ICC2Smoke{logger: logger.With().Str("comparator", "icc2_smoke").Logger()}
}

// CompareArtifacts checks timing violations, the processed file count and
// memory usage.
func (c *ICC2Smoke) CompareArtifacts(oldPath, newPath string) ([]verify.Outcome, error) {
	oldText, err := readFile(oldPath)
	if err != nil {
		return nil, err
	}
	newText, err := readFile(newPath)
	if err != nil {
		return nil, err
	}

	var out []verify.Outcome

	oldViolations, oldVOK := extractInt(icc2ViolationsRe, oldText)
	newViolations, newVOK := extractInt(icc2ViolationsRe, newText)
	if oldVOK && newVOK {
		out = append(out, verify.Outcome{
			Item:   "timing_violations",
			Status: boolStatus(newViolations <= oldViolations),
			Detail: fmt.Sprintf("timing violations: %d -> %d", oldViolations, newViolations),
			Metric: "non-increasing violations",
		})
	} else {
		out = append(out, verify.Outcome{
			Item:   "timing_violations",
			Status: verify.StatusError,
			Detail: "timing violation count not reported by both versions",
		})
	}

	oldFiles, _ := extractInt(icc2FilesRe, oldText)
	newFiles, _ := extractInt(icc2FilesRe, newText)
	out = append(out, verify.Outcome{
		Item:   "processed_files",
		Status: boolStatus(oldFiles == newFiles),
		Detail: fmt.Sprintf("processed files: %d -> %d", oldFiles, newFiles),
		Metric: "identical file set",
	})

	out = append(out, c.memoryOutcome(oldText, newText))

	c.logger.Debug().Int("diff_lines", countDiffLines(oldText, newText)).
		Msg("compared icc2_smoke artifacts")
	return out, nil
}

// memoryOutcome judges memory usage growth. The marker only exists in newer
// report formats; a report pair without it is not applicable, and a new
// report that introduces the marker passes as a reporting improvement.
func (c *ICC2Smoke) memoryOutcome(oldText, newText string) verify.Outcome {
	oldMem, oldOK := extractInt(icc2MemoryRe, oldText)
	newMem, newOK := extractInt(icc2MemoryRe, newText)

	switch {
	case !oldOK && !newOK:
		return verify.Outcome{
			Item:   "memory_usage",
			Status: verify.StatusNotApplicable,
			Detail: "memory usage not reported by either version",
		}
	case !oldOK:
		return verify.Outcome{
			Item:   "memory_usage",
			Status: verify.StatusSuccess,
			Detail: fmt.Sprintf("memory usage now reported: %dMB", newMem),
		}
	case !newOK:
		return verify.Outcome{
			Item:   "memory_usage",
			Status: verify.StatusError,
			Detail: fmt.Sprintf("memory usage no longer reported (was %dMB)", oldMem),
		}
	}

	limit := float64(oldMem) * (1 + icc2MemorySlackPercent/100)
	return verify.Outcome{
		Item:   "memory_usage",
		Status: boolStatus(float64(newMem) <= limit),
		Detail: fmt.Sprintf("memory usage: %dMB -> %dMB", oldMem, newMem),
		Metric: fmt.Sprintf("growth within %g%%", icc2MemorySlackPercent),
	}
}

// CompareLogs judges processing time drift and error marker counts.
func (c *ICC2Smoke) CompareLogs(oldPath, newPath string) ([]verify.Outcome, error) {
	oldText, err := readFile(oldPath)
	if err != nil {
		return nil, err
	}
	newText, err := readFile(newPath)
	if err != nil {
		return nil, err
	}

	var out []verify.Outcome

	oldTime, oldOK := extractFloat(icc2TimeRe, oldText)
	newTime, newOK := extractFloat(icc2TimeRe, newText)
	if oldOK && newOK && oldTime > 0 {
		deltaPercent := (newTime - oldTime) / oldTime * 100
		out = append(out, verify.Outcome{
			Item:   "processing_time",
			Status: boolStatus(deltaPercent <= sampleTimeSlackPercent),
			Detail: fmt.Sprintf("processing time: %.2fs -> %.2fs (%+.1f%%)", oldTime, newTime, deltaPercent),
			Metric: fmt.Sprintf("regression within %g%%", sampleTimeSlackPercent),
		})
	} else {
		out = append(out, verify.Outcome{
			Item:   "processing_time",
			Status: verify.StatusNotApplicable,
			Detail: "processing time not reported by both versions",
		})
	}

	oldErrors := len(icc2ErrorRe.FindAllString(oldText, -1))
	newErrors := len(icc2ErrorRe.FindAllString(newText, -1))
	out = append(out, verify.Outcome{
		Item:   "error_count",
		Status: boolStatus(newErrors <= oldErrors),
		Detail: fmt.Sprintf("error markers: %d -> %d", oldErrors, newErrors),
		Metric: "non-increasing error markers",
	})
	return out, nil
}
