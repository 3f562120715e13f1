package comparators

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/verify"
)

func init() { //nolint:gochecknoinits // driver-style registration
	verify.Register("sampletool", func(logger zerolog.Logger) (verify.Comparator, error) {
		return NewSampleTool(logger), nil
	})
}

// sampletool output markers.
var (
	sampleFileResultRe = regexp.MustCompile(`(?m)^result for file:`)
	sampleLinesRe      = regexp.MustCompile(`lines:\s*(\d+)`)
	sampleTimeRe       = regexp.MustCompile(`processing time:\s*([\d.]+)s`)
	sampleErrorRe      = regexp.MustCompile(`\[ERROR\]`)
)

// processing time is allowed to regress by this much before the check fails.
const sampleTimeSlackPercent = 10.0

// SampleTool compares sampletool text-analysis reports. It checks that the
// new version processed the same file set and that the aggregate line count
// stayed stable, and judges processing time and error counts from the logs.
type SampleTool struct {
	logger zerolog.Logger
}

// NewSampleTool creates the sampletool comparator.
func NewSampleTool(logger zerolog.Logger) *SampleTool {
	return &SampleTool{logger: logger.With().Str("comparator", "sampletool").Logger()}
}

// CompareArtifacts checks the processed-file count and aggregate line count
// of the two reports.
func (c *SampleTool) CompareArtifacts(oldPath, newPath string) ([]verify.Outcome, error) {
	oldText, err := readFile(oldPath)
	if err != nil {
		return nil, err
	}
	newText, err := readFile(newPath)
	if err != nil {
		return nil, err
	}

	oldFiles := len(sampleFileResultRe.FindAllString(oldText, -1))
	newFiles := len(sampleFileResultRe.FindAllString(newText, -1))
	c.logger.Debug().Int("old_files", oldFiles).Int("new_files", newFiles).
		Msg("compared processed file counts")

	out := []verify.Outcome{{
		Item:   "processed_files",
		Status: boolStatus(oldFiles == newFiles),
		Detail: fmt.Sprintf("processed files: %d -> %d", oldFiles, newFiles),
		Metric: "identical file set",
	}}

	oldLines := sumMatches(sampleLinesRe, oldText)
	newLines := sumMatches(sampleLinesRe, newText)
	switch {
	case oldLines == 0 && newLines == 0:
		out = append(out, verify.Outcome{
			Item:   "total_lines",
			Status: verify.StatusNotApplicable,
			Detail: "no line statistics in either report",
		})
	case oldLines == 0:
		out = append(out, verify.Outcome{
			Item:   "total_lines",
			Status: verify.StatusError,
			Detail: fmt.Sprintf("old report has no line statistics, new reports %d", newLines),
		})
	default:
		res, terr := verify.EvaluateTolerance(float64(oldLines), float64(newLines), verify.DefaultTolerancePercent)
		if terr != nil {
			out = append(out, verify.Outcome{
				Item:   "total_lines",
				Status: verify.StatusError,
				Detail: terr.Error(),
			})
			break
		}
		out = append(out, verify.Outcome{
			Item:   "total_lines",
			Status: boolStatus(res.Pass),
			Detail: "total lines: " + res.Delta,
			Metric: fmt.Sprintf("tolerance: %g%%", verify.DefaultTolerancePercent),
		})
	}
	return out, nil
}

// CompareLogs judges processing time drift and error marker counts.
func (c *SampleTool) CompareLogs(oldPath, newPath string) ([]verify.Outcome, error) {
	oldText, err := readFile(oldPath)
	if err != nil {
		return nil, err
	}
	newText, err := readFile(newPath)
	if err != nil {
		return nil, err
	}

	var out []verify.Outcome

	oldTime, oldOK := extractFloat(sampleTimeRe, oldText)
	newTime, newOK := extractFloat(sampleTimeRe, newText)
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

	oldErrors := len(sampleErrorRe.FindAllString(oldText, -1))
	newErrors := len(sampleErrorRe.FindAllString(newText, -1))
	out = append(out, verify.Outcome{
		Item:   "error_count",
		Status: boolStatus(newErrors <= oldErrors),
		Detail: fmt.Sprintf("error markers: %d -> %d", oldErrors, newErrors),
		Metric: "non-increasing error markers",
	})
	return out, nil
}

// sumMatches sums every integer captured by re across text.
func sumMatches(re *regexp.Regexp, text string) int {
	total := 0
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		if v, err := strconv.Atoi(m[1]); err == nil {
			total += v
		}
	}
	return total
}

// boolStatus maps a check result that actually ran to Success or Failed.
func boolStatus(ok bool) verify.Status {
	if ok {
		return verify.StatusSuccess
	}
	return verify.StatusFailed
}
