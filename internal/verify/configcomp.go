package verify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/config"
	"github.com/mrz1836/vercheck/internal/errors"
)

// Canonical item names emitted by the config-based comparator. Custom
// pattern items use the pattern's declared name instead.
const (
	ItemFormatCheck  = "format_check"
	ItemLineCount    = "line_count"
	ItemContentDiff  = "content_diff"
	ItemKeywordCheck = "keyword_check"
	ItemLogAnalysis  = "log_analysis"
)

// defaultFormatSlackPercent is the file-size slack applied by format_check
// when changes are allowed but no tolerance is configured.
const defaultFormatSlackPercent = 50.0

// ConfigComparator interprets a declarative ComparisonConfig into a list of
// verification outcomes. Each enabled method runs independently, in the
// order the methods are declared; a step whose required file is missing
// yields a NotApplicable outcome for that step without aborting the rest.
type ConfigComparator struct {
	cfg    *config.ComparisonConfig
	logger zerolog.Logger
}

// NewConfigComparator creates a comparator driven by cfg.
func NewConfigComparator(cfg *config.ComparisonConfig, logger zerolog.Logger) *ConfigComparator {
	return &ConfigComparator{
		cfg:    cfg,
		logger: logger.With().Str("component", "config_comparator").Logger(),
	}
}

// CompareArtifacts runs every enabled comparison method against the artifact
// pair and returns one outcome per check (one per keyword-check aggregate,
// one per custom pattern).
func (c *ConfigComparator) CompareArtifacts(oldPath, newPath string) ([]Outcome, error) {
	methods := c.cfg.ComparisonMethods

	if !filesReadable(oldPath, newPath) {
		c.logger.Info().Str("old", oldPath).Str("new", newPath).
			Msg("artifact pair incomplete, artifact checks not applicable")
		return c.notApplicableOutcomes("artifact missing"), nil
	}

	var outcomes []Outcome
	if methods.FormatCheck {
		outcomes = append(outcomes, c.checkFormat(oldPath, newPath))
	}
	if methods.LineCount {
		outcomes = append(outcomes, c.checkLineCount(oldPath, newPath))
	}
	if methods.ContentDiff {
		outcomes = append(outcomes, c.checkContentDiff(oldPath, newPath))
	}
	if len(methods.KeywordCheck) > 0 {
		outcomes = append(outcomes, c.checkKeywords(oldPath, newPath, methods.KeywordCheck))
	}
	for _, spec := range methods.CustomPatterns {
		outcomes = append(outcomes, c.checkCustomPattern(oldPath, newPath, spec))
	}
	return outcomes, nil
}

// CompareLogs analyzes the execution log pair for error and warning markers.
// The check passes when neither marker count increases from old to new.
func (c *ConfigComparator) CompareLogs(oldPath, newPath string) ([]Outcome, error) {
	if !filesReadable(oldPath, newPath) {
		return []Outcome{{
			Item:   ItemLogAnalysis,
			Status: StatusNotApplicable,
			Detail: "log missing",
		}}, nil
	}

	oldText, err := readText(oldPath)
	if err != nil {
		return []Outcome{errorOutcome(ItemLogAnalysis, err)}, nil
	}
	newText, err := readText(newPath)
	if err != nil {
		return []Outcome{errorOutcome(ItemLogAnalysis, err)}, nil
	}

	oldErrs, oldWarns := countMarkers(oldText)
	newErrs, newWarns := countMarkers(newText)

	status := StatusSuccess
	if newErrs > oldErrs || newWarns > oldWarns {
		status = StatusFailed
	}
	return []Outcome{{
		Item:   ItemLogAnalysis,
		Status: status,
		Detail: fmt.Sprintf("errors: %d -> %d; warnings: %d -> %d",
			oldErrs, newErrs, oldWarns, newWarns),
		Metric: "non-increasing error markers",
	}}, nil
}

// notApplicableOutcomes emits one NotApplicable outcome per enabled artifact
// method, so a missing artifact pair still produces the full item shape.
func (c *ConfigComparator) notApplicableOutcomes(memo string) []Outcome {
	methods := c.cfg.ComparisonMethods
	var outcomes []Outcome
	add := func(item string) {
		outcomes = append(outcomes, Outcome{Item: item, Status: StatusNotApplicable, Detail: memo})
	}
	if methods.FormatCheck {
		add(ItemFormatCheck)
	}
	if methods.LineCount {
		add(ItemLineCount)
	}
	if methods.ContentDiff {
		add(ItemContentDiff)
	}
	if len(methods.KeywordCheck) > 0 {
		add(ItemKeywordCheck)
	}
	for _, spec := range methods.CustomPatterns {
		add(spec.Name)
	}
	return outcomes
}

// checkFormat compares file extension and size. With allowed_changes=false
// (or unset) any size change fails; otherwise the size may drift within the
// configured tolerance.
func (c *ConfigComparator) checkFormat(oldPath, newPath string) Outcome {
	crit, _ := c.cfg.CriterionFor("format")
	allowed := crit.ChangesAllowed()
	metric := fmt.Sprintf("allowed changes: %t", allowed)

	if oldExt, newExt := filepath.Ext(oldPath), filepath.Ext(newPath); oldExt != newExt {
		return Outcome{
			Item:   ItemFormatCheck,
			Status: StatusFailed,
			Detail: fmt.Sprintf("file extension changed: %s -> %s", oldExt, newExt),
			Metric: metric,
		}
	}

	oldSize, err := fileSize(oldPath)
	if err != nil {
		return errorOutcome(ItemFormatCheck, err)
	}
	newSize, err := fileSize(newPath)
	if err != nil {
		return errorOutcome(ItemFormatCheck, err)
	}

	memo := fmt.Sprintf("size: %d -> %d bytes", oldSize, newSize)
	deltaPercent := sizeDeltaPercent(oldSize, newSize)

	var pass bool
	if allowed {
		pass = absFloat(deltaPercent) <= crit.Tolerance(defaultFormatSlackPercent)
	} else {
		pass = oldSize == newSize
	}
	if !pass {
		memo = fmt.Sprintf("%s (%+.1f%%)", memo, deltaPercent)
	}

	out := LiftBool(pass, memo)
	out.Item = ItemFormatCheck
	out.Metric = metric
	return out
}

// checkLineCount compares line counts. Line count has no tolerance concept;
// only an exact match passes.
func (c *ConfigComparator) checkLineCount(oldPath, newPath string) Outcome {
	oldCount, err := countLines(oldPath)
	if err != nil {
		return errorOutcome(ItemLineCount, err)
	}
	newCount, err := countLines(newPath)
	if err != nil {
		return errorOutcome(ItemLineCount, err)
	}

	out := LiftBool(oldCount == newCount,
		fmt.Sprintf("line count: %d -> %d", oldCount, newCount))
	out.Item = ItemLineCount
	out.Metric = "exact match required"
	return out
}

// checkContentDiff performs a line-based unified diff; any differing line
// fails the check.
func (c *ConfigComparator) checkContentDiff(oldPath, newPath string) Outcome {
	oldText, err := readText(oldPath)
	if err != nil {
		return errorOutcome(ItemContentDiff, err)
	}
	newText, err := readText(newPath)
	if err != nil {
		return errorOutcome(ItemContentDiff, err)
	}

	changed, err := diffLineCount(oldText, newText, oldPath, newPath)
	if err != nil {
		return errorOutcome(ItemContentDiff, err)
	}

	memo := "content identical"
	if changed > 0 {
		memo = fmt.Sprintf("%d differing lines", changed)
	}
	out := LiftBool(changed == 0, memo)
	out.Item = ItemContentDiff
	out.Metric = "zero differing lines"
	return out
}

// checkKeywords compares the occurrence count of each configured keyword.
// Keywords are expected markers that must not disappear, so the check passes
// only when every count is non-decreasing from old to new.
func (c *ConfigComparator) checkKeywords(oldPath, newPath string, keywords []string) Outcome {
	oldText, err := readText(oldPath)
	if err != nil {
		return errorOutcome(ItemKeywordCheck, err)
	}
	newText, err := readText(newPath)
	if err != nil {
		return errorOutcome(ItemKeywordCheck, err)
	}

	pass := true
	deltas := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		oldCount := strings.Count(oldText, kw)
		newCount := strings.Count(newText, kw)
		if newCount < oldCount {
			pass = false
		}
		deltas = append(deltas, fmt.Sprintf("%q: %d -> %d", kw, oldCount, newCount))
	}

	out := LiftBool(pass, strings.Join(deltas, "; "))
	out.Item = ItemKeywordCheck
	out.Metric = "non-decreasing occurrences"
	return out
}

// checkCustomPattern extracts the pattern's value from both files and
// applies the tolerance registered under the pattern's name (falling back to
// the "default" criterion, then the package-wide default tolerance).
//
// A pattern absent from either file means the check could not run: the
// outcome is Error, never a zero-valued comparison. One pattern's absence
// does not suppress evaluation of the others.
func (c *ConfigComparator) checkCustomPattern(oldPath, newPath string, spec config.PatternSpec) Outcome {
	oldText, err := readText(oldPath)
	if err != nil {
		return errorOutcome(spec.Name, err)
	}
	newText, err := readText(newPath)
	if err != nil {
		return errorOutcome(spec.Name, err)
	}

	oldVal, err := ExtractPattern(spec.Name, spec.Pattern, oldText)
	if err != nil {
		return errorOutcome(spec.Name, errors.Wrap(err, "old artifact"))
	}
	newVal, err := ExtractPattern(spec.Name, spec.Pattern, newText)
	if err != nil {
		return errorOutcome(spec.Name, errors.Wrap(err, "new artifact"))
	}

	// Non-numeric captures have no tolerance semantics; only an exact
	// match passes.
	if !oldVal.IsNumeric || !newVal.IsNumeric {
		out := LiftBool(oldVal.Raw == newVal.Raw,
			fmt.Sprintf("%q -> %q", oldVal.Raw, newVal.Raw))
		out.Item = spec.Name
		out.Metric = "exact match required"
		return out
	}

	crit, _ := c.cfg.CriterionFor(spec.Name)
	tolerance := crit.Tolerance(DefaultTolerancePercent)

	res, err := EvaluateTolerance(oldVal.Value, newVal.Value, tolerance)
	if err != nil {
		return errorOutcome(spec.Name, err)
	}

	out := LiftBool(res.Pass, res.Delta)
	out.Item = spec.Name
	out.Metric = fmt.Sprintf("tolerance: %g%%", tolerance)
	return out
}

// errorOutcome wraps a failure to run a check into an Error outcome.
func errorOutcome(item string, err error) Outcome {
	return Outcome{
		Item:   item,
		Status: StatusError,
		Detail: fmt.Sprintf("check could not run: %v", err),
	}
}

// filesReadable reports whether both paths name existing regular files.
func filesReadable(paths ...string) bool {
	for _, p := range paths {
		if p == "" {
			return false
		}
		info, err := os.Stat(p)
		if err != nil || info.IsDir() {
			return false
		}
	}
	return true
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(errors.ErrArtifactMissing, "%s: %v", path, err)
	}
	return string(data), nil
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrArtifactMissing, "%s: %v", path, err)
	}
	return info.Size(), nil
}

// countLines counts newline-terminated lines, with a trailing partial line
// counting as one.
func countLines(path string) (int, error) {
	text, err := readText(path)
	if err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n, nil
}

// diffLineCount returns the number of added or removed lines between two
// texts, excluding diff headers.
func diffLineCount(oldText, newText, oldName, newName string) (int, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: oldName,
		ToFile:   newName,
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "+++") || strings.HasPrefix(line, "---") {
			continue
		}
		if strings.HasPrefix(line, "+") || strings.HasPrefix(line, "-") {
			changed++
		}
	}
	return changed, nil
}

// countMarkers counts lines carrying error or warning markers,
// case-insensitively.
func countMarkers(text string) (errs, warns int) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") {
			errs++
		}
		if strings.Contains(lower, "warning") {
			warns++
		}
	}
	return errs, warns
}

func sizeDeltaPercent(oldSize, newSize int64) float64 {
	if oldSize == 0 {
		if newSize == 0 {
			return 0
		}
		return 100
	}
	return float64(newSize-oldSize) / float64(oldSize) * 100
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// Ensure ConfigComparator implements Comparator.
var _ Comparator = (*ConfigComparator)(nil)
