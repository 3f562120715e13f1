package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/mrz1836/vercheck/internal/errors"
)

// toolConfigExtensions are the recognized per-tool config file extensions,
// tried in order.
var toolConfigExtensions = []string{".yaml", ".yml", ".json"}

// ComparisonConfig is the declarative, per-tool comparison configuration.
// It is immutable after load. Unknown keys in the file are ignored; a
// missing comparison_methods section means all checks are off, and a missing
// verification_criteria section means exact match with no tolerance.
type ComparisonConfig struct {
	// ExecuteCommand is the command template used to run a tool version.
	// Recognized placeholders: {exec}, {version}, {input}, {output}.
	ExecuteCommand string `yaml:"execute_command" mapstructure:"execute_command"`

	// OldArtifactPattern and NewArtifactPattern are globs locating the
	// artifact produced by each version. {version} is substituted before
	// matching. Empty patterns fall back to the runner's default layout.
	OldArtifactPattern string `yaml:"old_artifact_pattern" mapstructure:"old_artifact_pattern"`
	NewArtifactPattern string `yaml:"new_artifact_pattern" mapstructure:"new_artifact_pattern"`

	// InputFiles lists input files handed to the tool run.
	InputFiles []string `yaml:"input_files" mapstructure:"input_files"`

	// Parameters are extra arguments appended to the execute command.
	Parameters []string `yaml:"parameters" mapstructure:"parameters"`

	// ComparisonMethods toggles the individual comparison steps.
	ComparisonMethods ComparisonMethods `yaml:"comparison_methods" mapstructure:"comparison_methods"`

	// VerificationCriteria maps a criterion name to its parameters.
	VerificationCriteria map[string]Criterion `yaml:"verification_criteria" mapstructure:"verification_criteria"`
}

// ComparisonMethods is the comparison_methods block: each field toggles one
// comparison step, applied in the declared order.
type ComparisonMethods struct {
	FormatCheck    bool          `yaml:"format_check" mapstructure:"format_check"`
	LineCount      bool          `yaml:"line_count" mapstructure:"line_count"`
	ContentDiff    bool          `yaml:"content_diff" mapstructure:"content_diff"`
	KeywordCheck   []string      `yaml:"keyword_check" mapstructure:"keyword_check"`
	CustomPatterns []PatternSpec `yaml:"custom_patterns" mapstructure:"custom_patterns"`
}

// PatternSpec is one named custom pattern. The pattern must contain exactly
// one capturing group holding the value to extract.
type PatternSpec struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
}

// Criterion holds the parameters of one verification criterion. Pointer
// fields distinguish "unset" from explicit zero values.
type Criterion struct {
	// TolerancePercent is the allowed relative deviation for scalar checks.
	TolerancePercent *float64 `yaml:"tolerance_percent" mapstructure:"tolerance_percent"`

	// AllowedChanges permits any change when true; when false (or unset)
	// the check passes only with no disallowed change.
	AllowedChanges *bool `yaml:"allowed_changes" mapstructure:"allowed_changes"`
}

// Tolerance returns the criterion's tolerance, or def when unset.
func (c Criterion) Tolerance(def float64) float64 {
	if c.TolerancePercent != nil {
		return *c.TolerancePercent
	}
	return def
}

// ChangesAllowed reports whether the criterion permits changes.
// Unset means changes are not allowed.
func (c Criterion) ChangesAllowed() bool {
	return c.AllowedChanges != nil && *c.AllowedChanges
}

// CriterionFor looks up a criterion by name, falling back to the "default"
// entry. The second return reports whether any criterion was found.
func (c *ComparisonConfig) CriterionFor(name string) (Criterion, bool) {
	if c == nil || c.VerificationCriteria == nil {
		return Criterion{}, false
	}
	if crit, ok := c.VerificationCriteria[name]; ok {
		return crit, true
	}
	if crit, ok := c.VerificationCriteria["default"]; ok {
		return crit, true
	}
	return Criterion{}, false
}

// ToolConfigLoader locates and parses per-tool comparison configs from a
// list of search directories.
type ToolConfigLoader struct {
	dirs   []string
	logger zerolog.Logger
}

// NewToolConfigLoader creates a loader searching dirs in order.
func NewToolConfigLoader(dirs []string, logger zerolog.Logger) *ToolConfigLoader {
	return &ToolConfigLoader{
		dirs:   dirs,
		logger: logger.With().Str("component", "toolconfig").Logger(),
	}
}

// LoadToolConfig loads the comparison config for tool, searching each
// configured directory for <lowercase tool>.yaml, .yml, then .json.
//
// A missing file yields errors.ErrConfigNotFound; an unparseable file yields
// errors.ErrConfigInvalid. The resolver treats either as a signal to fall
// back to the next comparator tier.
func (l *ToolConfigLoader) LoadToolConfig(tool string) (*ComparisonConfig, error) {
	path, ok := l.findConfigFile(tool)
	if !ok {
		return nil, errors.Wrapf(errors.ErrConfigNotFound, "tool %q", tool)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigInvalid, "%s: %v", path, err)
	}

	var cfg ComparisonConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrConfigInvalid, "%s: %v", path, err)
	}

	l.logger.Debug().Str("tool", tool).Str("path", path).Msg("comparison config loaded")
	return &cfg, nil
}

// findConfigFile returns the first existing config file for tool.
func (l *ToolConfigLoader) findConfigFile(tool string) (string, bool) {
	name := strings.ToLower(tool)
	for _, dir := range l.dirs {
		for _, ext := range toolConfigExtensions {
			path := filepath.Join(dir, name+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, true
			}
		}
	}
	return "", false
}

// ListConfiguredTools returns the lowercase tool names that have a
// comparison config in any search directory, sorted and deduplicated.
func (l *ToolConfigLoader) ListConfiguredTools() []string {
	seen := make(map[string]struct{})
	for _, dir := range l.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := filepath.Ext(e.Name())
			for _, known := range toolConfigExtensions {
				if ext == known {
					name := strings.TrimSuffix(e.Name(), ext)
					seen[strings.ToLower(name)] = struct{}{}
					break
				}
			}
		}
	}

	tools := make([]string, 0, len(seen))
	for name := range seen {
		tools = append(tools, name)
	}
	sort.Strings(tools)
	return tools
}
