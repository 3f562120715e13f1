package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vercheck/internal/errors"
)

const sampleToolConfig = `execute_command: "{exec} --input {input} --output {output}"
old_artifact_pattern: "sampletool_{version}_*.txt"
new_artifact_pattern: "sampletool_{version}_*.txt"
input_files:
  - data1.txt
  - data2.txt
parameters:
  - "--fast"
comparison_methods:
  format_check: true
  line_count: true
  content_diff: false
  keyword_check:
    - "done"
    - "passed"
  custom_patterns:
    - name: accuracy
      pattern: 'accuracy:\s*(\d+\.\d+)'
verification_criteria:
  accuracy:
    tolerance_percent: 5.0
  format:
    allowed_changes: true
    tolerance_percent: 50.0
  default:
    tolerance_percent: 1.0
`

func writeToolConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestToolConfigLoader_LoadYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeToolConfig(t, dir, "sampletool.yaml", sampleToolConfig)

	loader := NewToolConfigLoader([]string{dir}, zerolog.Nop())
	cfg, err := loader.LoadToolConfig("SampleTool")
	require.NoError(t, err)

	assert.Equal(t, "{exec} --input {input} --output {output}", cfg.ExecuteCommand)
	assert.Equal(t, []string{"data1.txt", "data2.txt"}, cfg.InputFiles)
	assert.Equal(t, []string{"--fast"}, cfg.Parameters)

	assert.True(t, cfg.ComparisonMethods.FormatCheck)
	assert.True(t, cfg.ComparisonMethods.LineCount)
	assert.False(t, cfg.ComparisonMethods.ContentDiff)
	assert.Equal(t, []string{"done", "passed"}, cfg.ComparisonMethods.KeywordCheck)

	require.Len(t, cfg.ComparisonMethods.CustomPatterns, 1)
	assert.Equal(t, "accuracy", cfg.ComparisonMethods.CustomPatterns[0].Name)

	crit, ok := cfg.CriterionFor("accuracy")
	require.True(t, ok)
	assert.InDelta(t, 5.0, crit.Tolerance(1.0), 1e-9)
}

func TestToolConfigLoader_NotFound(t *testing.T) {
	t.Parallel()

	loader := NewToolConfigLoader([]string{t.TempDir()}, zerolog.Nop())
	_, err := loader.LoadToolConfig("nosuchtool")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrConfigNotFound))
}

func TestToolConfigLoader_InvalidFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeToolConfig(t, dir, "broken.yaml", "comparison_methods: [not a map\n")

	loader := NewToolConfigLoader([]string{dir}, zerolog.Nop())
	_, err := loader.LoadToolConfig("broken")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrConfigInvalid))
}

func TestToolConfigLoader_SearchOrder(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeToolConfig(t, first, "mytool.yaml", "parameters: [\"--from-first\"]\n")
	writeToolConfig(t, second, "mytool.yaml", "parameters: [\"--from-second\"]\n")

	loader := NewToolConfigLoader([]string{first, second}, zerolog.Nop())
	cfg, err := loader.LoadToolConfig("mytool")
	require.NoError(t, err)
	assert.Equal(t, []string{"--from-first"}, cfg.Parameters)
}

func TestToolConfigLoader_ListConfiguredTools(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	writeToolConfig(t, first, "beta.yaml", "parameters: []\n")
	writeToolConfig(t, first, "alpha.yml", "parameters: []\n")
	writeToolConfig(t, second, "beta.json", "{}")
	writeToolConfig(t, second, "README.md", "not a config")

	loader := NewToolConfigLoader([]string{first, second}, zerolog.Nop())
	assert.Equal(t, []string{"alpha", "beta"}, loader.ListConfiguredTools())
}

func TestCriterion(t *testing.T) {
	t.Parallel()

	t.Run("tolerance default", func(t *testing.T) {
		t.Parallel()
		assert.InDelta(t, 1.0, Criterion{}.Tolerance(1.0), 1e-9)
	})

	t.Run("changes not allowed by default", func(t *testing.T) {
		t.Parallel()
		assert.False(t, Criterion{}.ChangesAllowed())
	})

	t.Run("fallback to default criterion", func(t *testing.T) {
		t.Parallel()

		tol := 2.5
		cfg := &ComparisonConfig{
			VerificationCriteria: map[string]Criterion{
				"default": {TolerancePercent: &tol},
			},
		}
		crit, ok := cfg.CriterionFor("anything")
		require.True(t, ok)
		assert.InDelta(t, 2.5, crit.Tolerance(1.0), 1e-9)
	})

	t.Run("nil config has no criteria", func(t *testing.T) {
		t.Parallel()

		var cfg *ComparisonConfig
		_, ok := cfg.CriterionFor("anything")
		assert.False(t, ok)
	})
}
