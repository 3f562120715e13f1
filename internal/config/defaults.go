package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values applied when no config file, env var, or flag overrides them.
const (
	// DefaultRunnerTimeout bounds a single tool-version execution.
	DefaultRunnerTimeout = 10 * time.Minute

	// DefaultToolsDir is where tool installations live.
	DefaultToolsDir = "Apps"

	// DefaultInputDir is where tool input files live.
	DefaultInputDir = "inputs"

	// DefaultArtifactDir is where tool runs deposit artifacts.
	DefaultArtifactDir = "artifacts"

	// DefaultLogDir is where execution logs are written.
	DefaultLogDir = "logs"

	// DefaultCSVReport is the CSV report filename.
	DefaultCSVReport = "report.csv"

	// DefaultHTMLReport is the HTML report filename.
	DefaultHTMLReport = "report.html"
)

// defaultConfigDirs are searched in order for per-tool comparison configs.
func defaultConfigDirs() []string {
	return []string{"comparators/configs", "configs"}
}

// setDefaults registers built-in defaults on a viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.tools_dir", DefaultToolsDir)
	v.SetDefault("paths.input_dir", DefaultInputDir)
	v.SetDefault("paths.artifact_dir", DefaultArtifactDir)
	v.SetDefault("paths.log_dir", DefaultLogDir)
	v.SetDefault("paths.config_dirs", defaultConfigDirs())
	v.SetDefault("runner.timeout", DefaultRunnerTimeout)
	v.SetDefault("report.csv_path", DefaultCSVReport)
	v.SetDefault("report.html_path", DefaultHTMLReport)
	v.SetDefault("report.disabled", false)
}
