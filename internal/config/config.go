// Package config provides configuration management for vercheck with layered
// precedence.
//
// Application configuration sources are loaded in the following order
// (highest precedence first):
//  1. CLI flags (bound by the cli package)
//  2. Environment variables (VERCHECK_* prefix)
//  3. Project config (.vercheck/config.yaml)
//  4. Global config (~/.vercheck/config.yaml)
//  5. Built-in defaults
//
// The package also loads per-tool comparison configs
// (configs/<tool>.{yaml,yml,json}); see toolconfig.go.
//
// IMPORTANT: This package may import internal/errors, but MUST NOT import
// internal/verify or other internal packages.
package config

import "time"

// Config is the root configuration structure for vercheck.
type Config struct {
	// Paths contains the directory layout for tools, inputs, artifacts,
	// logs, and comparison configs.
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`

	// Runner contains settings for external tool execution.
	Runner RunnerConfig `yaml:"runner" mapstructure:"runner"`

	// Report contains settings for CSV/HTML report generation.
	Report ReportConfig `yaml:"report" mapstructure:"report"`
}

// PathsConfig describes where vercheck finds and writes files.
type PathsConfig struct {
	// ToolsDir is the root directory holding tool installations, laid out
	// as <tools_dir>/<tool>/<version>/.
	// Default: "Apps"
	ToolsDir string `yaml:"tools_dir" mapstructure:"tools_dir"`

	// InputDir is the directory of input files passed to tool runs.
	// Default: "inputs"
	InputDir string `yaml:"input_dir" mapstructure:"input_dir"`

	// ArtifactDir is the directory where tool runs deposit artifacts.
	// Default: "artifacts"
	ArtifactDir string `yaml:"artifact_dir" mapstructure:"artifact_dir"`

	// LogDir is the directory for per-run tool logs and the vercheck log.
	// Default: "logs"
	LogDir string `yaml:"log_dir" mapstructure:"log_dir"`

	// ConfigDirs are the directories searched, in order, for per-tool
	// comparison configs (<tool>.yaml/.yml/.json, lowercase tool name).
	// Default: ["comparators/configs", "configs"]
	ConfigDirs []string `yaml:"config_dirs" mapstructure:"config_dirs"`
}

// RunnerConfig contains settings for external tool execution.
type RunnerConfig struct {
	// Timeout is the maximum duration for one tool-version execution.
	// Default: 10 minutes
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ReportConfig contains settings for report generation.
type ReportConfig struct {
	// CSVPath is the CSV report output path.
	// Default: "report.csv"
	CSVPath string `yaml:"csv_path" mapstructure:"csv_path"`

	// HTMLPath is the HTML report output path.
	// Default: "report.html"
	HTMLPath string `yaml:"html_path" mapstructure:"html_path"`

	// Disabled suppresses report generation entirely.
	// Default: false
	Disabled bool `yaml:"disabled" mapstructure:"disabled"`
}
