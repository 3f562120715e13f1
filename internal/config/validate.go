package config

import (
	"github.com/mrz1836/vercheck/internal/errors"
)

// Validate checks a loaded Config for values that would make a run
// impossible or surprising. It returns the first problem found.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.Wrap(errors.ErrEmptyValue, "config")
	}

	if cfg.Paths.ToolsDir == "" {
		return errors.Wrap(errors.ErrEmptyValue, "paths.tools_dir")
	}
	if cfg.Paths.ArtifactDir == "" {
		return errors.Wrap(errors.ErrEmptyValue, "paths.artifact_dir")
	}
	if cfg.Paths.LogDir == "" {
		return errors.Wrap(errors.ErrEmptyValue, "paths.log_dir")
	}

	if cfg.Runner.Timeout <= 0 {
		return errors.Wrap(errors.ErrValueOutOfRange, "runner.timeout must be positive")
	}

	if !cfg.Report.Disabled {
		if cfg.Report.CSVPath == "" {
			return errors.Wrap(errors.ErrEmptyValue, "report.csv_path")
		}
		if cfg.Report.HTMLPath == "" {
			return errors.Wrap(errors.ErrEmptyValue, "report.html_path")
		}
	}

	return nil
}
