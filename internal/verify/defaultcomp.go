package verify

import (
	"github.com/rs/zerolog"

	"github.com/mrz1836/vercheck/internal/config"
)

// NewDefaultComparator returns the built-in fallback comparator: format
// check, line count, and content diff, all exact-match with no tolerance.
// It is the config-based comparator driven by a fixed configuration, so a
// tool with no registered comparator and no config file still produces a
// full item set.
func NewDefaultComparator(logger zerolog.Logger) Comparator {
	cfg := &config.ComparisonConfig{
		ComparisonMethods: config.ComparisonMethods{
			FormatCheck: true,
			LineCount:   true,
			ContentDiff: true,
		},
	}
	return NewConfigComparator(cfg, logger)
}
