// Package errors provides centralized error handling for vercheck.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be checked
// using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrPatternNotFound indicates that a custom pattern did not match the
	// inspected text at all. Callers must treat this as "value absent",
	// never as a zero value.
	ErrPatternNotFound = errors.New("pattern not found in text")

	// ErrPatternNoCaptureGroup indicates that a custom pattern is missing
	// the single capturing group required for value extraction.
	ErrPatternNoCaptureGroup = errors.New("pattern has no capturing group")

	// ErrToleranceUndefined indicates that a relative tolerance could not be
	// computed because the old value is zero and the new value differs.
	ErrToleranceUndefined = errors.New("relative tolerance undefined for zero baseline")

	// ErrArtifactMissing indicates that a required artifact file does not
	// exist or could not be read.
	ErrArtifactMissing = errors.New("artifact file missing")

	// ErrLogMissing indicates that a required execution log does not exist
	// or could not be read.
	ErrLogMissing = errors.New("log file missing")

	// ErrConfigNotFound indicates that no comparison config file exists for
	// a tool in any of the searched directories.
	ErrConfigNotFound = errors.New("comparison config not found")

	// ErrConfigInvalid indicates that a comparison config file exists but
	// could not be parsed or failed validation.
	ErrConfigInvalid = errors.New("comparison config invalid")

	// ErrComparatorPanicked indicates that a tool-specific comparator
	// panicked and was recovered at the resolver boundary.
	ErrComparatorPanicked = errors.New("comparator panicked")

	// ErrExecutableNotFound indicates that no runnable entry point was found
	// for a tool version under the tools directory.
	ErrExecutableNotFound = errors.New("tool executable not found")

	// ErrCommandFailed indicates that a tool version exited non-zero or
	// failed to start.
	ErrCommandFailed = errors.New("command failed")

	// ErrUnknownTool indicates that a tool name has neither a registered
	// comparator nor a comparison config nor a tools directory entry.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrNoTools indicates that a run-all invocation found nothing to run.
	ErrNoTools = errors.New("no runnable tools found")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrValueOutOfRange indicates that a configured value is outside the
	// allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrReportWrite indicates that a report file could not be written.
	ErrReportWrite = errors.New("report write failed")
)
