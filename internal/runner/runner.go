package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/vercheck/internal/clock"
	"github.com/mrz1836/vercheck/internal/config"
	"github.com/mrz1836/vercheck/internal/errors"
	"github.com/mrz1836/vercheck/internal/verify"
)

// logTimestampLayout names per-run log files uniquely and sortably.
const logTimestampLayout = "20060102_150405"

// Result is what one tool-version-pair run hands to the verify engine: the
// execution verdicts for both versions and the located artifact/log files.
// Empty paths mean the file was never produced.
type Result struct {
	// RunID uniquely identifies this invocation in logs and reports.
	RunID string

	Tool       string
	OldVersion string
	NewVersion string

	Executions []verify.ExecutionResult

	OldArtifact string
	NewArtifact string
	OldLog      string
	NewLog      string

	// Manifest is the path of the YAML run manifest written next to the
	// logs, or empty if it could not be written.
	Manifest string
}

// runManifest is the on-disk record of one run, kept for traceability when
// reports are regenerated or logs are archived.
type runManifest struct {
	RunID       string   `yaml:"run_id"`
	Tool        string   `yaml:"tool"`
	OldVersion  string   `yaml:"old_version"`
	NewVersion  string   `yaml:"new_version"`
	StartedAt   string   `yaml:"started_at"`
	Executions  []string `yaml:"executions"`
	OldArtifact string   `yaml:"old_artifact,omitempty"`
	NewArtifact string   `yaml:"new_artifact,omitempty"`
	OldLog      string   `yaml:"old_log,omitempty"`
	NewLog      string   `yaml:"new_log,omitempty"`
}

// Runner executes both versions of a tool sequentially and collects their
// outputs. Execution is synchronous and ordered old-then-new, because report
// ordering depends on deterministic phase completion.
type Runner struct {
	cfg    *config.Config
	cmd    CommandRunner
	clk    clock.Clock
	logger zerolog.Logger
}

// New creates a Runner. A nil cmd uses the default shell runner; a nil clk
// uses the system clock.
func New(cfg *config.Config, cmd CommandRunner, clk clock.Clock, logger zerolog.Logger) *Runner {
	if cmd == nil {
		cmd = &DefaultCommandRunner{}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Runner{
		cfg:    cfg,
		cmd:    cmd,
		clk:    clk,
		logger: logger.With().Str("component", "runner").Logger(),
	}
}

// Run executes the old and new versions of tool and locates what they
// produced. toolCfg may be nil, in which case the default tools-directory
// layout and artifact naming are assumed.
//
// A version that fails to start or exits non-zero is reported with an Error
// execution status; the run itself still completes so that verification can
// classify the failure.
func (r *Runner) Run(ctx context.Context, tool, oldVersion, newVersion string, toolCfg *config.ComparisonConfig) (*Result, error) {
	res := &Result{
		RunID:      uuid.NewString(),
		Tool:       tool,
		OldVersion: oldVersion,
		NewVersion: newVersion,
	}
	log := r.logger.With().Str("tool", tool).Str("run_id", res.RunID).Logger()
	startedAt := r.clk.Now()

	if err := os.MkdirAll(r.cfg.Paths.LogDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	if err := os.MkdirAll(r.cfg.Paths.ArtifactDir, 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create artifact directory")
	}

	for _, version := range []string{oldVersion, newVersion} {
		status, logPath, exitCode := r.runVersion(ctx, log, tool, version, toolCfg)
		res.Executions = append(res.Executions, verify.ExecutionResult{
			Version:  version,
			Status:   status,
			ExitCode: exitCode,
		})
		if version == oldVersion {
			res.OldLog = logPath
		} else {
			res.NewLog = logPath
		}
	}

	res.OldArtifact = r.findArtifact(tool, oldVersion, patternFor(toolCfg, true))
	res.NewArtifact = r.findArtifact(tool, newVersion, patternFor(toolCfg, false))

	res.Manifest = r.writeManifest(log, res, startedAt)

	log.Info().
		Str("old_artifact", res.OldArtifact).
		Str("new_artifact", res.NewArtifact).
		Msg("tool run complete")
	return res, nil
}

// writeManifest records the run metadata as YAML in the log directory.
// Failures are logged and swallowed: the manifest is an audit aid, not a
// verification input.
func (r *Runner) writeManifest(log zerolog.Logger, res *Result, startedAt time.Time) string {
	m := runManifest{
		RunID:       res.RunID,
		Tool:        res.Tool,
		OldVersion:  res.OldVersion,
		NewVersion:  res.NewVersion,
		StartedAt:   startedAt.Format(time.RFC3339),
		OldArtifact: res.OldArtifact,
		NewArtifact: res.NewArtifact,
		OldLog:      res.OldLog,
		NewLog:      res.NewLog,
	}
	for _, exec := range res.Executions {
		m.Executions = append(m.Executions, fmt.Sprintf("%s: %s", exec.Version, exec.Status))
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		log.Warn().Err(err).Msg("cannot marshal run manifest")
		return ""
	}

	path := filepath.Join(r.cfg.Paths.LogDir,
		fmt.Sprintf("%s_%s_manifest.yaml", safeName(res.Tool), res.RunID))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot write run manifest")
		return ""
	}
	return path
}

// runVersion executes one tool version, streaming combined output to a
// per-version log file. The returned status is Success or Error only; the
// exit code is negative when the version never started.
func (r *Runner) runVersion(ctx context.Context, log zerolog.Logger, tool, version string, toolCfg *config.ComparisonConfig) (verify.Status, string, int) {
	command, err := r.buildCommand(tool, version, toolCfg)
	if err != nil {
		log.Warn().Err(err).Str("version", version).Msg("cannot build tool command")
		return verify.StatusError, "", -1
	}

	logPath := filepath.Join(r.cfg.Paths.LogDir,
		fmt.Sprintf("%s_%s_%s.log", safeName(tool), version, r.clk.Now().Format(logTimestampLayout)))
	logFile, err := os.Create(logPath) //nolint:gosec // path assembled from sanitized parts
	if err != nil {
		log.Warn().Err(err).Msg("cannot create tool log file")
		return verify.StatusError, "", -1
	}
	defer func() { _ = logFile.Close() }()

	runCtx, cancel := context.WithTimeout(ctx, r.cfg.Runner.Timeout)
	defer cancel()

	log.Debug().Str("version", version).Str("command", command).Msg("executing tool version")
	exitCode, err := r.cmd.Run(runCtx, "", command, logFile)
	if err != nil {
		log.Warn().Err(err).Int("exit_code", exitCode).Str("version", version).
			Msg("tool execution failed")
		return verify.StatusError, logPath, exitCode
	}
	return verify.StatusSuccess, logPath, exitCode
}

// buildCommand renders the command line for one tool version. An
// execute_command template takes precedence; otherwise the version's
// executable is discovered under the tools directory and invoked with the
// configured input files and parameters.
func (r *Runner) buildCommand(tool, version string, toolCfg *config.ComparisonConfig) (string, error) {
	execPath, execErr := r.findExecutable(tool, version)

	if toolCfg != nil && toolCfg.ExecuteCommand != "" {
		cmd := toolCfg.ExecuteCommand
		cmd = strings.ReplaceAll(cmd, "{exec}", execPath)
		cmd = strings.ReplaceAll(cmd, "{version}", version)
		cmd = strings.ReplaceAll(cmd, "{input}", r.cfg.Paths.InputDir)
		cmd = strings.ReplaceAll(cmd, "{output}", r.cfg.Paths.ArtifactDir)
		if len(toolCfg.Parameters) > 0 {
			cmd = cmd + " " + strings.Join(toolCfg.Parameters, " ")
		}
		return cmd, nil
	}

	if execErr != nil {
		return "", execErr
	}

	args := []string{execPath}
	if toolCfg != nil {
		for _, in := range toolCfg.InputFiles {
			args = append(args, filepath.Join(r.cfg.Paths.InputDir, in))
		}
		args = append(args, toolCfg.Parameters...)
	}
	return strings.Join(args, " "), nil
}

// findExecutable locates the entry point for a tool version under
// <tools_dir>/<tool>/<version>/. It prefers a file named after the tool,
// then well-known script extensions, then any executable regular file.
func (r *Runner) findExecutable(tool, version string) (string, error) {
	dir := filepath.Join(r.cfg.Paths.ToolsDir, tool, version)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(errors.ErrExecutableNotFound, "%s %s: %v", tool, version, err)
	}

	lowerTool := strings.ToLower(tool)
	candidates := []string{lowerTool, lowerTool + ".sh", lowerTool + ".py"}
	for _, want := range candidates {
		for _, e := range entries {
			if !e.IsDir() && strings.ToLower(e.Name()) == want {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, ierr := e.Info()
		if ierr == nil && info.Mode()&0o111 != 0 {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.Wrapf(errors.ErrExecutableNotFound, "%s %s", tool, version)
}

// findArtifact globs for the artifact a version produced. A configured
// pattern (with {version} substituted) takes precedence over the default
// <artifact_dir>/<tool>_<version>* layout. When several files match, the
// lexically last one wins, which favors the newest timestamped name.
func (r *Runner) findArtifact(tool, version, pattern string) string {
	if pattern != "" {
		pattern = strings.ReplaceAll(pattern, "{version}", version)
		if !strings.ContainsRune(pattern, os.PathSeparator) {
			pattern = filepath.Join(r.cfg.Paths.ArtifactDir, pattern)
		}
	} else {
		pattern = filepath.Join(r.cfg.Paths.ArtifactDir,
			fmt.Sprintf("%s_%s*", safeName(tool), version))
	}

	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return ""
	}
	sort.Strings(matches)
	return matches[len(matches)-1]
}

// patternFor picks the configured artifact pattern for the old or new side.
func patternFor(toolCfg *config.ComparisonConfig, old bool) string {
	if toolCfg == nil {
		return ""
	}
	if old {
		return toolCfg.OldArtifactPattern
	}
	return toolCfg.NewArtifactPattern
}

// safeName strips characters that are unsafe in file names.
func safeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
