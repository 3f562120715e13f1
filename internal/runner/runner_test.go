package runner

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/vercheck/internal/clock"
	"github.com/mrz1836/vercheck/internal/config"
	"github.com/mrz1836/vercheck/internal/verify"
)

// fakeCommandRunner records the commands it was asked to run.
type fakeCommandRunner struct {
	commands []string
	output   string
	exitCode int
	err      error
}

func (f *fakeCommandRunner) Run(_ context.Context, _, command string, out io.Writer) (int, error) {
	f.commands = append(f.commands, command)
	if f.output != "" {
		_, _ = io.WriteString(out, f.output)
	}
	return f.exitCode, f.err
}

// testConfig builds a config rooted in a temp dir with the standard layout.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	return &config.Config{
		Paths: config.PathsConfig{
			ToolsDir:    filepath.Join(root, "Apps"),
			InputDir:    filepath.Join(root, "inputs"),
			ArtifactDir: filepath.Join(root, "artifacts"),
			LogDir:      filepath.Join(root, "logs"),
		},
		Runner: config.RunnerConfig{Timeout: time.Minute},
	}
}

// installTool creates an executable entry point for a tool version.
func installTool(t *testing.T, cfg *config.Config, tool, version, name string) {
	t.Helper()
	dir := filepath.Join(cfg.Paths.ToolsDir, tool, version)
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o700)) //nolint:gosec // test fixture must be executable
}

func newTestRunner(cfg *config.Config, cmd CommandRunner) *Runner {
	start := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	return New(cfg, cmd, clock.NewStepping(start, time.Second), zerolog.Nop())
}

func TestRunner_RunBothVersions(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "sampletool", "1.0.0", "sampletool.sh")
	installTool(t, cfg, "sampletool", "2.0.0", "sampletool.sh")

	fake := &fakeCommandRunner{output: "tool ran fine\n"}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "sampletool", "1.0.0", "2.0.0", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "sampletool", res.Tool)
	require.Len(t, res.Executions, 2)
	assert.Equal(t, verify.StatusSuccess, res.Executions[0].Status)
	assert.Equal(t, "1.0.0", res.Executions[0].Version)
	assert.Equal(t, 0, res.Executions[0].ExitCode)
	assert.Equal(t, verify.StatusSuccess, res.Executions[1].Status)

	// Each version got its own command and its own log file.
	require.Len(t, fake.commands, 2)
	assert.Contains(t, fake.commands[0], filepath.Join("1.0.0", "sampletool.sh"))
	assert.Contains(t, fake.commands[1], filepath.Join("2.0.0", "sampletool.sh"))

	require.NotEmpty(t, res.OldLog)
	require.NotEmpty(t, res.NewLog)
	assert.NotEqual(t, res.OldLog, res.NewLog)
	content, err := os.ReadFile(res.OldLog)
	require.NoError(t, err)
	assert.Equal(t, "tool ran fine\n", string(content))
}

func TestRunner_MissingExecutableIsError(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "sampletool", "2.0.0", "sampletool.sh")

	fake := &fakeCommandRunner{}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "sampletool", "1.0.0", "2.0.0", nil)
	require.NoError(t, err)

	// The old version has no install; its execution is an Error, but the
	// run still completes and the new version still runs.
	require.Len(t, res.Executions, 2)
	assert.Equal(t, verify.StatusError, res.Executions[0].Status)
	assert.Equal(t, -1, res.Executions[0].ExitCode, "a version that never started has no exit code")
	assert.Equal(t, verify.StatusSuccess, res.Executions[1].Status)
	require.Len(t, fake.commands, 1)
}

func TestRunner_ExecuteCommandTemplate(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "demotool", "1.0.0", "demotool.sh")
	installTool(t, cfg, "demotool", "2.0.0", "demotool.sh")

	fake := &fakeCommandRunner{}
	r := newTestRunner(cfg, fake)

	toolCfg := &config.ComparisonConfig{
		ExecuteCommand: "{exec} --version {version} --in {input} --out {output}",
		Parameters:     []string{"--fast"},
	}

	_, err := r.Run(context.Background(), "demotool", "1.0.0", "2.0.0", toolCfg)
	require.NoError(t, err)

	require.Len(t, fake.commands, 2)
	assert.Contains(t, fake.commands[0], "--version 1.0.0")
	assert.Contains(t, fake.commands[0], "--in "+cfg.Paths.InputDir)
	assert.Contains(t, fake.commands[0], "--out "+cfg.Paths.ArtifactDir)
	assert.Contains(t, fake.commands[0], "--fast")
	assert.Contains(t, fake.commands[1], "--version 2.0.0")
}

func TestRunner_FailedExecutionStatus(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "sampletool", "1.0.0", "sampletool.sh")
	installTool(t, cfg, "sampletool", "2.0.0", "sampletool.sh")

	fake := &fakeCommandRunner{exitCode: 2, err: context.DeadlineExceeded}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "sampletool", "1.0.0", "2.0.0", nil)
	require.NoError(t, err)

	for _, exec := range res.Executions {
		assert.Equal(t, verify.StatusError, exec.Status)
		assert.Equal(t, 2, exec.ExitCode)
	}
}

func TestRunner_FindArtifact(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "sampletool", "1.0.0", "sampletool.sh")
	installTool(t, cfg, "sampletool", "2.0.0", "sampletool.sh")
	require.NoError(t, os.MkdirAll(cfg.Paths.ArtifactDir, 0o750))

	// Two candidates for the old version; the lexically last wins.
	for _, name := range []string{
		"sampletool_1.0.0_20260801.txt",
		"sampletool_1.0.0_20260802.txt",
		"sampletool_2.0.0_20260802.txt",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.ArtifactDir, name), []byte("x"), 0o600))
	}

	fake := &fakeCommandRunner{}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "sampletool", "1.0.0", "2.0.0", nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Paths.ArtifactDir, "sampletool_1.0.0_20260802.txt"), res.OldArtifact)
	assert.Equal(t, filepath.Join(cfg.Paths.ArtifactDir, "sampletool_2.0.0_20260802.txt"), res.NewArtifact)
}

func TestRunner_ConfiguredArtifactPattern(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "demotool", "1.0.0", "demotool.sh")
	installTool(t, cfg, "demotool", "2.0.0", "demotool.sh")
	require.NoError(t, os.MkdirAll(cfg.Paths.ArtifactDir, 0o750))

	for _, name := range []string{"result_v1.0.0.out", "result_v2.0.0.out"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.ArtifactDir, name), []byte("x"), 0o600))
	}

	toolCfg := &config.ComparisonConfig{
		OldArtifactPattern: "result_v{version}.out",
		NewArtifactPattern: "result_v{version}.out",
	}

	fake := &fakeCommandRunner{}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "demotool", "1.0.0", "2.0.0", toolCfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cfg.Paths.ArtifactDir, "result_v1.0.0.out"), res.OldArtifact)
	assert.Equal(t, filepath.Join(cfg.Paths.ArtifactDir, "result_v2.0.0.out"), res.NewArtifact)
}

func TestRunner_WritesManifest(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	installTool(t, cfg, "sampletool", "1.0.0", "sampletool.sh")
	installTool(t, cfg, "sampletool", "2.0.0", "sampletool.sh")

	fake := &fakeCommandRunner{}
	r := newTestRunner(cfg, fake)

	res, err := r.Run(context.Background(), "sampletool", "1.0.0", "2.0.0", nil)
	require.NoError(t, err)

	require.NotEmpty(t, res.Manifest)
	data, err := os.ReadFile(res.Manifest)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, res.RunID, m["run_id"])
	assert.Equal(t, "sampletool", m["tool"])
	assert.Equal(t, "1.0.0", m["old_version"])
	assert.Equal(t, []any{"1.0.0: Success", "2.0.0: Success"}, m["executions"])
}

func TestDefaultCommandRunner(t *testing.T) {
	t.Parallel()

	var buf testWriter
	r := &DefaultCommandRunner{}

	code, err := r.Run(context.Background(), "", "echo hello", &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", buf.String())
}

// testWriter is a minimal concurrent-safe buffer.
type testWriter struct {
	data []byte
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *testWriter) String() string { return string(w.data) }
