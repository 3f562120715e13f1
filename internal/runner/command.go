// Package runner executes external tool versions and locates the artifacts
// and logs they produce. It is the Tool Runner collaborator: the verify
// engine consumes its results but never executes processes itself.
//
// SECURITY NOTE: executed commands come from per-tool comparison configs and
// the local tools directory. These are treated as trusted input, the same
// trust model as Makefiles or CI configurations: anyone able to modify them
// can already run arbitrary code on this machine.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// CommandRunner defines the interface for executing shell commands.
// This allows for testing by injecting mock implementations.
type CommandRunner interface {
	// Run executes a shell command, streaming combined output to out, and
	// returns the exit code.
	Run(ctx context.Context, workDir, command string, out io.Writer) (exitCode int, err error)
}

// DefaultCommandRunner implements CommandRunner using os/exec.
// The sh -c invocation is intentional: execute_command templates commonly
// use shell features such as redirects.
type DefaultCommandRunner struct{}

// Run executes a shell command using sh -c with stdout and stderr combined
// into a single stream, preserving the interleaving a user would see.
func (r *DefaultCommandRunner) Run(ctx context.Context, workDir, command string, out io.Writer) (int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = workDir

	var buf bytes.Buffer
	if out == nil {
		out = &buf
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), err
		}
		return 1, err
	}
	return 0, nil
}

// Ensure DefaultCommandRunner implements CommandRunner.
var _ CommandRunner = (*DefaultCommandRunner)(nil)
