// Package cmake runs planned cmake invocations as child processes that
// share the caller's standard streams.
package cmake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Runner executes cmake invocations
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer

	execCommand func(ctx context.Context, dir, name string, args ...string) Commander
}

// NewRunner creates a runner wired to os.Stdout and os.Stderr
func NewRunner() *Runner {
	r := &Runner{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}

	r.execCommand = func(ctx context.Context, dir, name string, args ...string) Commander {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Dir = dir
		cmd.Stdin = os.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr

		return cmd
	}

	return r
}

// Execute runs inv in its working directory and waits for it to exit.
// The *exec.ExitError of a failing process is returned wrapped, so callers
// can still read its exit code.
func (r *Runner) Execute(ctx context.Context, inv builder.Invocation) error {
	c := r.execCommand(ctx, inv.Dir, inv.Name, inv.Args...)

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with code %d: %w", inv.Name, exitErr.ExitCode(), err)
		}

		return fmt.Errorf("failed to run %s: %w", inv.Name, err)
	}

	return nil
}

// CheckTool verifies that the cmake program can be found
func CheckTool(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("cmake not found (%s): %w", name, err)
	}

	return path, nil
}
