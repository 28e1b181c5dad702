package builder

import (
	"errors"
	"fmt"
)

// ErrTorchNotFound is returned when the PyTorch CMake prefix path cannot be located.
var ErrTorchNotFound = errors.New("PyTorch not installed")

// EnvironmentError reports a required toolchain component that is missing
// from the build environment. It is raised before any cmake step runs.
type EnvironmentError struct {
	Component string
	Err       error
}

func (e *EnvironmentError) Error() string {
	return fmt.Sprintf("environment: %s: %v", e.Component, e.Err)
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// ConfigError reports an input that cannot be turned into a build plan,
// such as an unparseable interpreter version or an unusable path.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}

	return fmt.Sprintf("configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToolError reports a cmake step that did not exit cleanly.
// ExitCode is -1 when the process never produced an exit status.
type ToolError struct {
	Stage    Stage
	ExitCode int
	Err      error
}

func (e *ToolError) Error() string {
	if e.ExitCode >= 0 {
		return fmt.Sprintf("cmake %s step failed (exit status %d): %v", e.Stage, e.ExitCode, e.Err)
	}

	return fmt.Sprintf("cmake %s step failed: %v", e.Stage, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// exitCoder is satisfied by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

func newToolError(stage Stage, err error) *ToolError {
	code := -1

	var ec exitCoder
	if errors.As(err, &ec) {
		code = ec.ExitCode()
	}

	return &ToolError{Stage: stage, ExitCode: code, Err: err}
}
