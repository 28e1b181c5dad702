package builder

import (
	"context"
	"fmt"
)

// Environment variables consulted while planning a build
const (
	EnvArchFlags     = "ARCHFLAGS"
	EnvParallelLevel = "CMAKE_BUILD_PARALLEL_LEVEL"
)

// PlatformDarwin is the platform name for which ARCHFLAGS is honoured
const PlatformDarwin = "darwin"

// Interpreter describes the Python interpreter the extension is built for
type Interpreter struct {
	Executable string
	IncludeDir string
	// Version is the interpreter's full version string, e.g. "3.11.4 (main, ...)"
	Version string
}

// Environment is everything the builder is allowed to know about the host.
// The builder never reads process state directly; callers assemble an
// Environment (see internal/toolchain) and tests substitute their own.
type Environment struct {
	// Vars holds environment variables. Presence matters, not just value.
	Vars map[string]string

	// Platform is a GOOS-style platform name ("linux", "darwin", "windows").
	Platform string

	// Interpreter describes the target Python interpreter.
	Interpreter func(ctx context.Context) (*Interpreter, error)

	// LocateTorch returns PyTorch's CMake prefix path. It must return an
	// error wrapping ErrTorchNotFound when PyTorch is unavailable.
	LocateTorch func(ctx context.Context) (string, error)
}

// Lookup returns the value of an environment variable and whether it is set
func (e *Environment) Lookup(key string) (string, bool) {
	if e.Vars == nil {
		return "", false
	}

	v, ok := e.Vars[key]
	return v, ok
}

func (e *Environment) validate() error {
	if e.Interpreter == nil {
		return &ConfigError{Field: "environment", Err: fmt.Errorf("no interpreter source configured")}
	}

	if e.LocateTorch == nil {
		return &EnvironmentError{Component: "torch", Err: ErrTorchNotFound}
	}

	return nil
}
