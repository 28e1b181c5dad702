package builder

import (
	"context"
	"errors"
	"fmt"

	"github.com/Norgate-AV/extbuild/internal/utils"
)

// Mode is the CMake build type
type Mode string

const (
	Debug   Mode = "Debug"
	Release Mode = "Release"
)

// ModeFor picks Debug for debug builds and Release otherwise
func ModeFor(debug bool) Mode {
	if debug {
		return Debug
	}

	return Release
}

// Toolchain is derived fresh for every build and never stored
type Toolchain struct {
	Mode             Mode
	PythonExecutable string
	PythonIncludeDir string
	// PythonVersion is the compact major+minor tag, e.g. "311"
	PythonVersion  string
	TorchCMakePath string
}

// ResolveToolchain queries env for the interpreter and PyTorch.
// A missing PyTorch is reported as an *EnvironmentError wrapping ErrTorchNotFound.
func ResolveToolchain(ctx context.Context, env *Environment, debug bool) (*Toolchain, error) {
	if err := env.validate(); err != nil {
		return nil, err
	}

	interp, err := env.Interpreter(ctx)
	if err != nil {
		return nil, &EnvironmentError{Component: "python", Err: err}
	}

	if interp == nil || interp.Executable == "" {
		return nil, &ConfigError{Field: "python_executable", Err: fmt.Errorf("interpreter reported no executable path")}
	}

	torchPath, err := env.LocateTorch(ctx)
	if err != nil {
		if !errors.Is(err, ErrTorchNotFound) {
			err = fmt.Errorf("%w: %v", ErrTorchNotFound, err)
		}

		return nil, &EnvironmentError{Component: "torch", Err: err}
	}

	if torchPath == "" {
		return nil, &EnvironmentError{Component: "torch", Err: ErrTorchNotFound}
	}

	tag, err := utils.CompactVersion(interp.Version)
	if err != nil {
		return nil, &ConfigError{Field: "python_version", Err: err}
	}

	return &Toolchain{
		Mode:             ModeFor(debug),
		PythonExecutable: interp.Executable,
		PythonIncludeDir: interp.IncludeDir,
		PythonVersion:    tag,
		TorchCMakePath:   torchPath,
	}, nil
}
