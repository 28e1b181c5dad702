// Package toolchain assembles a builder.Environment from the running host:
// process environment variables, platform, and the Python interpreter and
// PyTorch installation discovered by asking the interpreter itself.
package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

const probeScript = `import sys, sysconfig
print(sys.executable)
print(sysconfig.get_path("include"))
print(sys.version)`

const torchScript = `import torch.utils
print(torch.utils.cmake_prefix_path)`

// Outputter interface for testing
type Outputter interface {
	Output() ([]byte, error)
}

var execCommand = func(ctx context.Context, name string, args ...string) Outputter {
	return exec.CommandContext(ctx, name, args...)
}

// Options select the interpreter and an optional PyTorch override
type Options struct {
	// Python is the interpreter to probe, resolved through PATH.
	Python string

	// TorchCMakePath skips probing PyTorch when set.
	TorchCMakePath string
}

// Host returns an Environment describing the current process and the
// configured interpreter. Probing happens lazily when the builder asks.
func Host(opts Options) *builder.Environment {
	return &builder.Environment{
		Vars:     Environ(os.Environ()),
		Platform: runtime.GOOS,
		Interpreter: func(ctx context.Context) (*builder.Interpreter, error) {
			return ProbeInterpreter(ctx, opts.Python)
		},
		LocateTorch: func(ctx context.Context) (string, error) {
			if opts.TorchCMakePath != "" {
				return opts.TorchCMakePath, nil
			}

			return LocateTorch(ctx, opts.Python)
		},
	}
}

// Environ converts "KEY=VALUE" pairs into a map. Later duplicates win.
func Environ(pairs []string) map[string]string {
	vars := make(map[string]string, len(pairs))

	for _, kv := range pairs {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		vars[key] = value
	}

	return vars
}

// ProbeInterpreter asks python for its executable, include directory and version
func ProbeInterpreter(ctx context.Context, python string) (*builder.Interpreter, error) {
	zerolog.Ctx(ctx).Debug().Str("python", python).Msg("probing interpreter")

	out, err := execCommand(ctx, python, "-c", probeScript).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", python, err)
	}

	return parseProbe(out)
}

func parseProbe(out []byte) (*builder.Interpreter, error) {
	lines := strings.Split(strings.TrimRight(string(bytes.ReplaceAll(out, []byte("\r\n"), []byte("\n"))), "\n"), "\n")
	if len(lines) < 3 {
		return nil, fmt.Errorf("unexpected interpreter probe output: %q", string(out))
	}

	interp := &builder.Interpreter{
		Executable: strings.TrimSpace(lines[0]),
		IncludeDir: strings.TrimSpace(lines[1]),
		// sys.version may itself span lines on some builds
		Version: strings.TrimSpace(strings.Join(lines[2:], " ")),
	}

	if interp.Executable == "" {
		return nil, fmt.Errorf("interpreter reported an empty sys.executable")
	}

	return interp, nil
}

// LocateTorch returns torch.utils.cmake_prefix_path as seen by python
func LocateTorch(ctx context.Context, python string) (string, error) {
	zerolog.Ctx(ctx).Debug().Str("python", python).Msg("locating PyTorch")

	out, err := execCommand(ctx, python, "-c", torchScript).Output()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", builder.ErrTorchNotFound, python, err)
	}

	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", fmt.Errorf("%w: empty cmake_prefix_path", builder.ErrTorchNotFound)
	}

	return path, nil
}
