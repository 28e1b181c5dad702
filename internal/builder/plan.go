package builder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Norgate-AV/extbuild/internal/utils"
)

// PlatformFlags holds the platform-conditional parts of a build
type PlatformFlags struct {
	// Architectures is only populated on macOS, from ARCHFLAGS.
	Architectures []string

	// Jobs is the -j value for the build step, 0 when cmake should pick.
	Jobs int
}

// DetectPlatformFlags derives architecture and parallelism settings from env.
// A requested parallelism is dropped when CMAKE_BUILD_PARALLEL_LEVEL is set,
// since cmake already honours it for every generator.
func DetectPlatformFlags(env *Environment, parallel int) PlatformFlags {
	var flags PlatformFlags

	if env.Platform == PlatformDarwin {
		if archflags, ok := env.Lookup(EnvArchFlags); ok {
			if archs := utils.ParseArchFlags(archflags); len(archs) > 0 {
				flags.Architectures = archs
			}
		}
	}

	if _, ok := env.Lookup(EnvParallelLevel); !ok && parallel > 0 {
		flags.Jobs = parallel
	}

	return flags
}

// Invocation is one external process run
type Invocation struct {
	Name string
	Args []string
	Dir  string
}

// Argv returns the full argument vector including the program name
func (i Invocation) Argv() []string {
	return append([]string{i.Name}, i.Args...)
}

func (i Invocation) String() string {
	return strings.Join(i.Argv(), " ")
}

// Plan is a fully resolved build, ready to execute
type Plan struct {
	Target    BuildTarget
	Toolchain Toolchain
	Platform  PlatformFlags

	// ConfigureArgs are the -D directives, BuildArgs the extra build-step flags.
	ConfigureArgs []string
	BuildArgs     []string

	Configure Invocation
	Build     Invocation
}

// ConfigureArgs returns the -D directives for the configure step in their fixed order.
// outputDir must already carry its trailing separator.
func ConfigureArgs(outputDir string, tc Toolchain, pf PlatformFlags) []string {
	args := []string{
		define("CMAKE_LIBRARY_OUTPUT_DIRECTORY", outputDir),
		define("PYTHON_EXECUTABLE", tc.PythonExecutable),
		define("CMAKE_BUILD_TYPE", string(tc.Mode)),
		define("PYTHON_INCLUDE_DIR", tc.PythonIncludeDir),
		define("TORCH_CMAKE_PATH", tc.TorchCMakePath),
		define("PYTHON_VERSION", tc.PythonVersion),
	}

	if len(pf.Architectures) > 0 {
		args = append(args, define("CMAKE_OSX_ARCHITECTURES", strings.Join(pf.Architectures, ";")))
	}

	return args
}

// BuildArgs returns the extra flags for the build step
func BuildArgs(pf PlatformFlags) []string {
	args := []string{}

	if pf.Jobs > 0 {
		args = append(args, "-j"+strconv.Itoa(pf.Jobs))
	}

	return args
}

func define(key, value string) string {
	return fmt.Sprintf("-D%s=%s", key, value)
}
