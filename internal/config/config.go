package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Default configuration values
const (
	DefaultCMakePath  = "cmake"
	DefaultPythonPath = "python3"
	DefaultBuildLib   = "build/lib"
	DefaultBuildTemp  = "build/temp"
	DefaultHistoryDir = ".extbuild"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "console"
	DefaultDebug      = false
	DefaultVerbose    = false
)

// Holds the configuration options for extbuild
type Config struct {
	// Directory containing the project manifest; relative paths resolve against it
	ProjectDir string

	// cmake program, looked up on PATH unless it contains a separator
	CMakePath string

	// Python interpreter the extension is built for
	PythonPath string

	// PyTorch CMake prefix path; probed from the interpreter when empty
	TorchCMakePath string

	// Build with CMAKE_BUILD_TYPE=Debug
	Debug bool

	// Parallel build jobs, 0 lets cmake decide
	Parallel int

	// Root of the final library output tree
	BuildLib string

	// Root of the per-extension cmake working directories
	BuildTemp string

	Verbose   bool
	LogLevel  string
	LogFormat string

	// Skip recording builds in the history database
	NoHistory bool

	// Directory holding the history database
	HistoryDir string
}

func (c *Config) Validate() error {
	if c.CMakePath == "" {
		c.CMakePath = DefaultCMakePath
	}

	if c.PythonPath == "" {
		c.PythonPath = DefaultPythonPath
	}

	if c.Parallel < 0 {
		return fmt.Errorf("invalid parallel job count: %d", c.Parallel)
	}

	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	if !isValidLogLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s", c.LogFormat)
	}

	if c.ProjectDir != "" {
		abs, err := filepath.Abs(c.ProjectDir)
		if err != nil {
			return fmt.Errorf("invalid project directory: %v", err)
		}

		c.ProjectDir = abs
	}

	// A cmake path with a separator is a file, not a PATH lookup
	if strings.ContainsAny(c.CMakePath, `/\`) {
		abs, err := c.resolve(c.CMakePath)
		if err != nil {
			return fmt.Errorf("invalid cmake path: %v", err)
		}

		c.CMakePath = abs
	}

	// Resolve directory paths
	paths := []struct {
		name  string
		value *string
		def   string
	}{
		{"build_lib", &c.BuildLib, DefaultBuildLib},
		{"build_temp", &c.BuildTemp, DefaultBuildTemp},
		{"history_dir", &c.HistoryDir, DefaultHistoryDir},
		{"torch_cmake_path", &c.TorchCMakePath, ""},
	}

	for _, p := range paths {
		if *p.value == "" {
			if p.def == "" {
				continue
			}

			*p.value = p.def
		}

		abs, err := c.resolve(*p.value)
		if err != nil {
			return fmt.Errorf("invalid %s path: %v", p.name, err)
		}

		*p.value = abs
	}

	return nil
}

func (c *Config) resolve(path string) (string, error) {
	path = filepath.FromSlash(path)
	if !filepath.IsAbs(path) && c.ProjectDir != "" {
		path = filepath.Join(c.ProjectDir, path)
	}

	return filepath.Abs(path)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}

	return false
}
