package codes

import (
	"errors"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

// Process exit codes used by extbuild. A failing cmake step exits with
// cmake's own status instead.
const (
	Success     = 0
	General     = 1
	Config      = 2
	Environment = 3
	Usage       = 64
)

// Descriptions maps extbuild exit codes to their descriptions
var Descriptions = map[int]string{
	Success:     "Success",
	General:     "General failure",
	Config:      "Invalid configuration or manifest",
	Environment: "Required toolchain component not found",
	Usage:       "Invalid command line usage",
}

// IsSuccess returns true if the exit code indicates a successful build
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := Descriptions[code]; ok {
		return msg
	}

	return "External build tool failure"
}

// ExitCode picks the process exit status for err. A failed cmake step
// propagates cmake's own status when it has one.
func ExitCode(err error) int {
	if err == nil {
		return Success
	}

	var toolErr *builder.ToolError
	if errors.As(err, &toolErr) {
		if toolErr.ExitCode > 0 {
			return toolErr.ExitCode
		}

		return General
	}

	var envErr *builder.EnvironmentError
	if errors.As(err, &envErr) {
		return Environment
	}

	var cfgErr *builder.ConfigError
	if errors.As(err, &cfgErr) {
		return Config
	}

	return General
}
