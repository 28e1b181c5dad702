package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/extbuild/internal/codes"
	"github.com/Norgate-AV/extbuild/internal/version"
)

var rootCmd = newRootCmd()

// usageError marks command line mistakes so they exit with codes.Usage
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "extbuild",
		Short: "Build CMake-based PyTorch extensions",
		Long: `extbuild configures and builds native Python extensions that link against
PyTorch, by running cmake once to configure and once to build, and places the
resulting library where Python packaging expects it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	root.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "Log format (console, json)")
	root.PersistentFlags().String("history-dir", "", "Directory holding the build history database")
	root.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(newBuildCmd(), newPlanCmd(), newHistoryCmd())

	return root
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("error:"), err)

		if !codes.IsSuccess(code) && code <= codes.Usage {
			fmt.Fprintf(os.Stderr, "(%s)\n", codes.GetErrorMessage(code))
		}

		os.Exit(code)
	}
}

func exitCode(err error) int {
	var uerr *usageError
	if errors.As(err, &uerr) {
		return codes.Usage
	}

	return codes.ExitCode(err)
}

// maxArgs is cobra.MaximumNArgs reporting a usage error
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}

		return nil
	}
}
