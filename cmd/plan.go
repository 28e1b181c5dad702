package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/extbuild/internal/builder"
)

func newPlanCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "plan [MANIFEST|DIR]",
		Short:        "Print the cmake commands a build would run",
		Args:         maxArgs(1),
		RunE:         runPlan,
		SilenceUsage: true,
	}

	addBuildFlags(c)

	return c
}

func runPlan(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}

	for _, ext := range s.exts {
		plan, err := s.builder.Plan(s.ctx, ext.Target(s.cfg.BuildLib, s.cfg.BuildTemp))
		if err != nil {
			return fmt.Errorf("extension %s: %w", ext.Name, err)
		}

		printPlan(cmd.OutOrStdout(), plan)
	}

	return nil
}

// printPlan prints build information for one extension
func printPlan(w io.Writer, plan *builder.Plan) {
	tc := plan.Toolchain
	archs := "-"
	if len(plan.Platform.Architectures) > 0 {
		archs = strings.Join(plan.Platform.Architectures, ";")
	}

	fmt.Fprintf(w, "%s\n", color.New(color.Bold).Sprint(plan.Target.Name))
	fmt.Fprintf(w, "  Source:    %s\n  Output:    %s\n  BuildTemp: %s\n", plan.Target.SourceDir, plan.Target.OutputDir, plan.Target.BuildTemp)
	fmt.Fprintf(w, "  Mode:      %s\n  Python:    %s (%s)\n  Include:   %s\n  Torch:     %s\n  Archs:     %s\n",
		tc.Mode, tc.PythonExecutable, tc.PythonVersion, tc.PythonIncludeDir, tc.TorchCMakePath, archs)
	fmt.Fprintf(w, "  Configure: %s\n  Build:     %s\n", plan.Configure, plan.Build)
}
