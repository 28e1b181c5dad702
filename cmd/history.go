package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/extbuild/internal/builder"
	"github.com/Norgate-AV/extbuild/internal/config"
	"github.com/Norgate-AV/extbuild/internal/history"
)

func newHistoryCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "history [DIR]",
		Short:        "Show recorded builds",
		Args:         maxArgs(1),
		RunE:         runHistory,
		SilenceUsage: true,
	}

	c.Flags().IntP("limit", "n", 20, "Number of records to show, 0 for all")
	c.Flags().Uint64("show", 0, "Print every detail of the build with this ID")
	c.Flags().Bool("clear", false, "Delete all recorded builds")

	return c
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.NewLoader().LoadForBuild(cmd.Flags(), args)
	if err != nil {
		return &builder.ConfigError{Field: "config", Err: err}
	}

	store, err := history.Open(cfg.HistoryDir)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()

	if reset, _ := cmd.Flags().GetBool("clear"); reset {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("failed to clear history: %w", err)
		}

		fmt.Fprintf(out, "history cleared (%s)\n", store.Path())
		return nil
	}

	if id, _ := cmd.Flags().GetUint64("show"); id != 0 {
		rec, err := store.Get(id)
		if err != nil {
			return err
		}

		if rec == nil {
			return &usageError{err: fmt.Errorf("no build with ID %d in %s", id, store.Path())}
		}

		printRecord(out, rec)
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.List(limit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "no builds recorded")
		return nil
	}

	total, err := store.Count()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Started", "Extension", "Stage", "Status", "CMake exit", "Duration"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")

	for _, rec := range records {
		table.Append([]string{
			strconv.FormatUint(rec.ID, 10),
			rec.Started.Format(time.DateTime),
			rec.Extension,
			rec.Stage,
			status(rec.Success),
			strconv.Itoa(rec.ExitCode),
			rec.Duration().Round(time.Millisecond).String(),
		})
	}

	table.Render()
	fmt.Fprintf(out, "%d of %d builds recorded in %s\n", len(records), total, store.Path())

	return nil
}

func status(success bool) string {
	if success {
		return color.GreenString("ok")
	}

	return color.RedString("failed")
}

func printRecord(w io.Writer, rec *history.Record) {
	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprintf("#%d", rec.ID), rec.Extension)
	fmt.Fprintf(w, "  Status:      %s (stage %s, cmake exit %d)\n", status(rec.Success), rec.Stage, rec.ExitCode)
	if rec.Error != "" {
		fmt.Fprintf(w, "  Error:       %s\n", rec.Error)
	}
	fmt.Fprintf(w, "  Started:     %s (%s)\n", rec.Started.Format(time.DateTime), rec.Duration().Round(time.Millisecond))
	fmt.Fprintf(w, "  Source:      %s\n  BuildTemp:   %s\n  Output:      %s\n", rec.SourceDir, rec.BuildTemp, rec.OutputDir)
	fmt.Fprintf(w, "  Configure:   %s\n  Build:       %s\n", strings.Join(rec.Configure, " "), strings.Join(rec.Build, " "))
	fmt.Fprintf(w, "  Fingerprint: %s\n", rec.Fingerprint)

	if len(rec.Artifacts) == 0 {
		fmt.Fprintln(w, "  Artifacts:   none")
		return
	}

	fmt.Fprintln(w, "  Artifacts:")
	for _, a := range rec.Artifacts {
		fmt.Fprintf(w, "    %s\n", a)
	}
}
