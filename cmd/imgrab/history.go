package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"imgrab/internal/config"
	"imgrab/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past download runs",
		Long: `History lists past download runs recorded in the local database.

Each fetch run is stored with its page URL, tally and output directory.
Use --images with a run ID to list the files that run saved.

Examples:
  # Show the last 20 runs
  imgrab history

  # Show all runs
  imgrab history --limit 0

  # List the files saved by one run
  imgrab history --images 6f1c2a8e-...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show (0 = all)")
	cmd.Flags().String("images", "", "List the images saved by the given run ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetString("images")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()

	if runID != "" {
		return listRunImages(ctx, cmd, db, runID)
	}
	return listRuns(ctx, cmd, db, limit)
}

// listRuns renders the run history table.
func listRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run ID", "Started", "Page", "Saved", "Dup", "Failed", "Output"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, r := range runs {
		tw.AppendRow(table.Row{
			shortRunID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.PageURL,
			r.Saved,
			r.Duplicate,
			r.Failed,
			r.OutputDir,
		})
	}
	tw.Render()

	return nil
}

// listRunImages renders the saved-image table for one run.
func listRunImages(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, runID string) error {
	run, err := db.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with ID %s", runID)
	}

	images, err := db.ListImages(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Run %s fetched %s at %s\n\n",
		shortRunID(run.ID), run.PageURL, run.StartedAt.Local().Format(time.RFC1123))

	if len(images) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No images were saved by this run.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(cmd.OutOrStdout())
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Path", "Size", "URL"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	for _, img := range images {
		tw.AppendRow(table.Row{img.Path, formatBytes(img.Size), img.URL})
	}
	tw.Render()

	return nil
}

// shortRunID truncates a UUID to its first block for display.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatBytes renders a byte count in a compact human-readable unit.
func formatBytes(n int64) string {
	switch {
	case n >= 1024*1024:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	case n >= 1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return strconv.FormatInt(n, 10) + " B"
	}
}
