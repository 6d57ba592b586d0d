package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"fileorganizer/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit     int
		pruneDays int
		runID     string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return fmt.Errorf("run history is disabled; set history.enabled = true in the config")
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if pruneDays > 0 {
				removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -pruneDays))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Pruned %d run(s) older than %d day(s)\n", removed, pruneDays)
			}

			if runID != "" {
				rows, err := store.Recipes(cmd.Context(), runID)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					return fmt.Errorf("no recorded run with id %s", runID)
				}
				fmt.Fprintln(out, renderRecipeRuns(rows))
				return nil
			}

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs, cfg.Location()))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Number of runs to show (0 for all)")
	cmd.Flags().IntVar(&pruneDays, "prune-days", 0, "Delete runs older than this many days first")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-recipe rows of one run")
	return cmd
}

func renderRuns(runs []history.Run, loc *time.Location) string {
	headers := []string{"Run", "Started", "Mode", "Recipes", "Moved", "Copied", "Skipped", "Failed", "Size"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		mode := "real"
		if run.DryRun {
			mode = "dry run"
		}
		failed := strconv.Itoa(run.Failed)
		if run.FailedRecipes > 0 {
			failed += fmt.Sprintf(" (+%d recipe)", run.FailedRecipes)
		}
		rows = append(rows, []string{
			run.RunID,
			run.Started.In(loc).Format("2006-01-02 15:04:05"),
			mode,
			strconv.Itoa(run.Recipes),
			strconv.Itoa(run.Moved),
			strconv.Itoa(run.Copied),
			strconv.Itoa(run.Skipped),
			failed,
			humanize.Bytes(uint64(run.Bytes)),
		})
	}
	return renderTable(headers, rows, aligns, nil)
}

func renderRecipeRuns(rows []history.RecipeRun) string {
	headers := []string{"Recipe", "Moved", "Copied", "Skipped", "Failed", "Size", "Last run", "Error"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		lastRun := r.NewLastRun
		if r.PreviousLastRun != "" && r.PreviousLastRun != r.NewLastRun {
			lastRun = r.PreviousLastRun + " -> " + r.NewLastRun
		}
		out = append(out, []string{
			r.Recipe,
			strconv.Itoa(r.Moved),
			strconv.Itoa(r.Copied),
			strconv.Itoa(r.Skipped),
			strconv.Itoa(r.Failed),
			humanize.Bytes(uint64(r.Bytes)),
			lastRun,
			r.Error,
		})
	}
	return renderTable(headers, out, aligns, nil)
}
