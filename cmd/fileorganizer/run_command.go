package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/history"
	"fileorganizer/internal/logging"
	"fileorganizer/internal/metrics"
	"fileorganizer/internal/recipe"
)

// errRunFailed signals a finished run with failures. The report already
// explains them, so main only sets the exit code.
var errRunFailed = errors.New("run finished with failures")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		dryRun    bool
		iterative bool
		workers   int
		jsonOut   bool
	)

	cmd := &cobra.Command{
		Use:   "run RECIPES",
		Short: "Organize files according to a recipe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			if cmd.Flags().Changed("workers") && workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}

			lock, err := recipe.AcquireLock(filepath.Join(cfg.Paths.StateDir, "locks"), args[0])
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			file, err := recipe.Load(args[0])
			if err != nil {
				return err
			}

			poolSize := cfg.Engine.Workers
			if cmd.Flags().Changed("workers") {
				poolSize = workers
			}
			if iterative {
				poolSize = 1
			}
			eng, err := engine.New(engine.Options{
				Workers:    poolSize,
				Location:   cfg.Location(),
				SkipHidden: cfg.Engine.SkipHidden,
				Logger:     logger,
			})
			if err != nil {
				return err
			}

			report, err := eng.RunAll(cmd.Context(), file.Recipes(), dryRun, file)
			if err != nil {
				return err
			}

			if cfg.History.Enabled {
				if err := recordHistory(cfg.HistoryPath(), cmd, report); err != nil {
					logging.WarnWithContext(logger, "run history not recorded", "history_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check history.path in the config"),
						logging.String(logging.FieldImpact, "this run is missing from fileorganizer history"),
					)
				}
			}
			if cfg.Metrics.Textfile != "" {
				rec := metrics.NewRecorder()
				rec.Observe(report, cfg.Location())
				if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
					logging.WarnWithContext(logger, "metrics textfile not written", "metrics_failed",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check metrics.textfile in the config"),
						logging.String(logging.FieldImpact, "scrapers see the previous run's metrics"),
					)
				}
			}

			if jsonOut {
				if err := writeJSON(cmd, newReportView(report)); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderReport(report, shouldColorize(out)))
			}
			if report.HasFailures() {
				return errRunFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Report intended actions without changing any file")
	cmd.Flags().BoolVar(&iterative, "iterative", false, "Process files one at a time")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent file actions per recipe (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

func recordHistory(path string, cmd *cobra.Command, report engine.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(cmd.Context(), report)
}
