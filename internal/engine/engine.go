package engine

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"fileorganizer/internal/logging"
	"fileorganizer/internal/organizer"
	"fileorganizer/internal/preflight"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
)

// Persister stores updated last_run values keyed by recipe name.
type Persister interface {
	SaveLastRun(updates map[string]recipe.Date) error
}

// Options configure an Engine.
type Options struct {
	Workers    int
	Location   *time.Location
	SkipHidden bool
	Logger     *slog.Logger
}

// Engine runs recipes through a shared organizer.Runner.
type Engine struct {
	runner *organizer.Runner
	logger *slog.Logger
}

// New constructs an Engine.
func New(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	runner, err := organizer.NewRunner(organizer.Options{
		Workers:    opts.Workers,
		Location:   opts.Location,
		SkipHidden: opts.SkipHidden,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{runner: runner, logger: logging.NewComponentLogger(logger, "engine")}, nil
}

// RunAll executes recipes in order. The returned error is non-nil only for
// configuration problems found before any file is touched; every other
// failure is recorded in the report. In a real run the changed last_run
// values are written through persister once all recipes are done.
func (e *Engine) RunAll(ctx context.Context, recipes []recipe.Recipe, dryRun bool, persister Persister) (Report, error) {
	if err := recipe.ValidateNames(recipes); err != nil {
		return Report{}, err
	}

	report := Report{
		RunID:   uuid.NewString(),
		DryRun:  dryRun,
		Started: time.Now(),
		Recipes: make([]organizer.RecipeSummary, 0, len(recipes)),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, e.logger)
	logger.Info(
		"run started",
		logging.Int("recipes", len(recipes)),
		logging.Bool("dry_run", dryRun),
		logging.Int("workers", e.runner.Workers()),
	)

	reservations := organizer.NewReservations()
	for _, r := range recipes {
		report.Recipes = append(report.Recipes, e.runRecipe(ctx, r, dryRun, reservations))
	}

	if !dryRun {
		report.PersistErr = e.persist(ctx, report.Recipes, persister)
	}
	report.Finished = time.Now()

	totals := report.Totals()
	attrs := []logging.Attr{
		logging.Int("moved", totals.Moved),
		logging.Int("copied", totals.Copied),
		logging.Int("skipped", totals.Skipped),
		logging.Int("failed", totals.Failed),
		logging.Int("failed_recipes", totals.FailedRecipes),
		logging.Duration("elapsed", report.Duration()),
	}
	if report.HasFailures() {
		logging.WarnWithContext(logger, "run finished with failures", "run_failed", append(attrs,
			logging.String(logging.FieldErrorHint, "see the per-recipe failures in the report"),
			logging.String(logging.FieldImpact, "failed files stay in their source folders; see the report for their paths"),
		)...)
	} else {
		logger.Info("run finished", logging.Args(attrs...)...)
	}
	return report, nil
}

func (e *Engine) runRecipe(ctx context.Context, r recipe.Recipe, dryRun bool, reservations *organizer.Reservations) organizer.RecipeSummary {
	if err := preflight.RecipeError(r); err != nil {
		logger := logging.WithContext(services.WithRecipe(ctx, r.Name), e.logger)
		logging.WarnWithContext(logger, "recipe skipped", "recipe_preflight_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check source_folder and destination_folder in the recipe file"),
			logging.String(logging.FieldImpact, "no files of this recipe were processed"),
		)
		now := time.Now()
		return organizer.RecipeSummary{
			Recipe:          r.Name,
			DryRun:          dryRun,
			PreviousLastRun: r.LastRun,
			NewLastRun:      r.LastRun,
			Err:             err,
			Started:         now,
			Finished:        now,
		}
	}
	return e.runner.Run(ctx, r, dryRun, reservations)
}

func (e *Engine) persist(ctx context.Context, summaries []organizer.RecipeSummary, persister Persister) error {
	updates := make(map[string]recipe.Date)
	for _, s := range summaries {
		if s.LastRunChanged() {
			updates[s.Recipe] = *s.NewLastRun
		}
	}
	if len(updates) == 0 {
		return nil
	}
	if persister == nil {
		return services.Wrap(services.ErrPersistence, "persist", "save last_run", "no recipe store configured", nil)
	}
	logger := logging.WithContext(ctx, e.logger)
	if err := persister.SaveLastRun(updates); err != nil {
		if !errors.Is(err, services.ErrPersistence) {
			err = services.Wrap(services.ErrPersistence, "persist", "save last_run", "Failed to write recipe file", err)
		}
		logging.ErrorWithContext(logger, "last_run not saved", "persist_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the recipe file and its folder are writable"),
			logging.String(logging.FieldImpact, "the next run re-examines files from the previous cutoff"),
		)
		return err
	}
	logger.Info("last_run saved", logging.Int("recipes", len(updates)))
	return nil
}
