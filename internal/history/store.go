package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"fileorganizer/internal/engine"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Run is one recorded RunAll call.
type Run struct {
	RunID         string
	Started       time.Time
	Finished      time.Time
	DryRun        bool
	Recipes       int
	FailedRecipes int
	Moved         int
	Copied        int
	Skipped       int
	Failed        int
	Bytes         int64
	PersistError  string
}

// RecipeRun is one recipe's row within a run.
type RecipeRun struct {
	Recipe          string
	Moved           int
	Copied          int
	Skipped         int
	Failed          int
	Bytes           int64
	PreviousLastRun string
	NewLastRun      string
	Error           string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Record stores a report and its per-recipe rows in one transaction.
func (s *Store) Record(ctx context.Context, report engine.Report) error {
	if report.RunID == "" {
		return services.Wrap(services.ErrValidation, "history", "record run", "report has no run id", nil)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	totals := report.Totals()
	var persistErr any
	if report.PersistErr != nil {
		persistErr = report.PersistErr.Error()
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, started_at, finished_at, dry_run, recipes, failed_recipes,
            moved, copied, skipped, failed, bytes, persist_error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.RunID,
		report.Started.UTC().Format(timeLayout),
		report.Finished.UTC().Format(timeLayout),
		boolToInt(report.DryRun),
		totals.Recipes,
		totals.FailedRecipes,
		totals.Moved,
		totals.Copied,
		totals.Skipped,
		totals.Failed,
		totals.Bytes,
		persistErr,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, summary := range report.Recipes {
		var recipeErr any
		if summary.Err != nil {
			recipeErr = summary.Err.Error()
		}
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO recipe_runs (
                run_id, recipe, moved, copied, skipped, failed, bytes,
                previous_last_run, new_last_run, error
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.RunID,
			summary.Recipe,
			summary.Moved,
			summary.Copied,
			summary.Skipped,
			summary.Failed,
			summary.Bytes,
			nullableDate(summary.PreviousLastRun),
			nullableDate(summary.NewLastRun),
			recipeErr,
		)
		if err != nil {
			return fmt.Errorf("insert recipe run %s: %w", summary.Recipe, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT run_id, started_at, finished_at, dry_run, recipes, failed_recipes,
            moved, copied, skipped, failed, bytes, persist_error
        FROM runs ORDER BY started_at DESC, run_id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run              Run
			started, ended   string
			dryRun           int
			persistErrString sql.NullString
		)
		if err := rows.Scan(
			&run.RunID, &started, &ended, &dryRun, &run.Recipes, &run.FailedRecipes,
			&run.Moved, &run.Copied, &run.Skipped, &run.Failed, &run.Bytes, &persistErrString,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if run.Started, err = parseTimeString(started); err != nil {
			return nil, err
		}
		if run.Finished, err = parseTimeString(ended); err != nil {
			return nil, err
		}
		run.DryRun = dryRun != 0
		run.PersistError = persistErrString.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Recipes returns the per-recipe rows of a run in recipe order.
func (s *Store) Recipes(ctx context.Context, runID string) ([]RecipeRun, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT recipe, moved, copied, skipped, failed, bytes, previous_last_run, new_last_run, error
        FROM recipe_runs WHERE run_id = ? ORDER BY recipe`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query recipe runs: %w", err)
	}
	defer rows.Close()

	var out []RecipeRun
	for rows.Next() {
		var (
			rr              RecipeRun
			prev, next, msg sql.NullString
		)
		if err := rows.Scan(&rr.Recipe, &rr.Moved, &rr.Copied, &rr.Skipped, &rr.Failed, &rr.Bytes, &prev, &next, &msg); err != nil {
			return nil, fmt.Errorf("scan recipe run: %w", err)
		}
		rr.PreviousLastRun = prev.String
		rr.NewLastRun = next.String
		rr.Error = msg.String
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe runs: %w", err)
	}
	return out, nil
}

// Prune deletes runs that started before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func nullableDate(d *recipe.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return t, nil
}
