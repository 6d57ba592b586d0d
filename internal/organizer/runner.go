package organizer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"log/slog"

	"fileorganizer/internal/dateformat"
	"fileorganizer/internal/fsmeta"
	"fileorganizer/internal/logging"
	"fileorganizer/internal/matcher"
	"fileorganizer/internal/recipe"
	"fileorganizer/internal/services"
)

const defaultDirCacheSize = 512

// Options configure a Runner.
type Options struct {
	// Workers bounds concurrent file actions per recipe. Zero means one per
	// CPU; one processes files strictly in order.
	Workers int
	// Location turns timestamps into calendar days and subfolder names.
	Location   *time.Location
	SkipHidden bool
	// DirCacheSize bounds the cache of destination directories already
	// created during the process lifetime.
	DirCacheSize int
	Logger       *slog.Logger
}

// Runner executes recipes one at a time. It is safe to reuse across recipes.
type Runner struct {
	opts   Options
	logger *slog.Logger
	dirs   *dirCache
}

// NewRunner builds a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	dirs, err := newDirCache(opts.DirCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create directory cache: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "organizer"),
		dirs:   dirs,
	}, nil
}

// Workers returns the effective worker bound.
func (r *Runner) Workers() int { return r.opts.Workers }

// Run organizes one recipe. Per-file problems are recorded in the summary and
// never stop the recipe; a recipe-level problem is returned in summary.Err.
// res is shared by all recipes of one engine run; nil starts a fresh set.
func (r *Runner) Run(ctx context.Context, rec recipe.Recipe, dryRun bool, res *Reservations) RecipeSummary {
	ctx = services.WithRecipe(ctx, rec.Name)
	logger := logging.WithContext(ctx, r.logger)
	summary := RecipeSummary{
		Recipe:          rec.Name,
		DryRun:          dryRun,
		PreviousLastRun: rec.LastRun,
		NewLastRun:      rec.LastRun,
		Started:         time.Now(),
	}

	entries, err := fsmeta.List(rec.SourceFolder)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		summary.Err = services.Wrap(marker, "organizing", "list source", "Failed to list source folder "+rec.SourceFolder, err)
		summary.Finished = time.Now()
		return summary
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	if res == nil {
		res = NewReservations()
	}
	tasks := r.plan(logger, rec, entries, res, &summary)

	logger.Info(
		"recipe planned",
		logging.Int("entries", len(entries)),
		logging.Int("planned", len(tasks)),
		logging.Int("workers", r.opts.Workers),
		logging.Bool("dry_run", dryRun),
	)

	agg := &aggregator{summary: &summary}
	r.dispatch(ctx, res, rec.MoveFiles, dryRun, tasks, agg)

	sort.SliceStable(summary.Outcomes, func(i, j int) bool {
		return summary.Outcomes[i].Source < summary.Outcomes[j].Source
	})
	sort.SliceStable(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})
	summary.NewLastRun = NextLastRun(rec.LastRun, summary.Outcomes)
	summary.Finished = time.Now()

	attrs := []logging.Attr{
		logging.Int("moved", summary.Moved),
		logging.Int("copied", summary.Copied),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Duration("elapsed", summary.Finished.Sub(summary.Started)),
	}
	if summary.NewLastRun != nil {
		attrs = append(attrs, logging.String("last_run", summary.NewLastRun.String()))
	}
	logger.Info("recipe finished", logging.Args(attrs...)...)
	return summary
}

// plan matches and resolves entries in order. Non-qualifying entries and
// planning failures go straight into the summary.
func (r *Runner) plan(logger *slog.Logger, rec recipe.Recipe, entries []fsmeta.Meta, res *Reservations, summary *RecipeSummary) []task {
	m := matcher.New(rec, matcher.Options{Location: r.opts.Location, SkipHidden: r.opts.SkipHidden})
	tasks := make([]task, 0, len(entries))
	for _, meta := range entries {
		decision := m.Qualifies(meta)
		if decision.Ignore {
			continue
		}
		out := Outcome{
			Source:     meta.Path,
			Timestamp:  decision.Timestamp,
			Day:        decision.Day,
			Qualifying: decision.Qualifies,
		}
		if !decision.Qualifies {
			out.Kind = Skipped
			out.Reason = decision.Reason
			summary.add(out)
			if logger.Enabled(context.Background(), slog.LevelDebug) {
				attrs := append(logging.DecisionAttrs("match", "skip", string(decision.Reason)), logging.String("source", meta.Path))
				logger.Debug("file skipped", logging.Args(attrs...)...)
			}
			continue
		}
		segments := dateformat.Render(decision.Timestamp.In(r.opts.Location), rec.Subfolders)
		dest, same, err := res.reserve(meta, targetDir(rec, segments))
		switch {
		case err != nil:
			out.Kind = Failed
			out.Err = services.Wrap(services.ErrTransient, "organizing", "resolve destination", "Failed to resolve destination", err)
			summary.add(out)
		case same:
			out.Kind = Skipped
			out.Reason = matcher.SameFile
			out.Destination = dest
			summary.add(out)
		default:
			tasks = append(tasks, task{source: meta, destination: dest, outcome: out})
		}
	}
	return tasks
}

// dispatch feeds tasks to a bounded worker pool. Once ctx is done no new task
// is scheduled; unscheduled tasks are reported as canceled and in-flight ones
// finish.
func (r *Runner) dispatch(ctx context.Context, res *Reservations, move, dryRun bool, tasks []task, agg *aggregator) {
	if len(tasks) == 0 {
		return
	}
	workers := r.opts.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}

	jobs := make(chan task)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				agg.add(r.execute(ctx, res, t, move, dryRun))
			}
		}()
	}

	next := 0
schedule:
	for ; next < len(tasks); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case jobs <- tasks[next]:
		case <-ctx.Done():
			break schedule
		}
	}
	close(jobs)
	wg.Wait()

	for _, t := range tasks[next:] {
		out := t.outcome
		out.Kind = Skipped
		out.Reason = matcher.Canceled
		out.Destination = t.destination
		agg.add(out)
	}
}

// aggregator serializes outcome folding from worker goroutines.
type aggregator struct {
	mu      sync.Mutex
	summary *RecipeSummary
}

func (a *aggregator) add(o Outcome) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.summary.add(o)
}
