// Package metrics exports run results as a Prometheus textfile so cron-driven
// runs can be scraped through node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fileorganizer/internal/engine"
)

// Recorder holds one run's metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	filesTotal      *prometheus.CounterVec
	bytesTotal      *prometheus.CounterVec
	recipeFailed    *prometheus.GaugeVec
	recipeLastRun   *prometheus.GaugeVec
	runDuration     prometheus.Gauge
	runTimestamp    prometheus.Gauge
	persistFailures prometheus.Gauge
	dryRun          prometheus.Gauge
}

// NewRecorder builds a Recorder with every metric registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		filesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fileorganizer_files_total",
			Help: "Files handled in the last run by recipe and result.",
		}, []string{"recipe", "result"}),
		bytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fileorganizer_bytes_total",
			Help: "Bytes moved or copied in the last run by recipe.",
		}, []string{"recipe"}),
		recipeFailed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fileorganizer_recipe_failed",
			Help: "1 when the recipe could not run or any of its files failed.",
		}, []string{"recipe"}),
		recipeLastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fileorganizer_recipe_last_run_timestamp_seconds",
			Help: "Start of the recipe's last_run day after the run.",
		}, []string{"recipe"}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fileorganizer_run_duration_seconds",
			Help: "Wall time of the last run.",
		}),
		runTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fileorganizer_run_finished_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		persistFailures: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fileorganizer_persist_failed",
			Help: "1 when last_run values could not be written back.",
		}),
		dryRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fileorganizer_dry_run",
			Help: "1 when the last run was a dry run.",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe folds a report into the metrics.
func (r *Recorder) Observe(report engine.Report, loc *time.Location) {
	for _, s := range report.Recipes {
		r.filesTotal.WithLabelValues(s.Recipe, "moved").Add(float64(s.Moved))
		r.filesTotal.WithLabelValues(s.Recipe, "copied").Add(float64(s.Copied))
		r.filesTotal.WithLabelValues(s.Recipe, "skipped").Add(float64(s.Skipped))
		r.filesTotal.WithLabelValues(s.Recipe, "failed").Add(float64(s.Failed))
		r.bytesTotal.WithLabelValues(s.Recipe).Add(float64(s.Bytes))
		r.recipeFailed.WithLabelValues(s.Recipe).Set(boolGauge(s.HasFailures()))
		if s.NewLastRun != nil {
			r.recipeLastRun.WithLabelValues(s.Recipe).Set(float64(s.NewLastRun.Start(loc).Unix()))
		}
	}
	r.runDuration.Set(report.Duration().Seconds())
	r.runTimestamp.Set(float64(report.Finished.Unix()))
	r.persistFailures.Set(boolGauge(report.PersistErr != nil))
	r.dryRun.Set(boolGauge(report.DryRun))
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
