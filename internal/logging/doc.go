// Package logging assembles structured slog loggers and formatting helpers used
// across the organizer.
//
// It owns the console/JSON handlers, centralizes level and output plumbing, and
// exposes context-aware helpers so engine code automatically tags log lines
// with the run ID and recipe name. A no-op logger is provided for tests.
package logging
