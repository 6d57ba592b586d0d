// Package engine runs every recipe of a recipe file and persists the new
// last_run values.
//
// Recipes run one after another, each on its own worker pool. A recipe that
// fails preflight or cannot list its source is reported and skipped; the
// others still run. Name uniqueness is the one check that stops a run before
// anything is touched.
package engine
