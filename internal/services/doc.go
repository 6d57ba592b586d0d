// Package services defines shared utilities consumed by the recipe engine and
// the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and recipe names for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into configuration, per-recipe, per-file and persistence errors.
//
// Use these helpers when wiring new engine logic so error classification and
// log fields stay uniform across packages.
package services
