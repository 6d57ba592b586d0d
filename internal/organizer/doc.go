// Package organizer runs one recipe over its source folder.
//
// A run lists the source folder once, then plans every entry in name order:
// the matcher filters it, subfolders are rendered from its timestamp and a
// collision-free destination is reserved. Planned files are executed on a
// bounded worker pool. Real runs claim each destination with O_EXCL before
// renaming or copying onto it; dry runs touch nothing and report the same
// destinations a real run would use.
//
// NextLastRun folds a run's outcomes into the recipe's next cutoff day.
package organizer
