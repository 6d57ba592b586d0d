// Package history keeps a SQLite log of organizer runs.
//
// Every non-dry run (and, when asked, every dry run) is recorded with its
// totals and one row per recipe, so "fileorganizer history" can show what past
// runs did and where last_run moved.
package history
