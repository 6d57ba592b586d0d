// Package recipe owns the recipe data model and the recipe JSON file.
//
// A recipe file is a JSON array of recipe objects. Loading keeps every entry's
// raw fields (including ones this version does not know about) in their
// original order, and write-back only touches last_run, so hand-edited files
// survive a run intact. Writes go through a temp file and rename.
//
// Lock guards a recipe file against concurrent organizer processes.
package recipe
