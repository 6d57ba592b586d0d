// Package main hosts the fileorganizer CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration, opens the recipe file under a
// process lock, hands the recipes to the engine and renders the report. It
// also records runs in the history store and, when configured, writes the
// Prometheus textfile.
//
// Keep this package lean: behavior belongs in the internal packages; commands
// here only wire them together and format output.
package main
