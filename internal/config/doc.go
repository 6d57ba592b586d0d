// Package config loads, normalizes, and validates organizer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts) and reads TOML files. The Config type centralizes every knob the
// engine and CLI need: state and log directories, log format, worker pool
// size, the time zone used for day boundaries, and the optional history and
// metrics sinks.
//
// Recipes are not configuration; they live in their own JSON file handled by
// the recipe package.
package config
