// Package config loads, normalizes, and validates melpack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives the run constants the extraction
// pipeline needs (frames per second, total samples per clip, frame count).
// The Config type centralizes every knob the CLI and pipeline need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, a validated label vocabulary, and clear validation errors.
// A loaded Config is immutable for the duration of a run; components receive
// it by value or pointer at construction time and never mutate it.
package config
