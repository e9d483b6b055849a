// Package logging builds the slog loggers used across melpack.
//
// It offers a console handler for interactive runs, a JSON handler for
// machine-readable logs, and small helpers for attaching standard attributes
// (component, run, item) so extraction logs stay greppable.
package logging
