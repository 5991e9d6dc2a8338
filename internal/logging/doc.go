// Package logging builds slog loggers for the CLI.
//
// Two handler formats are supported: a compact console format for interactive
// use and standard JSON for machine consumption. Both honour the level and
// format keys from the [logging] config section. All log output goes to
// stderr so stdout remains free for operator prompts.
package logging
