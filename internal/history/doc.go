// Package history records scan sessions in a SQLite database so operators
// can review past runs with the history command. Recording is best effort
// and can be disabled entirely via the [history] config section.
package history
