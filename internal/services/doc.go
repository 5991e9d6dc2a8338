// Package services defines the error taxonomy shared by workflow stages and
// context annotations for session-scoped logging.
//
// Sentinel errors classify failures by origin: configuration, SSH connection,
// remote command, file transfer, PDF merge, and upload. Wrap tags an error
// with one marker plus stage context so the workflow controller and CLI can
// decide between per-page retry, session abort, and report-and-continue
// without string matching.
package services
