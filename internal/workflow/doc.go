// Package workflow sequences one scan session through its stages: checking
// the scanner, the per-page scan loop, transferring page files, merging,
// naming, and the optional upload. It owns the session state transitions
// and decides which failures are retryable, which are fatal, and which are
// merely reported.
package workflow
