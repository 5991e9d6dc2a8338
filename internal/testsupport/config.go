package testsupport

import (
	"path/filepath"
	"testing"

	"scanpi/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.SSHArgs = "scanner@printer.local"
	cfg.BatchDir = "batch_scans"
	cfg.History.Dir = filepath.Join(base, "history")

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithSSHArgs overrides the SSH target on the test config.
func WithSSHArgs(target string) ConfigOption {
	return func(c *config.Config) {
		c.SSHArgs = target
	}
}

// WithBatchDir overrides the remote batch directory on the test config.
func WithBatchDir(dir string) ConfigOption {
	return func(c *config.Config) {
		c.BatchDir = dir
	}
}

// WithPaperless enables the Paperless upload section on the test config.
func WithPaperless(baseURL, apiKey string) ConfigOption {
	return func(c *config.Config) {
		c.Paperless.BaseURL = baseURL
		c.Paperless.APIKey = apiKey
	}
}

// WithHistoryDisabled turns off session recording on the test config.
func WithHistoryDisabled() ConfigOption {
	return func(c *config.Config) {
		c.History.Enabled = false
	}
}

// WithMaxRetries overrides the per-page retry budget on the test config.
func WithMaxRetries(n int) ConfigOption {
	return func(c *config.Config) {
		c.Scanner.MaxRetries = n
	}
}
