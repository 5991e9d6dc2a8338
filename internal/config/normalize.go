package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.SSHArgs = strings.TrimSpace(c.SSHArgs)

	c.BatchDir = strings.TrimSpace(c.BatchDir)
	if c.BatchDir == "" {
		c.BatchDir = defaultBatchDir
	}

	if c.SSH.ConnectTimeout <= 0 {
		c.SSH.ConnectTimeout = defaultSSHConnectTimeout
	}

	c.Scanner.Device = strings.TrimSpace(c.Scanner.Device)
	if c.Scanner.MaxRetries <= 0 {
		c.Scanner.MaxRetries = defaultScannerMaxRetries
	}

	if err := c.normalizePaperless(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaperless() error {
	c.Paperless.BaseURL = strings.TrimRight(strings.TrimSpace(c.Paperless.BaseURL), "/")
	c.Paperless.APIKey = strings.TrimSpace(c.Paperless.APIKey)
	if c.Paperless.APIKey == "" {
		if value, ok := os.LookupEnv("PAPERLESS_API_KEY"); ok {
			c.Paperless.APIKey = strings.TrimSpace(value)
		}
	}
	if c.Paperless.Timeout <= 0 {
		c.Paperless.Timeout = defaultPaperlessTimeout
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if strings.TrimSpace(c.History.Dir) == "" {
		c.History.Dir = defaultHistoryDir()
	}
	if c.History.Dir, err = expandPath(c.History.Dir); err != nil {
		return fmt.Errorf("history.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
