package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Matches 'user@host:port', 'user@host', or 'host'.
var sshArgsPattern = regexp.MustCompile(`^([A-Za-z0-9_.-]+@)?[A-Za-z0-9_.-]+(:[0-9]+)?$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSSH(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validatePaperless(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSSH() error {
	if c.SSHArgs == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scanpi/config.toml"
		}
		return fmt.Errorf("ssh_args is required: edit %s (create with 'scanpi config init')", defaultPath)
	}
	if !sshArgsPattern.MatchString(c.SSHArgs) {
		return fmt.Errorf("ssh_args %q is not in the form 'user@host:port', 'user@host', or 'host'", c.SSHArgs)
	}
	if c.SSH.ConnectTimeout <= 0 {
		return errors.New("ssh.connect_timeout must be positive")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if c.Scanner.MaxRetries < 1 {
		return errors.New("scanner.max_retries must be >= 1")
	}
	return nil
}

func (c *Config) validatePaperless() error {
	if !c.PaperlessEnabled() {
		return nil
	}
	if strings.TrimSpace(c.Paperless.APIKey) == "" {
		return errors.New("paperless.api_key must be set when paperless.base_url is configured (or set PAPERLESS_API_KEY)")
	}
	if !strings.HasPrefix(c.Paperless.BaseURL, "http://") && !strings.HasPrefix(c.Paperless.BaseURL, "https://") {
		return fmt.Errorf("paperless.base_url %q must start with http:// or https://", c.Paperless.BaseURL)
	}
	return nil
}
