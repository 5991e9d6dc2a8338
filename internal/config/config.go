package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// AppName is used for XDG directory paths and lock files.
const AppName = "scanpi"

// SSH contains transport settings for the scanner host connection.
type SSH struct {
	ConnectTimeout int  `toml:"connect_timeout"`
	StrictHostKey  bool `toml:"strict_host_key"`
}

// Scanner contains settings for driving scanimage on the remote host.
type Scanner struct {
	Device     string `toml:"device"`
	MaxRetries int    `toml:"max_retries"`
}

// Paperless contains settings for the document-management upload.
// The integration is enabled when base_url is set.
type Paperless struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the local session history database.
type History struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Config encapsulates all configuration values for scanpi.
//
// Top-level keys mirror the original flat config file (ssh_args, batch_dir);
// subsystem settings live in their own sections.
type Config struct {
	SSHArgs  string `toml:"ssh_args"`
	BatchDir string `toml:"batch_dir"`

	SSH       SSH       `toml:"ssh"`
	Scanner   Scanner   `toml:"scanner"`
	Paperless Paperless `toml:"paperless"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath(filepath.Join(xdg.ConfigHome, AppName, "config.toml"))
}

// Load locates, parses, normalizes, and validates a configuration file.
// It returns the config, the resolved path, and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	// The original scanpi used an extensionless file at the same location.
	legacyPath, err := expandPath(filepath.Join(xdg.ConfigHome, AppName, "config"))
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(legacyPath); err == nil && !info.IsDir() {
		return legacyPath, true, nil
	}

	return defaultPath, false, nil
}

// PaperlessEnabled reports whether upload to the document-management service
// is configured.
func (c *Config) PaperlessEnabled() bool {
	return strings.TrimSpace(c.Paperless.BaseURL) != ""
}

// BatchDirIsTemporary reports whether the batch directory should be created
// fresh under /tmp for each session.
func (c *Config) BatchDirIsTemporary() bool {
	return strings.EqualFold(strings.TrimSpace(c.BatchDir), "tmp")
}

// HistoryDir returns the directory holding the session history database.
func (c *Config) HistoryDir() string {
	return c.History.Dir
}

// EnsureDirectories creates local directories scanpi needs before running.
func (c *Config) EnsureDirectories() error {
	if !c.History.Enabled {
		return nil
	}
	if err := os.MkdirAll(c.History.Dir, 0o755); err != nil {
		return fmt.Errorf("create history directory %q: %w", c.History.Dir, err)
	}
	return nil
}

// LockPath returns the path of the lock file guarding the shared scanner.
func LockPath() string {
	return filepath.Join(xdg.RuntimeDir, AppName+".lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
