package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	defaultBatchDir          = "batch_scans"
	defaultSSHConnectTimeout = 15
	defaultScannerMaxRetries = 3
	defaultPaperlessTimeout  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

func defaultHistoryDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		BatchDir: defaultBatchDir,
		SSH: SSH{
			ConnectTimeout: defaultSSHConnectTimeout,
			StrictHostKey:  true,
		},
		Scanner: Scanner{
			MaxRetries: defaultScannerMaxRetries,
		},
		Paperless: Paperless{
			Timeout: defaultPaperlessTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Dir:     defaultHistoryDir(),
		},
	}
}
