package scanner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"scanpi/internal/logging"
	"scanpi/internal/remote"
	"scanpi/internal/services"
)

// Scanner drives scanimage on the remote host, one invocation per page.
type Scanner struct {
	runner remote.Runner
	device string
	logger *slog.Logger
}

// New constructs a Scanner. The device string is passed to scanimage via -d
// when non-empty; otherwise scanimage picks the first available backend.
func New(runner remote.Runner, device string, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{runner: runner, device: device, logger: logger}
}

// CheckConnection verifies the SSH link with a no-op remote command.
func (s *Scanner) CheckConnection(ctx context.Context) error {
	_, err := s.runner.Run(ctx, "true")
	return err
}

// Probe verifies the scanner is reachable by listing devices remotely.
func (s *Scanner) Probe(ctx context.Context) error {
	out, err := s.runner.Run(ctx, "scanimage -L")
	if err != nil {
		return err
	}
	if bytes.Contains(bytes.ToLower(out), []byte("no scanners were identified")) {
		return services.Wrap(services.ErrCommand, "checking", "probe", "no scanners detected on remote host", nil)
	}
	s.logger.Debug("scanner detected", logging.String("devices", strings.TrimSpace(string(out))))
	return nil
}

// EnsureBatchDir creates the remote batch directory.
func (s *Scanner) EnsureBatchDir(ctx context.Context, dir string) error {
	_, err := s.runner.Run(ctx, "mkdir -p "+shellQuote(dir))
	return err
}

// ScanPage scans one page into the batch directory and returns the remote
// file path. Page numbers are 1-based.
func (s *Scanner) ScanPage(ctx context.Context, dir string, page int, format Format, resolution int) (string, error) {
	remotePath := PagePath(dir, page)
	command := s.scanCommand(remotePath, format, resolution)
	s.logger.Debug("scanning page", logging.Int(logging.FieldPage, page), logging.String("command", command))
	if _, err := s.runner.Run(ctx, command); err != nil {
		return "", err
	}
	return remotePath, nil
}

// RemovePages deletes the page files for a completed session. Used when the
// batch directory is persistent and must stay behind.
func (s *Scanner) RemovePages(ctx context.Context, dir string, pages int) error {
	if pages < 1 {
		return nil
	}
	names := make([]string, 0, pages)
	for page := 1; page <= pages; page++ {
		names = append(names, shellQuote(PagePath(dir, page)))
	}
	_, err := s.runner.Run(ctx, "rm -f "+strings.Join(names, " "))
	return err
}

// RemoveBatchDir deletes a temporary batch directory and its contents.
func (s *Scanner) RemoveBatchDir(ctx context.Context, dir string) error {
	_, err := s.runner.Run(ctx, "rm -rf "+shellQuote(dir))
	return err
}

func (s *Scanner) scanCommand(outputPath string, format Format, resolution int) string {
	var b strings.Builder
	b.WriteString("scanimage")
	if s.device != "" {
		b.WriteString(" -d ")
		b.WriteString(shellQuote(s.device))
	}
	fmt.Fprintf(&b, " --format=pdf --resolution=%d -x %d -y %d --output-file %s",
		resolution, format.WidthMM, format.HeightMM, shellQuote(outputPath))
	return b.String()
}

// PageFileName returns the zero-padded file name for a 1-based page number.
func PageFileName(page int) string {
	return fmt.Sprintf("out%02d.pdf", page)
}

// PagePath joins the batch directory with the page file name.
func PagePath(dir string, page int) string {
	return path.Join(dir, PageFileName(page))
}

// TemporaryBatchDir returns a unique directory under /tmp for one session.
func TemporaryBatchDir() string {
	return "/tmp/scanpi-" + uuid.NewString()
}

// shellQuote wraps a value in single quotes for the remote shell.
func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
