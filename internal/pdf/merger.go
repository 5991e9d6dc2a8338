package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scanpi/internal/logging"
	"scanpi/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) error
}

// Option configures the merger.
type Option func(*Merger)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(m *Merger) {
		if exec != nil {
			m.exec = exec
		}
	}
}

// WithBinary overrides the ghostscript binary name.
func WithBinary(binary string) Option {
	return func(m *Merger) {
		if binary != "" {
			m.binary = binary
		}
	}
}

// Merger combines page PDFs into a single document with ghostscript.
type Merger struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// NewMerger constructs a Merger that shells out to gs.
func NewMerger(logger *slog.Logger, opts ...Option) *Merger {
	if logger == nil {
		logger = logging.NewNop()
	}
	merger := &Merger{
		binary: "gs",
		exec:   commandExecutor{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(merger)
	}
	return merger
}

// Merge combines the input page files, in order, into outputPath. A single
// input is copied directly without invoking ghostscript. The paperSize name
// matches the scan format (a4, letter, ...), which ghostscript understands
// natively.
func (m *Merger) Merge(ctx context.Context, inputs []string, outputPath, paperSize string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrMerge, "merging", "merge", "no input pages", nil)
	}
	for _, input := range inputs {
		if err := ValidatePDF(input); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return services.Wrap(services.ErrMerge, "merging", "create output dir", filepath.Dir(outputPath), err)
	}

	if len(inputs) == 1 {
		return m.copySingle(inputs[0], outputPath)
	}

	args := []string{
		"-q",
		"-sPAPERSIZE=" + paperSize,
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=pdfwrite",
		"-sOutputFile=" + outputPath,
	}
	args = append(args, inputs...)

	m.logger.Debug("merging pages",
		logging.Int("pages", len(inputs)),
		logging.String("output", outputPath),
	)
	if err := m.exec.Run(ctx, m.binary, args); err != nil {
		return services.Wrap(services.ErrMerge, "merging", "ghostscript",
			fmt.Sprintf("merge %d pages into %s", len(inputs), outputPath), err)
	}
	return ValidatePDF(outputPath)
}

func (m *Merger) copySingle(input, outputPath string) error {
	src, err := os.Open(input)
	if err != nil {
		return services.Wrap(services.ErrMerge, "merging", "open page", input, err)
	}
	defer src.Close()

	dst, err := os.Create(outputPath)
	if err != nil {
		return services.Wrap(services.ErrMerge, "merging", "create output", outputPath, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return services.Wrap(services.ErrMerge, "merging", "copy page", outputPath, err)
	}
	return nil
}

// ValidatePDF checks that a file exists and starts with the PDF magic bytes.
func ValidatePDF(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return services.Wrap(services.ErrMerge, "merging", "validate", path, err)
	}
	defer f.Close()

	header := make([]byte, 5)
	if _, err := io.ReadFull(f, header); err != nil {
		return services.Wrap(services.ErrMerge, "merging", "validate",
			fmt.Sprintf("%s is too short to be a PDF", path), nil)
	}
	if !bytes.Equal(header, []byte("%PDF-")) {
		return services.Wrap(services.ErrMerge, "merging", "validate",
			fmt.Sprintf("%s is not a PDF", path), nil)
	}
	return nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) error {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg != "" {
			return fmt.Errorf("%w: %s", err, lastLine(msg))
		}
		return err
	}
	return nil
}

func lastLine(output string) string {
	lines := strings.Split(output, "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
