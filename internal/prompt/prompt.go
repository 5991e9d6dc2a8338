package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ErrAborted is returned when the operator cancels the session at a prompt.
var ErrAborted = errors.New("aborted by operator")

// Prompter gathers the operator decisions a scan session needs.
type Prompter interface {
	// PageCount asks how many pages the document has.
	PageCount(ctx context.Context) (int, error)
	// ConfirmPageReady blocks until the operator has placed the given page
	// on the scanner. Returns ErrAborted when they quit instead.
	ConfirmPageReady(ctx context.Context, page int) error
	// RetryPage asks whether a failed page should be scanned again.
	RetryPage(ctx context.Context, page int, reason string) (bool, error)
	// OutputName asks for the output file name, offering a default.
	OutputName(ctx context.Context, defaultName string) (string, error)
	// ConfirmUpload asks whether the merged document should be uploaded.
	ConfirmUpload(ctx context.Context) (bool, error)
}

// Terminal is the interactive Prompter backed by stdin and stdout.
type Terminal struct {
	in      *bufio.Reader
	out     io.Writer
	colored bool
}

// NewTerminal builds a Terminal prompter. Colors are enabled only when the
// output is a TTY.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	colored := false
	if f, ok := out.(*os.File); ok {
		colored = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{
		in:      bufio.NewReader(in),
		out:     out,
		colored: colored,
	}
}

// PageCount keeps asking until it gets a positive integer.
func (t *Terminal) PageCount(ctx context.Context) (int, error) {
	for {
		answer, err := t.ask(ctx, "Number of pages to scan: ")
		if err != nil {
			return 0, err
		}
		count, convErr := strconv.Atoi(answer)
		if convErr == nil && count > 0 {
			return count, nil
		}
		t.warn("Please enter a number greater than zero.")
	}
}

// ConfirmPageReady waits for Enter before each page.
func (t *Terminal) ConfirmPageReady(ctx context.Context, page int) error {
	answer, err := t.ask(ctx, fmt.Sprintf("Place page %d on the scanner and press Enter (q to abort): ", page))
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "q") {
		return ErrAborted
	}
	return nil
}

// RetryPage reports the failure and asks whether to try again. Enter
// defaults to yes.
func (t *Terminal) RetryPage(ctx context.Context, page int, reason string) (bool, error) {
	t.warn(fmt.Sprintf("Page %d failed: %s", page, reason))
	answer, err := t.ask(ctx, fmt.Sprintf("Retry page %d? [Y/n]: ", page))
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// OutputName asks for the document name, falling back to the default when
// the operator just presses Enter.
func (t *Terminal) OutputName(ctx context.Context, defaultName string) (string, error) {
	answer, err := t.ask(ctx, fmt.Sprintf("Output file name [%s]: ", defaultName))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return defaultName, nil
	}
	return answer, nil
}

// ConfirmUpload asks whether to send the document to Paperless. Enter
// defaults to yes.
func (t *Terminal) ConfirmUpload(ctx context.Context) (bool, error) {
	answer, err := t.ask(ctx, "Upload to Paperless? [Y/n]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if t.colored {
		_, _ = color.New(color.FgCyan).Fprint(t.out, question)
	} else {
		_, _ = fmt.Fprint(t.out, question)
	}
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) warn(message string) {
	if t.colored {
		_, _ = color.New(color.FgYellow).Fprintln(t.out, message)
	} else {
		_, _ = fmt.Fprintln(t.out, message)
	}
}
