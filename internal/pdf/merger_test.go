package pdf_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scanpi/internal/pdf"
	"scanpi/internal/services"
	"scanpi/internal/testsupport"
)

type fakeExecutor struct {
	binary string
	args   []string
	err    error
}

func (f *fakeExecutor) Run(_ context.Context, binary string, args []string) error {
	f.binary = binary
	f.args = args
	if f.err != nil {
		return f.err
	}
	for _, arg := range args {
		if out, ok := strings.CutPrefix(arg, "-sOutputFile="); ok {
			if err := os.WriteFile(out, []byte("%PDF-1.4\nmerged"), 0o644); err != nil {
				return err
			}
		}
	}
	return nil
}

func TestMergeMultiplePagesInvokesGhostscript(t *testing.T) {
	dir := t.TempDir()
	pages := []string{
		filepath.Join(dir, "out01.pdf"),
		filepath.Join(dir, "out02.pdf"),
	}
	for _, page := range pages {
		testsupport.WritePDF(t, page, "page")
	}
	output := filepath.Join(dir, "scan.pdf")

	exec := &fakeExecutor{}
	merger := pdf.NewMerger(nil, pdf.WithExecutor(exec))

	if err := merger.Merge(context.Background(), pages, output, "a4"); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if exec.binary != "gs" {
		t.Fatalf("unexpected binary: %s", exec.binary)
	}

	want := []string{
		"-q",
		"-sPAPERSIZE=a4",
		"-dNOPAUSE",
		"-dBATCH",
		"-sDEVICE=pdfwrite",
		"-sOutputFile=" + output,
		pages[0],
		pages[1],
	}
	if len(exec.args) != len(want) {
		t.Fatalf("unexpected args: %v", exec.args)
	}
	for i, arg := range want {
		if exec.args[i] != arg {
			t.Fatalf("arg %d: got %q want %q", i, exec.args[i], arg)
		}
	}
}

func TestMergeSinglePageCopiesWithoutGhostscript(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "out01.pdf")
	testsupport.WritePDF(t, page, "only page")
	output := filepath.Join(dir, "scan.pdf")

	exec := &fakeExecutor{err: errors.New("must not be called")}
	merger := pdf.NewMerger(nil, pdf.WithExecutor(exec))

	if err := merger.Merge(context.Background(), []string{page}, output, "a4"); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(got), "only page") {
		t.Fatalf("output does not match input: %q", got)
	}
}

func TestMergeRejectsNonPDFInput(t *testing.T) {
	dir := t.TempDir()
	page := filepath.Join(dir, "out01.pdf")
	testsupport.WriteFile(t, page, []byte("plain text"))

	merger := pdf.NewMerger(nil, pdf.WithExecutor(&fakeExecutor{}))
	err := merger.Merge(context.Background(), []string{page}, filepath.Join(dir, "scan.pdf"), "a4")
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error, got %v", err)
	}
}

func TestMergeWrapsGhostscriptFailure(t *testing.T) {
	dir := t.TempDir()
	pages := []string{filepath.Join(dir, "out01.pdf"), filepath.Join(dir, "out02.pdf")}
	for _, page := range pages {
		testsupport.WritePDF(t, page, "page")
	}

	exec := &fakeExecutor{err: errors.New("exit status 1: unrecoverable error")}
	merger := pdf.NewMerger(nil, pdf.WithExecutor(exec))

	err := merger.Merge(context.Background(), pages, filepath.Join(dir, "scan.pdf"), "a4")
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error, got %v", err)
	}
	if services.Retryable(err) {
		t.Fatal("merge failures must not be retryable")
	}
}

func TestMergeRejectsEmptyInput(t *testing.T) {
	merger := pdf.NewMerger(nil, pdf.WithExecutor(&fakeExecutor{}))
	err := merger.Merge(context.Background(), nil, filepath.Join(t.TempDir(), "scan.pdf"), "a4")
	if !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error, got %v", err)
	}
}

func TestValidatePDF(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	testsupport.WritePDF(t, good, "content")
	if err := pdf.ValidatePDF(good); err != nil {
		t.Fatalf("expected valid: %v", err)
	}

	short := filepath.Join(dir, "short.pdf")
	testsupport.WriteFile(t, short, []byte("%P"))
	if err := pdf.ValidatePDF(short); !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error for short file, got %v", err)
	}

	if err := pdf.ValidatePDF(filepath.Join(dir, "missing.pdf")); !errors.Is(err, services.ErrMerge) {
		t.Fatalf("expected merge error for missing file, got %v", err)
	}
}
