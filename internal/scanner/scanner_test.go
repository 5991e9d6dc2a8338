package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scanpi/internal/services"
)

type fakeRunner struct {
	commands []string
	output   []byte
	err      error
}

func (f *fakeRunner) Run(_ context.Context, command string) ([]byte, error) {
	f.commands = append(f.commands, command)
	return f.output, f.err
}

func TestScanPageBuildsScanimageCommand(t *testing.T) {
	runner := &fakeRunner{}
	scan := New(runner, "", nil)

	format, err := LookupFormat("a4")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	remotePath, err := scan.ScanPage(context.Background(), "/tmp/batch", 3, format, 400)
	if err != nil {
		t.Fatalf("scan page: %v", err)
	}
	if remotePath != "/tmp/batch/out03.pdf" {
		t.Fatalf("unexpected remote path: %s", remotePath)
	}

	want := "scanimage --format=pdf --resolution=400 -x 210 -y 297 --output-file '/tmp/batch/out03.pdf'"
	if len(runner.commands) != 1 || runner.commands[0] != want {
		t.Fatalf("unexpected command: %v", runner.commands)
	}
}

func TestScanPageIncludesDeviceFlag(t *testing.T) {
	runner := &fakeRunner{}
	scan := New(runner, "pixma:04A91234", nil)
	format, _ := LookupFormat("letter")

	if _, err := scan.ScanPage(context.Background(), "batch", 1, format, 200); err != nil {
		t.Fatalf("scan page: %v", err)
	}
	if !strings.Contains(runner.commands[0], "-d 'pixma:04A91234'") {
		t.Fatalf("expected device flag in %q", runner.commands[0])
	}
}

func TestCheckConnectionRunsNoop(t *testing.T) {
	runner := &fakeRunner{}
	scan := New(runner, "", nil)
	if err := scan.CheckConnection(context.Background()); err != nil {
		t.Fatalf("check connection: %v", err)
	}
	if len(runner.commands) != 1 || runner.commands[0] != "true" {
		t.Fatalf("unexpected commands: %v", runner.commands)
	}
}

func TestProbeDetectsMissingScanner(t *testing.T) {
	runner := &fakeRunner{output: []byte("\nNo scanners were identified.\n")}
	scan := New(runner, "", nil)
	err := scan.Probe(context.Background())
	if err == nil {
		t.Fatal("expected probe error")
	}
	if !errors.Is(err, services.ErrCommand) {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestProbePassesThroughRunnerError(t *testing.T) {
	wantErr := services.Wrap(services.ErrConnection, "", "run", "scanimage -L", errors.New("eof"))
	runner := &fakeRunner{err: wantErr}
	scan := New(runner, "", nil)
	if err := scan.Probe(context.Background()); !errors.Is(err, services.ErrConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestRemovePagesListsEachFile(t *testing.T) {
	runner := &fakeRunner{}
	scan := New(runner, "", nil)
	if err := scan.RemovePages(context.Background(), "/scans", 2); err != nil {
		t.Fatalf("remove pages: %v", err)
	}
	want := "rm -f '/scans/out01.pdf' '/scans/out02.pdf'"
	if runner.commands[0] != want {
		t.Fatalf("unexpected command: %q", runner.commands[0])
	}

	before := len(runner.commands)
	if err := scan.RemovePages(context.Background(), "/scans", 0); err != nil {
		t.Fatalf("remove zero pages: %v", err)
	}
	if len(runner.commands) != before {
		t.Fatal("expected no command for zero pages")
	}
}

func TestRemoveBatchDirQuotesPath(t *testing.T) {
	runner := &fakeRunner{}
	scan := New(runner, "", nil)
	if err := scan.RemoveBatchDir(context.Background(), "/tmp/scanpi-x"); err != nil {
		t.Fatalf("remove batch dir: %v", err)
	}
	if runner.commands[0] != "rm -rf '/tmp/scanpi-x'" {
		t.Fatalf("unexpected command: %q", runner.commands[0])
	}
}

func TestPageFileNameZeroPadded(t *testing.T) {
	if PageFileName(1) != "out01.pdf" || PageFileName(12) != "out12.pdf" {
		t.Fatalf("unexpected names: %s %s", PageFileName(1), PageFileName(12))
	}
}

func TestTemporaryBatchDirIsUnique(t *testing.T) {
	first := TemporaryBatchDir()
	second := TemporaryBatchDir()
	if !strings.HasPrefix(first, "/tmp/scanpi-") {
		t.Fatalf("unexpected prefix: %s", first)
	}
	if first == second {
		t.Fatal("expected unique directories")
	}
}

func TestLookupFormatRejectsUnknown(t *testing.T) {
	if _, err := LookupFormat("tabloid"); !errors.Is(err, services.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
	format, err := LookupFormat(" A5 ")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if format.WidthMM != 148 || format.HeightMM != 210 {
		t.Fatalf("unexpected dimensions: %+v", format)
	}
}

func TestValidateResolution(t *testing.T) {
	for _, dpi := range []int{200, 400, 600} {
		if err := ValidateResolution(dpi); err != nil {
			t.Fatalf("expected %d accepted: %v", dpi, err)
		}
	}
	if err := ValidateResolution(300); !errors.Is(err, services.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}
