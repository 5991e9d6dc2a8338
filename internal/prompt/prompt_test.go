package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func newTestTerminal(input string) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return NewTerminal(strings.NewReader(input), &out), &out
}

func TestPageCountRepeatsUntilValid(t *testing.T) {
	term, out := newTestTerminal("zero\n-1\n3\n")
	count, err := term.PageCount(context.Background())
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3, got %d", count)
	}
	if !strings.Contains(out.String(), "greater than zero") {
		t.Fatalf("expected validation hint, got %q", out.String())
	}
}

func TestPageCountErrorsOnExhaustedInput(t *testing.T) {
	term, _ := newTestTerminal("")
	if _, err := term.PageCount(context.Background()); err == nil {
		t.Fatal("expected error when input is exhausted")
	}
}

func TestConfirmPageReady(t *testing.T) {
	term, out := newTestTerminal("\n")
	if err := term.ConfirmPageReady(context.Background(), 2); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !strings.Contains(out.String(), "page 2") {
		t.Fatalf("expected page number in prompt, got %q", out.String())
	}

	term, _ = newTestTerminal("q\n")
	if err := term.ConfirmPageReady(context.Background(), 1); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestRetryPageDefaultsToYes(t *testing.T) {
	cases := map[string]bool{
		"\n":    true,
		"y\n":   true,
		"yes\n": true,
		"n\n":   false,
		"no\n":  false,
	}
	for input, want := range cases {
		term, out := newTestTerminal(input)
		got, err := term.RetryPage(context.Background(), 4, "scanimage exit 1")
		if err != nil {
			t.Fatalf("retry %q: %v", input, err)
		}
		if got != want {
			t.Errorf("retry %q = %v, want %v", input, got, want)
		}
		if !strings.Contains(out.String(), "scanimage exit 1") {
			t.Errorf("expected failure reason in output, got %q", out.String())
		}
	}
}

func TestOutputNameDefault(t *testing.T) {
	term, _ := newTestTerminal("\n")
	name, err := term.OutputName(context.Background(), "scan")
	if err != nil {
		t.Fatalf("output name: %v", err)
	}
	if name != "scan" {
		t.Fatalf("expected default, got %q", name)
	}

	term, _ = newTestTerminal("tax return\n")
	name, err = term.OutputName(context.Background(), "scan")
	if err != nil {
		t.Fatalf("output name: %v", err)
	}
	if name != "tax return" {
		t.Fatalf("expected typed name, got %q", name)
	}
}

func TestConfirmUpload(t *testing.T) {
	term, _ := newTestTerminal("\n")
	ok, err := term.ConfirmUpload(context.Background())
	if err != nil {
		t.Fatalf("confirm upload: %v", err)
	}
	if !ok {
		t.Fatal("expected default yes")
	}

	term, _ = newTestTerminal("n\n")
	ok, err = term.ConfirmUpload(context.Background())
	if err != nil {
		t.Fatalf("confirm upload: %v", err)
	}
	if ok {
		t.Fatal("expected no")
	}
}

func TestAskHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	term, _ := newTestTerminal("3\n")
	if _, err := term.PageCount(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
