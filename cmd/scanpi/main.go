package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"scanpi/internal/prompt"
	"scanpi/internal/services"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Scan aborted.")
			return
		}
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		if errors.Is(err, services.ErrConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
