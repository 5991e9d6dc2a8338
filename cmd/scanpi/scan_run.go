package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"scanpi/internal/config"
	"scanpi/internal/history"
	"scanpi/internal/logging"
	"scanpi/internal/pdf"
	"scanpi/internal/paperless"
	"scanpi/internal/prompt"
	"scanpi/internal/remote"
	"scanpi/internal/scanner"
	"scanpi/internal/workflow"
)

// runScan wires the collaborators together and drives one session.
func runScan(cmd *cobra.Command, cfg *config.Config, format string, resolution int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return err
	}

	lock := flock.New(config.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire session lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another scanpi session is already running (lock %s)", config.LockPath())
	}
	defer func() { _ = lock.Unlock() }()

	interactive := isatty.IsTerminal(os.Stdout.Fd())
	var spin *spinner.Spinner
	if interactive {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		spin.Suffix = fmt.Sprintf(" Connecting to %s...", cfg.SSHArgs)
		spin.Start()
	}

	client, err := remote.Connect(ctx, cfg, logger)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	defer client.Close()

	transfer, err := remote.NewTransfer(client)
	if err != nil {
		return err
	}
	defer transfer.Close()

	var recorder workflow.Recorder
	if cfg.History.Enabled {
		store, err := history.Open(cfg)
		if err != nil {
			// History is a convenience; a broken store must not block scanning.
			logger.Warn("history store unavailable", logging.Error(err))
		} else {
			defer store.Close()
			recorder = store
		}
	}

	var uploader workflow.Uploader
	if pc := paperless.NewClient(cfg, logger); pc != nil {
		uploader = pc
	}

	scan := scanner.New(client, cfg.Scanner.Device, logger)
	controller := workflow.New(workflow.Params{
		Config:     cfg,
		Scanner:    scan,
		Cleaner:    scan,
		Downloader: transfer,
		Merger:     pdf.NewMerger(logger),
		Uploader:   uploader,
		Recorder:   recorder,
		Prompter:   prompt.NewTerminal(os.Stdin, os.Stdout),
		Logger:     logger,
		Format:     format,
		Resolution: resolution,
	})

	sess, err := controller.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(cmd, interactive, sess.OutputPath, sess.PageCount(), sess.Uploaded)
	return nil
}

func printSummary(cmd *cobra.Command, interactive bool, outputPath string, pages int, uploaded bool) {
	out := cmd.OutOrStdout()
	message := fmt.Sprintf("Saved %d page(s) to %s", pages, outputPath)
	if interactive {
		_, _ = color.New(color.FgGreen).Fprintln(out, message)
	} else {
		_, _ = fmt.Fprintln(out, message)
	}
	if uploaded {
		_, _ = fmt.Fprintln(out, "Uploaded to Paperless.")
	}
}
