package main

import (
	"github.com/spf13/cobra"

	"scanpi/internal/scanner"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	var (
		configFlag     string
		formatFlag     string
		resolutionFlag int
	)

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "scanpi",
		Short:         "Drive a remote document scanner and merge the pages into a PDF",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runScan(cmd, cfg, formatFlag, resolutionFlag)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", scanner.DefaultFormat, "Document format (a4, a5, a6, letter, legal)")
	rootCmd.Flags().IntVarP(&resolutionFlag, "resolution", "r", scanner.DefaultResolution, "Scan resolution in DPI (200, 400, 600)")

	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))

	return rootCmd
}
