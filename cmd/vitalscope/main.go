// Package main provides the vitalscope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vitalscope",
		Short: "Health insight scoring from wearable samples",
		Long: `Vitalscope turns raw health samples into explainable 0-100 sub-scores,
a weighted main score and a tier, and caches the results for consumers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: search for .vitalscope/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newScoreCmd(),
		newHistoryCmd(),
		newTierCmd(),
		newRefreshCmd(),
		newCacheCmd(),
		newRevealCmd(),
	)
	return rootCmd
}
