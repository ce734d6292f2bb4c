package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func newTierCmd() *cobra.Command {
	var narrativeName string

	cmd := &cobra.Command{
		Use:   "tier <score>",
		Short: "Classify a score into its tier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parsing score: %w", err)
			}
			t := scoring.Classify(score)
			fmt.Fprintf(cmd.OutOrStdout(), "%s (tier %d, %s, from %.0f)\n",
				scoring.Display(t, narrativeName), t.Ordinal, t.Status, t.LowerBound)
			return nil
		},
	}

	cmd.Flags().StringVar(&narrativeName, "narrative", "", "Narrative name to display instead of the tier label")
	return cmd
}
