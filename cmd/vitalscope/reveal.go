package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/app"
)

func newRevealCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Show or consume a staged narrative change",
	}
	cmd.AddCommand(newRevealPeekCmd(), newRevealConsumeCmd())
	return cmd
}

func newRevealPeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "peek",
		Short: "Show the staged narrative change without consuming it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				r, ok := a.Cache.PeekPendingReveal()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reveal.")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", r.PreviousName, r.NewName)
				return nil
			})
		},
	}
}

func newRevealConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Consume the staged narrative change and make it current",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				r, ok := a.Cache.ConsumePendingReveal()
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to reveal.")
					return nil
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(r)
			})
		},
	}
}
