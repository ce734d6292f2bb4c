package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/app"
	"github.com/vitalscope/vitalscope/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached results",
	}
	cmd.AddCommand(newCacheShowCmd(), newCacheClearCmd())
	return cmd
}

// cacheView is the JSON shape of "cache show". Absent fields are null.
type cacheView struct {
	MainScore     *cache.MainScore     `json:"main_score"`
	Breakdown     *cache.Breakdown     `json:"score_breakdown"`
	Narrative     *cache.Narrative     `json:"narrative"`
	PendingReveal *cache.PendingReveal `json:"pending_reveal"`
	WeeklyStats   *cache.WeeklyStats   `json:"weekly_stats"`
}

func snapshotCache(c *cache.Cache) cacheView {
	var v cacheView
	if m, ok := c.LoadMainScore(); ok {
		v.MainScore = &m
	}
	if b, ok := c.LoadScoreBreakdown(); ok {
		v.Breakdown = &b
	}
	if n, ok := c.LoadExternalNarrative(); ok {
		v.Narrative = &n
	}
	if r, ok := c.PeekPendingReveal(); ok {
		v.PendingReveal = &r
	}
	if w, ok := c.LoadWeeklyStats(); ok {
		v.WeeklyStats = &w
	}
	return v
}

func newCacheShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print every cached field as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snapshotCache(a.Cache))
			})
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				a.Cache.Clear()
				fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
				return nil
			})
		},
	}
}

// withApp opens the app, runs fn, and always flushes and closes.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := openApp(cmd.Context(), cmd, nil)
	if err != nil {
		return err
	}
	return closeApp(a, fn(a))
}

// closeApp flushes and closes a, keeping runErr when both fail.
func closeApp(a *app.App, runErr error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing cache: %w", err)
	}
	return runErr
}
