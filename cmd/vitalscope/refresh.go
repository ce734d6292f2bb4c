package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/app"
	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/surface"
)

func newRefreshCmd() *cobra.Command {
	var (
		periods   []string
		sourceDir string
		outputFmt string
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Score the configured source and publish results to the cache",
		Long: `Runs a full refresh cycle for each period: fetch samples, score, save the
main score and breakdown, then wait for the score history and narrative.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := surface.ForFormat(outputFmt)
			if err != nil {
				return err
			}

			var src source.Source
			if sourceDir != "" {
				src = source.NewFileSource(sourceDir)
			}
			a, err := openApp(cmd.Context(), cmd, src)
			if err != nil {
				return err
			}

			return closeApp(a, runRefresh(cmd, a, periods, renderer))
		},
	}

	cmd.Flags().StringSliceVar(&periods, "period", nil, "Periods to refresh (default: the configured schedule periods)")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Directory with snapshot_<period>.json and history.json")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or markdown")

	return cmd
}

func runRefresh(cmd *cobra.Command, a *app.App, periods []string, renderer surface.Renderer) error {
	targets := a.Config.Periods()
	if len(periods) > 0 {
		targets = targets[:0]
		for _, p := range periods {
			period, err := health.ParsePeriod(p)
			if err != nil {
				return err
			}
			targets = append(targets, period)
		}
	}
	if len(targets) == 0 {
		targets = []health.Period{health.PeriodDay}
	}

	for _, period := range targets {
		res, err := a.Pipeline.Refresh(cmd.Context(), period)
		if err != nil {
			return fmt.Errorf("refresh %s: %w", period, err)
		}
		a.Pipeline.Wait()

		report := &surface.Report{Bundle: res.Bundle}
		if h, ok := a.Cache.LoadHistory(); ok {
			report.History = &h.History
		}
		if w, ok := a.Cache.LoadWeeklyStats(); ok {
			report.Weekly = &w.WeeklyStats
		}
		if n, ok := a.Cache.LoadExternalNarrative(); ok {
			report.Narrative = n.Name
		}
		if err := renderer.Render(cmd.OutOrStdout(), report); err != nil {
			return err
		}
	}
	if r, ok := a.Cache.PeekPendingReveal(); ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "New narrative %q is waiting to be revealed (vitalscope reveal consume)\n", r.NewName)
	}
	return nil
}
