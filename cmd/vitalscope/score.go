package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
	"github.com/vitalscope/vitalscope/pkg/surface"
)

func newScoreCmd() *cobra.Command {
	var (
		snapshotPath string
		historyPath  string
		sourceDir    string
		period       string
		outputFmt    string
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a snapshot without touching the cache",
		Long: `Computes every sub-score, the main score, daily goals and the 7-day
score history from either explicit files or the configured source directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engine, err := scoring.NewEngine(cfg.EngineOptions())
			if err != nil {
				return err
			}
			return runScore(cmd.Context(), cmd.OutOrStdout(), engine, scoreOpts{
				snapshotPath: snapshotPath,
				historyPath:  historyPath,
				sourceDir:    firstNonEmpty(sourceDir, cfg.Source.Dir),
				period:       period,
				outputFmt:    outputFmt,
			})
		},
	}

	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Path to a snapshot JSON file")
	cmd.Flags().StringVar(&historyPath, "history", "", "Path to a daily history JSON file")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Directory with snapshot_<period>.json and history.json")
	cmd.Flags().StringVar(&period, "period", "day", "Aggregation period: day, week or month")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text, json or markdown")

	return cmd
}

type scoreOpts struct {
	snapshotPath string
	historyPath  string
	sourceDir    string
	period       string
	outputFmt    string
}

func runScore(ctx context.Context, w io.Writer, engine *scoring.Engine, opts scoreOpts) error {
	period, err := health.ParsePeriod(opts.period)
	if err != nil {
		return err
	}
	renderer, err := surface.ForFormat(opts.outputFmt)
	if err != nil {
		return err
	}

	in, err := readInput(ctx, opts, period)
	if err != nil {
		return err
	}

	bundle := engine.Compute(in.Snapshot, in.History, period)
	h := history.NewBuilder(engine).Build(in.History)
	weekly := h.WeeklyStats()

	return renderer.Render(w, &surface.Report{
		Bundle:  bundle,
		History: &h,
		Weekly:  &weekly,
	})
}

func readInput(ctx context.Context, opts scoreOpts, period health.Period) (source.Input, error) {
	if opts.snapshotPath == "" && opts.historyPath == "" {
		return source.NewFileSource(opts.sourceDir).Fetch(ctx, period)
	}

	var in source.Input
	if opts.snapshotPath != "" {
		snap, err := health.LoadSnapshot(opts.snapshotPath)
		if err != nil {
			return in, err
		}
		in.Snapshot = *snap
	}
	if opts.historyPath != "" {
		records, err := health.LoadHistory(opts.historyPath)
		if err != nil {
			return in, err
		}
		in.History = records
	}
	if in.Snapshot.IsEmpty() && len(in.History) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no measurements found, every score will be absent")
	}
	return in, nil
}
