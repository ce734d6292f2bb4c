package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func newHistoryCmd() *cobra.Command {
	var (
		historyPath string
		outputFmt   string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the per-day score history for the last 7 days",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engine, err := scoring.NewEngine(cfg.EngineOptions())
			if err != nil {
				return err
			}

			path := historyPath
			if path == "" {
				path = filepath.Join(cfg.Source.Dir, source.HistoryFile)
			}
			records, err := health.LoadHistory(path)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), history.NewBuilder(engine).Build(records), outputFmt)
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "Path to a daily history JSON file (default: <source dir>/history.json)")
	cmd.Flags().StringVar(&outputFmt, "output", "text", "Output format: text or json")

	return cmd
}

func printHistory(w io.Writer, h history.ScoreHistory, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			history.ScoreHistory
			Weekly history.WeeklyStats `json:"weekly"`
		}{h, h.WeeklyStats()})
	}

	if len(h.Points) == 0 {
		fmt.Fprintln(w, "No daily records.")
		return nil
	}
	fmt.Fprintf(w, "%-12s %6s %10s %7s %6s\n", "Date", "Score", "Readiness", "Strain", "Sleep")
	for _, p := range h.Points {
		fmt.Fprintf(w, "%-12s %6s %10s %7s %6s\n",
			p.Date.Format("2006-01-02"), cell(p.MainScore, "%.0f"), cell(p.Readiness, "%.0f"),
			cell(p.Strain, "%.0f"), cell(p.SleepHours, "%.1f"))
	}
	return nil
}

func cell(v health.Value, format string) string {
	f, ok := v.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf(format, f)
}
