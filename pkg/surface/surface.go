// Package surface defines output rendering for Vitalscope results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/history"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Report is everything a renderer may show for one scoring run.
type Report struct {
	Bundle    scoring.Bundle        `json:"bundle"`
	History   *history.ScoreHistory `json:"history,omitempty"`
	Weekly    *history.WeeklyStats  `json:"weekly,omitempty"`
	Narrative string                `json:"narrative,omitempty"` // cached narrative name
}

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// ForFormat returns the renderer for a --format flag value.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case "", "text":
		return &TerminalRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md":
		return &MarkdownRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown format %q (want text, json or markdown)", format)
}

// KindLabel turns a sub-score kind into a display label.
func KindLabel(k scoring.Kind) string {
	s := strings.ReplaceAll(string(k), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// headline returns the display name and score text for the report.
func headline(r *Report) (name, score string, tier *scoring.Tier) {
	v, ok := r.Bundle.MainScore.Get()
	if !ok {
		return "Not enough data yet", "n/a", nil
	}
	t := scoring.Classify(v)
	return scoring.Display(t, r.Narrative), fmt.Sprintf("%.1f", v), &t
}

func formatValue(m scoring.InsightMetric) string {
	v, ok := m.Value.Get()
	if !ok {
		return "n/a"
	}
	s := fmt.Sprintf("%.0f", v)
	if !m.Confidence {
		s += "~"
	}
	return s
}
