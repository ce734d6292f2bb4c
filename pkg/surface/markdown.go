package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// MarkdownRenderer produces a Markdown summary suitable for sharing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, BuildMarkdownSummary(report))
	return err
}

// BuildMarkdownSummary creates the Markdown body for a Report.
func BuildMarkdownSummary(report *Report) string {
	var sb strings.Builder
	b := report.Bundle
	name, score, tier := headline(report)

	sb.WriteString(fmt.Sprintf("## Vitalscope: %s · Score %s\n\n", name, score))
	if tier != nil {
		sb.WriteString(fmt.Sprintf("%s %s · %s period\n\n", tierIcon(*tier), tier.Status, b.Period))
	}

	// Main-score contributors first, then the rest.
	sb.WriteString("### Sub-scores\n\n")
	sb.WriteString("| Sub-score | Score | Confident |\n|-----------|-------|-----------|\n")
	rows := 0
	for _, k := range orderedKinds() {
		m := b.Get(k)
		if !m.Value.OK() {
			continue
		}
		conf := "yes"
		if !m.Confidence {
			conf = "no"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", KindLabel(k), formatValue(m), conf))
		rows++
	}
	if rows == 0 {
		sb.WriteString("| _none_ | | |\n")
	}
	sb.WriteString("\n")

	if report.History != nil && len(report.History.Points) > 0 {
		sb.WriteString("### Last 7 days\n\n")
		for _, p := range report.History.Points {
			v := "n/a"
			if s, ok := p.MainScore.Get(); ok {
				v = fmt.Sprintf("%.0f", s)
			}
			sb.WriteString(fmt.Sprintf("- %s: %s\n", p.Date.Format("2006-01-02"), v))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func orderedKinds() []scoring.Kind {
	out := append([]scoring.Kind{}, scoring.BreakdownKinds...)
	for _, k := range scoring.AllKinds {
		found := false
		for _, c := range scoring.BreakdownKinds {
			if c == k {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	return out
}

func tierIcon(t scoring.Tier) string {
	switch {
	case t.Ordinal >= 3:
		return ":green_circle:"
	case t.Ordinal == 2:
		return ":yellow_circle:"
	case t.Ordinal == 1:
		return ":orange_circle:"
	default:
		return ":red_circle:"
	}
}
