package surface

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

const barWidth = 20

func scoreColor(v float64) string {
	if noColor() {
		return ""
	}
	switch t := scoring.Classify(v); {
	case t.Ordinal >= 3:
		return colorGreen
	case t.Ordinal == 2:
		return colorYellow
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func bar(v float64) string {
	n := int(v/100*barWidth + 0.5)
	n = max(0, min(barWidth, n))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	b := report.Bundle
	name, score, tier := headline(report)

	// Header
	if tier != nil {
		v, _ := b.MainScore.Get()
		fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("Vitalscope: %s · Score %s",
			colored(name, scoreColor(v)), score)))
		fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("%s · %s period · %d contributors", tier.Status, b.Period, b.Contributors)))
	} else {
		fmt.Fprintf(w, "%s\n", bold("Vitalscope: "+name))
		fmt.Fprintf(w, "%s\n\n", dim(fmt.Sprintf("%s period · %d contributors", b.Period, b.Contributors)))
	}

	// Sub-scores
	present := b.Present()
	if len(present) == 0 {
		fmt.Fprintln(w, "No sub-scores.")
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "Sub-scores:")
		for _, k := range scoring.AllKinds {
			m := b.Get(k)
			v, ok := m.Value.Get()
			if !ok {
				fmt.Fprintf(w, "  %-24s %s\n", KindLabel(k), dim("n/a"))
				continue
			}
			fmt.Fprintf(w, "  %-24s %s %4s\n", KindLabel(k), colored(bar(v), scoreColor(v)), formatValue(m))
		}
		fmt.Fprintln(w)
	}

	// Goals
	goals := []struct {
		label string
		p     scoring.GoalProgress
		unit  string
	}{
		{"Steps", b.Goals.Steps, ""},
		{"Active energy", b.Goals.ActiveEnergy, " kcal"},
		{"Exercise", b.Goals.ExerciseMinutes, " min"},
		{"Stand", b.Goals.StandHours, " h"},
		{"Sleep", b.Goals.SleepHours, " h"},
	}
	wroteGoals := false
	for _, g := range goals {
		v, ok := g.p.Value.Get()
		if !ok {
			continue
		}
		if !wroteGoals {
			fmt.Fprintln(w, "Goals:")
			wroteGoals = true
		}
		pct := "n/a"
		if ratio, ok := g.p.Ratio.Get(); ok {
			pct = fmt.Sprintf("%.0f%%", ratio*100)
		}
		fmt.Fprintf(w, "  %-14s %s / %s%s %s\n", g.label,
			trimFloat(v), trimFloat(g.p.Goal), g.unit, dim("("+pct+")"))
	}
	if wroteGoals {
		fmt.Fprintln(w)
	}

	// History
	if report.History != nil && len(report.History.Points) > 0 {
		fmt.Fprintln(w, "Last 7 days:")
		for _, p := range report.History.Points {
			fmt.Fprintf(w, "  %s  %s\n", p.Date.Format("Mon 02 Jan"), historyCell(p.MainScore))
		}
		fmt.Fprintln(w)
	}

	if report.Weekly != nil {
		ws := report.Weekly
		fmt.Fprintf(w, "Weekly averages: sleep %s h · readiness %s · strain %s · HRV %s ms\n\n",
			avg(ws.AvgSleepHours), avg(ws.AvgReadiness), avg(ws.AvgStrain), avg(ws.AvgHRV))
	}

	return nil
}

func historyCell(v health.Value) string {
	s, ok := v.Get()
	if !ok {
		return dim("n/a")
	}
	return colored(bar(s), scoreColor(s)) + fmt.Sprintf(" %3.0f", s)
}

func avg(v health.Value) string {
	f, ok := v.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", f)
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
