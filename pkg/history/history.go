// Package history builds the per-day score series for the last week of
// daily records. It reuses the scoring engine with day semantics, scoring
// each day from its own record only.
package history

import (
	"context"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Days is the number of trailing calendar days a history covers.
const Days = 7

// Point is the score series entry for one calendar day.
type Point struct {
	Date      time.Time         `json:"date" msgpack:"date"`
	MainScore health.Value      `json:"main_score" msgpack:"main_score"`
	Breakdown scoring.Breakdown `json:"breakdown" msgpack:"breakdown"`
	Readiness health.Value      `json:"recovery_readiness" msgpack:"recovery_readiness"`
	Strain    health.Value      `json:"training_strain" msgpack:"training_strain"`

	// Raw inputs kept for rollups.
	SleepHours health.Value `json:"sleep_hours" msgpack:"sleep_hours"`
	HRV        health.Value `json:"hrv_ms" msgpack:"hrv_ms"`
}

// ScoreHistory is the oldest-to-newest series. Days without a record are
// omitted, never interpolated.
type ScoreHistory struct {
	Points []Point `json:"points" msgpack:"points"`
}

// WeeklyStats are rolling averages over a ScoreHistory. Each is absent
// when no day carries the underlying value.
type WeeklyStats struct {
	AvgSleepHours health.Value `json:"avg_sleep_hours" msgpack:"avg_sleep_hours"`
	AvgReadiness  health.Value `json:"avg_readiness" msgpack:"avg_readiness"`
	AvgStrain     health.Value `json:"avg_strain" msgpack:"avg_strain"`
	AvgHRV        health.Value `json:"avg_hrv_ms" msgpack:"avg_hrv_ms"`
}

// WeeklyStats averages the series.
func (h ScoreHistory) WeeklyStats() WeeklyStats {
	avg := func(field func(Point) health.Value) health.Value {
		var xs []float64
		for _, p := range h.Points {
			if v, ok := field(p).Get(); ok {
				xs = append(xs, v)
			}
		}
		if len(xs) == 0 {
			return health.None()
		}
		return health.Some(stat.Mean(xs, nil))
	}
	return WeeklyStats{
		AvgSleepHours: avg(func(p Point) health.Value { return p.SleepHours }),
		AvgReadiness:  avg(func(p Point) health.Value { return p.Readiness }),
		AvgStrain:     avg(func(p Point) health.Value { return p.Strain }),
		AvgHRV:        avg(func(p Point) health.Value { return p.HRV }),
	}
}

// Builder turns daily records into a ScoreHistory. It has no side effects.
type Builder struct {
	engine *scoring.Engine
}

// NewBuilder creates a builder that scores days with engine.
func NewBuilder(engine *scoring.Engine) *Builder {
	return &Builder{engine: engine}
}

// Build scores each of the trailing Days calendar days present in records,
// counted back from the newest record. The input slice is not modified.
func (b *Builder) Build(records []health.DailyRecord) ScoreHistory {
	sorted := health.SortRecords(records)
	if len(sorted) == 0 {
		return ScoreHistory{}
	}

	newest := sorted[len(sorted)-1].Date
	window := health.Window(sorted, newest.AddDate(0, 0, 1), Days)

	h := ScoreHistory{Points: make([]Point, 0, len(window))}
	for _, r := range window {
		// Each day is scored from its own record; no per-day baseline.
		bundle := b.engine.Compute(r.Snapshot(), nil, health.PeriodDay)
		h.Points = append(h.Points, Point{
			Date:       r.Date,
			MainScore:  bundle.MainScore,
			Breakdown:  bundle.Breakdown(),
			Readiness:  bundle.Get(scoring.KindRecoveryReadiness).Value,
			Strain:     bundle.Get(scoring.KindTrainingStrain).Value,
			SleepHours: r.SleepHours,
			HRV:        r.HRV,
		})
	}
	return h
}

// Result is a finished history tagged with the refresh stamp that asked
// for it, so consumers can drop stale arrivals.
type Result struct {
	Stamp   string
	History ScoreHistory
}

// Start builds the history on its own goroutine and delivers exactly one
// Result, unless ctx is cancelled first. The channel is closed after.
func (b *Builder) Start(ctx context.Context, stamp string, records []health.DailyRecord) <-chan Result {
	own := make([]health.DailyRecord, len(records))
	copy(own, records)

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		h := b.Build(own)
		select {
		case out <- Result{Stamp: stamp, History: h}:
		case <-ctx.Done():
		}
	}()
	return out
}
