package scoring

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// Baseline window lengths in days, per period.
var windows = map[health.Period]struct{ short, long int }{
	health.PeriodDay:   {7, 28},
	health.PeriodWeek:  {28, 28},
	health.PeriodMonth: {90, 90},
}

// Inputs is everything a Metric may look at. Current is already normalized;
// Short and Long are the baseline windows ending before the snapshot's day.
type Inputs struct {
	Current health.Snapshot
	Period  health.Period
	Goals   Goals
	Anchor  time.Time
	Short   []health.DailyRecord
	Long    []health.DailyRecord
}

func newInputs(current health.Snapshot, history []health.DailyRecord, period health.Period, goals Goals) *Inputs {
	w, ok := windows[period]
	if !ok {
		period = health.PeriodDay
		w = windows[period]
	}
	sorted := health.SortRecords(history)
	anchor := health.Anchor(current, sorted)

	return &Inputs{
		Current: current.Normalized(),
		Period:  period,
		Goals:   goals,
		Anchor:  anchor,
		Short:   health.Window(sorted, anchor, w.short),
		Long:    health.Window(sorted, anchor, w.long),
	}
}

// mean is the average of the present values of field, absent when none.
func mean(records []health.DailyRecord, field func(health.DailyRecord) health.Value) health.Value {
	xs := health.Values(records, field)
	if len(xs) == 0 {
		return health.None()
	}
	return health.Some(stat.Mean(xs, nil))
}

func hrvOf(r health.DailyRecord) health.Value    { return r.HRV }
func rhrOf(r health.DailyRecord) health.Value    { return r.RestingHeartRate }
func sleepOf(r health.DailyRecord) health.Value  { return r.SleepHours }
func stepsOf(r health.DailyRecord) health.Value  { return r.Steps }
func energyOf(r health.DailyRecord) health.Value { return r.ActiveEnergy }
func vo2Of(r health.DailyRecord) health.Value    { return r.VO2Max }

// sleepNeed is the nightly sleep target. A zero goal falls back to 8h so
// sleep scoring never divides by an empty target.
func (in *Inputs) sleepNeed() float64 {
	if in.Goals.SleepHours > 0 {
		return in.Goals.SleepHours
	}
	return DefaultGoals().SleepHours
}

// hrvScore compares current HRV with the short baseline. Without any
// baseline it falls back to an absolute 20-100 ms scale.
func (in *Inputs) hrvScore() health.Value {
	hrv := in.Current.HRV
	base := mean(in.Short, hrvOf)
	if !base.OK() {
		base = in.Current.HRVBaseline7d
	}
	if b, ok := base.Get(); ok && b > 0 {
		return ratio(hrv, base)
	}
	return linear(hrv, 20, 100)
}

// rhrScore is 100 when resting HR is at or below baseline and falls as it
// rises. It needs a baseline.
func (in *Inputs) rhrScore() health.Value {
	base := mean(in.Short, rhrOf)
	rhr, ok := in.Current.RestingHeartRate.Get()
	if !ok || rhr <= 0 {
		return health.None()
	}
	return ratio(base, health.Some(rhr))
}

// rhrElevation is current resting HR minus the short baseline, in bpm.
func (in *Inputs) rhrElevation() health.Value {
	base, ok := mean(in.Short, rhrOf).Get()
	if !ok {
		return health.None()
	}
	return in.Current.RestingHeartRate.Map(func(v float64) float64 { return v - base })
}

// sleepScore maps nightly sleep onto need-4h .. need.
func (in *Inputs) sleepScore() health.Value {
	need := in.sleepNeed()
	return linear(in.Current.SleepHours, need-4, need)
}

func (in *Inputs) spo2Score() health.Value {
	return linear(in.Current.SpO2, 90, 98)
}

// exerciseMinutes prefers the logged exercise minutes and falls back to
// summed workout durations.
func (in *Inputs) exerciseMinutes() health.Value {
	if in.Current.ExerciseMinutes.OK() {
		return in.Current.ExerciseMinutes
	}
	return in.Current.WorkoutMinutes()
}

// acwrScore rates an acute:chronic ratio. 0.8-1.3 is the sweet spot.
func acwrScore(r health.Value) health.Value {
	return r.Map(func(v float64) float64 {
		switch {
		case v < 0.8:
			return clamp100((v - 0.3) / 0.5 * 100)
		case v > 1.3:
			return clamp100((2.0 - v) / 0.7 * 100)
		default:
			return 100
		}
	})
}

// acwr is the acute per-day load over the chronic per-day baseline.
func (in *Inputs) acwr(current health.Value, field func(health.DailyRecord) health.Value) health.Value {
	chronic := mean(in.Long, field)
	c, ok := chronic.Get()
	if !ok || c <= 0 {
		return health.None()
	}
	return perDay(current, in.Period).Map(func(v float64) float64 { return v / c })
}
