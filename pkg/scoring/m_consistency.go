package scoring

import (
	"gonum.org/v1/gonum/stat"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// SleepConsistencyMetric rewards a steady nightly sleep duration. It needs
// at least two nights, including the current one.
type SleepConsistencyMetric struct{}

func (m *SleepConsistencyMetric) Kind() Kind   { return KindSleepConsistency }
func (m *SleepConsistencyMetric) Name() string { return "Sleep consistency" }

func (m *SleepConsistencyMetric) Requires() []health.Key {
	return []health.Key{health.KeySleepHours}
}

func (m *SleepConsistencyMetric) Evaluate(in *Inputs) InsightMetric {
	nights := health.Values(in.Short, sleepOf)
	if h, ok := in.Current.SleepHours.Get(); ok {
		nights = append(nights, h)
	}

	var sd health.Value
	if len(nights) >= 2 {
		sd = health.Some(stat.StdDev(nights, nil))
	}
	return blend(m.Kind(), comp("sleep_duration_stddev", 1, linear(sd, 2.0, 0.25)))
}
