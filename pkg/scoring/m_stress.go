package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// StressLoadMetric scores physiological stress. Higher means more stress:
// suppressed HRV, elevated resting HR and short sleep all push it up.
type StressLoadMetric struct {
	HRVWeight   float64
	RHRWeight   float64
	SleepWeight float64
}

func (m *StressLoadMetric) Kind() Kind   { return KindStressLoadIndex }
func (m *StressLoadMetric) Name() string { return "Stress load" }

func (m *StressLoadMetric) Requires() []health.Key {
	return []health.Key{health.KeyHRV, health.KeyRestingHeartRate, health.KeySleepHours}
}

func (m *StressLoadMetric) Evaluate(in *Inputs) InsightMetric {
	need := in.sleepNeed()
	suppression := in.hrvScore().Map(func(v float64) float64 { return 100 - v })

	return blend(m.Kind(),
		comp("hrv_suppression", m.HRVWeight, suppression),
		comp("resting_hr_elevation", m.RHRWeight, linear(in.rhrElevation(), 0, 10)),
		comp("sleep_shortfall", m.SleepWeight, linear(in.Current.SleepHours, need, need-4)),
	)
}
