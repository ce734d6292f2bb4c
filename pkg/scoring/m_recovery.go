package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// RecoveryMetric estimates how ready the body is for strain today.
type RecoveryMetric struct {
	HRVWeight      float64
	RHRWeight      float64
	SleepWeight    float64
	RecoveryWeight float64
}

func (m *RecoveryMetric) Kind() Kind   { return KindRecoveryReadiness }
func (m *RecoveryMetric) Name() string { return "Recovery readiness" }

func (m *RecoveryMetric) Requires() []health.Key {
	return []health.Key{health.KeyHRV, health.KeyRestingHeartRate, health.KeySleepHours, health.KeyHeartRateRecovery}
}

func (m *RecoveryMetric) Evaluate(in *Inputs) InsightMetric {
	return blend(m.Kind(),
		comp("hrv_vs_baseline", m.HRVWeight, in.hrvScore()),
		comp("resting_hr_vs_baseline", m.RHRWeight, in.rhrScore()),
		comp("sleep_duration", m.SleepWeight, in.sleepScore()),
		comp("heart_rate_recovery", m.RecoveryWeight, linear(in.Current.HeartRateRecovery, 10, 40)),
	)
}
