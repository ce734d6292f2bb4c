package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// NervousSystemMetric reads autonomic balance from HRV and resting HR
// relative to their recent baselines.
type NervousSystemMetric struct {
	HRVWeight float64
	RHRWeight float64
}

func (m *NervousSystemMetric) Kind() Kind   { return KindNervousSystemBalance }
func (m *NervousSystemMetric) Name() string { return "Nervous system balance" }

func (m *NervousSystemMetric) Requires() []health.Key {
	return []health.Key{health.KeyHRV, health.KeyRestingHeartRate}
}

func (m *NervousSystemMetric) Evaluate(in *Inputs) InsightMetric {
	return blend(m.Kind(),
		comp("hrv_vs_baseline", m.HRVWeight, in.hrvScore()),
		comp("resting_hr_vs_baseline", m.RHRWeight, in.rhrScore()),
	)
}
