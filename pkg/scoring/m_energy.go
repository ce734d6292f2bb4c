package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// EnergyForecastMetric predicts available energy for the day ahead.
type EnergyForecastMetric struct {
	SleepWeight float64
	HRVWeight   float64
	RHRWeight   float64
	SpO2Weight  float64
}

func (m *EnergyForecastMetric) Kind() Kind   { return KindEnergyForecast }
func (m *EnergyForecastMetric) Name() string { return "Energy forecast" }

func (m *EnergyForecastMetric) Requires() []health.Key {
	return []health.Key{health.KeySleepHours, health.KeyHRV, health.KeyRestingHeartRate, health.KeySpO2}
}

func (m *EnergyForecastMetric) Evaluate(in *Inputs) InsightMetric {
	return blend(m.Kind(),
		comp("sleep_duration", m.SleepWeight, in.sleepScore()),
		comp("hrv_vs_baseline", m.HRVWeight, in.hrvScore()),
		comp("resting_hr_vs_baseline", m.RHRWeight, in.rhrScore()),
		comp("blood_oxygen", m.SpO2Weight, in.spo2Score()),
	)
}
