package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// SleepQualityMetric rates the last sleep by duration, efficiency and
// stage composition.
type SleepQualityMetric struct {
	DurationWeight   float64
	EfficiencyWeight float64
	DeepWeight       float64
	REMWeight        float64
}

func (m *SleepQualityMetric) Kind() Kind   { return KindSleepQuality }
func (m *SleepQualityMetric) Name() string { return "Sleep quality" }

func (m *SleepQualityMetric) Requires() []health.Key {
	return []health.Key{health.KeySleepHours, health.KeySleepEfficiency}
}

func (m *SleepQualityMetric) Evaluate(in *Inputs) InsightMetric {
	c := in.Current
	return blend(m.Kind(),
		comp("sleep_duration", m.DurationWeight, in.sleepScore()),
		comp("sleep_efficiency", m.EfficiencyWeight, c.SleepEfficiency),
		comp("deep_share", m.DeepWeight, linear(share(c.DeepSleepHours, c.SleepHours), 0.05, 0.20)),
		comp("rem_share", m.REMWeight, linear(share(c.REMSleepHours, c.SleepHours), 0.10, 0.25)),
	)
}

// MorningFreshnessMetric estimates how rested one wakes up.
type MorningFreshnessMetric struct {
	SleepWeight       float64
	RestorativeWeight float64
	HRVWeight         float64
	AwakeWeight       float64
}

func (m *MorningFreshnessMetric) Kind() Kind   { return KindMorningFreshness }
func (m *MorningFreshnessMetric) Name() string { return "Morning freshness" }

func (m *MorningFreshnessMetric) Requires() []health.Key {
	return []health.Key{health.KeySleepHours, health.KeyHRV, health.KeyAwakeHours}
}

func (m *MorningFreshnessMetric) Evaluate(in *Inputs) InsightMetric {
	c := in.Current
	var restorative health.Value
	deep, okDeep := c.DeepSleepHours.Get()
	rem, okREM := c.REMSleepHours.Get()
	if okDeep && okREM {
		restorative = share(health.Some(deep+rem), c.SleepHours)
	}

	return blend(m.Kind(),
		comp("sleep_duration", m.SleepWeight, in.sleepScore()),
		comp("restorative_share", m.RestorativeWeight, linear(restorative, 0.20, 0.45)),
		comp("hrv_vs_baseline", m.HRVWeight, in.hrvScore()),
		comp("awake_time", m.AwakeWeight, linear(c.AwakeHours, 1.5, 0)),
	)
}

// SleepDebtMetric scores how little sleep is owed. 100 means no debt.
type SleepDebtMetric struct {
	TonightWeight     float64
	AccumulatedWeight float64
}

func (m *SleepDebtMetric) Kind() Kind   { return KindSleepDebt }
func (m *SleepDebtMetric) Name() string { return "Sleep debt" }

func (m *SleepDebtMetric) Requires() []health.Key {
	return []health.Key{health.KeySleepHours}
}

func (m *SleepDebtMetric) Evaluate(in *Inputs) InsightMetric {
	need := in.sleepNeed()
	deficit := func(h float64) float64 {
		if h >= need {
			return 0
		}
		return need - h
	}

	// Accumulated debt is normalized to a seven-night week.
	var accumulated health.Value
	if nights := health.Values(in.Short, sleepOf); len(nights) > 0 {
		var sum float64
		for _, h := range nights {
			sum += deficit(h)
		}
		accumulated = health.Some(sum * 7 / float64(len(nights)))
	}

	return blend(m.Kind(),
		comp("tonight_deficit", m.TonightWeight, linear(in.Current.SleepHours.Map(deficit), 3, 0)),
		comp("accumulated_deficit", m.AccumulatedWeight, linear(accumulated, 10, 0)),
	)
}
