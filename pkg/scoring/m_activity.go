package scoring

import "github.com/vitalscope/vitalscope/pkg/health"

// ActivityMetric scores movement against the period-scaled daily goals.
type ActivityMetric struct {
	StepsWeight    float64
	EnergyWeight   float64
	ExerciseWeight float64
}

func (m *ActivityMetric) Kind() Kind   { return KindActivityScore }
func (m *ActivityMetric) Name() string { return "Activity" }

func (m *ActivityMetric) Requires() []health.Key {
	return []health.Key{health.KeySteps, health.KeyActiveEnergy, health.KeyExerciseMinutes, health.KeyWorkouts}
}

func (m *ActivityMetric) Evaluate(in *Inputs) InsightMetric {
	days := float64(in.Period.Days())
	g := in.Goals
	return blend(m.Kind(),
		comp("steps_vs_goal", m.StepsWeight, ratio(in.Current.Steps, health.Some(g.Steps*days))),
		comp("active_energy_vs_goal", m.EnergyWeight, ratio(in.Current.ActiveEnergy, health.Some(g.ActiveEnergy*days))),
		comp("exercise_vs_goal", m.ExerciseWeight, ratio(in.exerciseMinutes(), health.Some(g.ExerciseMinutes*days))),
	)
}

// LoadBalanceMetric compares acute load with the chronic baseline. Both
// undertraining and sudden spikes score lower.
type LoadBalanceMetric struct {
	EnergyWeight float64
	StepsWeight  float64
}

func (m *LoadBalanceMetric) Kind() Kind   { return KindLoadBalance }
func (m *LoadBalanceMetric) Name() string { return "Load balance" }

func (m *LoadBalanceMetric) Requires() []health.Key {
	return []health.Key{health.KeyActiveEnergy, health.KeySteps}
}

func (m *LoadBalanceMetric) Evaluate(in *Inputs) InsightMetric {
	return blend(m.Kind(),
		comp("active_energy_acwr", m.EnergyWeight, acwrScore(in.acwr(in.Current.ActiveEnergy, energyOf))),
		comp("steps_acwr", m.StepsWeight, acwrScore(in.acwr(in.Current.Steps, stepsOf))),
	)
}

// TrainingStrainMetric measures how hard the period's training was.
// Higher means more strain.
type TrainingStrainMetric struct {
	EnergyWeight  float64
	MinutesWeight float64
}

func (m *TrainingStrainMetric) Kind() Kind   { return KindTrainingStrain }
func (m *TrainingStrainMetric) Name() string { return "Training strain" }

func (m *TrainingStrainMetric) Requires() []health.Key {
	return []health.Key{health.KeyActiveEnergy, health.KeyExerciseMinutes, health.KeyWorkouts}
}

func (m *TrainingStrainMetric) Evaluate(in *Inputs) InsightMetric {
	return blend(m.Kind(),
		comp("active_energy_per_day", m.EnergyWeight, linear(perDay(in.Current.ActiveEnergy, in.Period), 0, 1000)),
		comp("training_minutes_per_day", m.MinutesWeight, linear(perDay(in.exerciseMinutes(), in.Period), 0, 90)),
	)
}
