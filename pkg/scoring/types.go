// Package scoring implements the Vitalscope insight scoring engine.
// It turns a health snapshot plus recent daily history into explainable
// 0-100 sub-scores and a weighted main score, without ever treating a
// missing measurement as zero.
package scoring

import (
	"fmt"
	"math"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// Kind identifies one insight sub-score. The set is closed; AllKinds lists
// every member in display order.
type Kind string

const (
	KindRecoveryReadiness    Kind = "recovery_readiness"
	KindSleepQuality         Kind = "sleep_quality"
	KindNervousSystemBalance Kind = "nervous_system_balance"
	KindEnergyForecast       Kind = "energy_forecast"
	KindActivityScore        Kind = "activity_score"
	KindLoadBalance          Kind = "load_balance"
	KindStressLoadIndex      Kind = "stress_load_index"
	KindMorningFreshness     Kind = "morning_freshness"
	KindSleepDebt            Kind = "sleep_debt"
	KindSleepConsistency     Kind = "sleep_consistency"
	KindTrainingStrain       Kind = "training_strain"
	KindCardioFitnessTrend   Kind = "cardio_fitness_trend"
)

// AllKinds lists every sub-score kind.
var AllKinds = []Kind{
	KindRecoveryReadiness,
	KindSleepQuality,
	KindNervousSystemBalance,
	KindEnergyForecast,
	KindActivityScore,
	KindLoadBalance,
	KindStressLoadIndex,
	KindMorningFreshness,
	KindSleepDebt,
	KindSleepConsistency,
	KindTrainingStrain,
	KindCardioFitnessTrend,
}

// ParseKind validates a sub-score name.
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sub-score %q", s)
}

// Component is one weighted input of a sub-score, already normalized to 0-100.
type Component struct {
	Key    string       `json:"key" msgpack:"key"`
	Weight float64      `json:"weight" msgpack:"weight"`
	Value  health.Value `json:"value" msgpack:"value"`
}

// InsightMetric is the output of a single sub-score.
type InsightMetric struct {
	Kind       Kind         `json:"kind" msgpack:"kind"`
	Value      health.Value `json:"value" msgpack:"value"`
	Confidence bool         `json:"confidence" msgpack:"confidence"`
	// Coverage is the share of component weight backed by present inputs.
	Coverage   float64     `json:"coverage" msgpack:"coverage"`
	Components []Component `json:"components,omitempty" msgpack:"components,omitempty"`
}

// Absent returns an InsightMetric with no value.
func Absent(k Kind) InsightMetric {
	return InsightMetric{Kind: k}
}

// GoalProgress is a measured quantity against its period-scaled goal.
type GoalProgress struct {
	Value health.Value `json:"value" msgpack:"value"`
	Goal  float64      `json:"goal" msgpack:"goal"`
	// Ratio is Value/Goal, absent when either is missing or the goal is zero.
	Ratio health.Value `json:"ratio" msgpack:"ratio"`
}

// DailyGoals is goal progress for the dimensions that have a goal.
type DailyGoals struct {
	Steps           GoalProgress `json:"steps" msgpack:"steps"`
	ActiveEnergy    GoalProgress `json:"active_energy" msgpack:"active_energy"`
	ExerciseMinutes GoalProgress `json:"exercise_minutes" msgpack:"exercise_minutes"`
	StandHours      GoalProgress `json:"stand_hours" msgpack:"stand_hours"`
	SleepHours      GoalProgress `json:"sleep_hours" msgpack:"sleep_hours"`
}

// Bundle is the complete output of scoring one snapshot.
// Immutable once computed.
type Bundle struct {
	Period       health.Period          `json:"period" msgpack:"period"`
	MainScore    health.Value           `json:"main_score" msgpack:"main_score"`
	Contributors int                    `json:"contributors" msgpack:"contributors"`
	Scores       map[Kind]InsightMetric `json:"scores" msgpack:"scores"`
	Goals        DailyGoals             `json:"daily_goals" msgpack:"daily_goals"`
}

// Get returns the sub-score for k, absent when the bundle has none.
func (b Bundle) Get(k Kind) InsightMetric {
	if m, ok := b.Scores[k]; ok {
		return m
	}
	return Absent(k)
}

// Present returns the kinds with a value, in AllKinds order.
func (b Bundle) Present() []Kind {
	var out []Kind
	for _, k := range AllKinds {
		if b.Get(k).Value.OK() {
			out = append(out, k)
		}
	}
	return out
}

// BreakdownKinds are the sub-scores carried in a Breakdown, in wire order.
var BreakdownKinds = []Kind{
	KindRecoveryReadiness,
	KindSleepQuality,
	KindNervousSystemBalance,
	KindEnergyForecast,
	KindActivityScore,
	KindLoadBalance,
}

// Breakdown is the integer-rounded view of the six main-score sub-scores.
// It is persisted for the day period only. Nil means absent.
type Breakdown struct {
	RecoveryReadiness    *int `json:"recovery_readiness" msgpack:"recovery_readiness"`
	SleepQuality         *int `json:"sleep_quality" msgpack:"sleep_quality"`
	NervousSystemBalance *int `json:"nervous_system_balance" msgpack:"nervous_system_balance"`
	EnergyForecast       *int `json:"energy_forecast" msgpack:"energy_forecast"`
	ActivityScore        *int `json:"activity_score" msgpack:"activity_score"`
	LoadBalance          *int `json:"load_balance" msgpack:"load_balance"`
}

// Scores returns the breakdown values in BreakdownKinds order.
func (b Breakdown) Scores() []*int {
	return []*int{
		b.RecoveryReadiness,
		b.SleepQuality,
		b.NervousSystemBalance,
		b.EnergyForecast,
		b.ActivityScore,
		b.LoadBalance,
	}
}

// Breakdown rounds the contributing sub-scores to integers.
func (b Bundle) Breakdown() Breakdown {
	return Breakdown{
		RecoveryReadiness:    roundPtr(b.Get(KindRecoveryReadiness).Value),
		SleepQuality:         roundPtr(b.Get(KindSleepQuality).Value),
		NervousSystemBalance: roundPtr(b.Get(KindNervousSystemBalance).Value),
		EnergyForecast:       roundPtr(b.Get(KindEnergyForecast).Value),
		ActivityScore:        roundPtr(b.Get(KindActivityScore).Value),
		LoadBalance:          roundPtr(b.Get(KindLoadBalance).Value),
	}
}

func roundPtr(v health.Value) *int {
	f, ok := v.Get()
	if !ok {
		return nil
	}
	n := int(math.Round(f))
	return &n
}
