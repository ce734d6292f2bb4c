package scoring

import (
	"errors"
	"fmt"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// ErrInvalidGoal is returned when a configured goal is negative.
var ErrInvalidGoal = errors.New("invalid goal")

// Goals are the per-day targets. Additive goals are multiplied by the
// period length; the sleep goal is nightly for every period.
type Goals struct {
	Steps           float64 `yaml:"steps" json:"steps"`
	ActiveEnergy    float64 `yaml:"active_energy_kcal" json:"active_energy_kcal"`
	ExerciseMinutes float64 `yaml:"exercise_minutes" json:"exercise_minutes"`
	StandHours      float64 `yaml:"stand_hours" json:"stand_hours"`
	SleepHours      float64 `yaml:"sleep_hours" json:"sleep_hours"`
}

// DefaultGoals returns the default daily targets.
func DefaultGoals() Goals {
	return Goals{
		Steps:           10000,
		ActiveEnergy:    500,
		ExerciseMinutes: 30,
		StandHours:      12,
		SleepHours:      8,
	}
}

// Validate rejects negative goals. A zero goal is allowed and disables
// the matching ratio.
func (g Goals) Validate() error {
	for name, v := range map[string]float64{
		"steps":            g.Steps,
		"active_energy":    g.ActiveEnergy,
		"exercise_minutes": g.ExerciseMinutes,
		"stand_hours":      g.StandHours,
		"sleep_hours":      g.SleepHours,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s is %v", ErrInvalidGoal, name, v)
		}
	}
	return nil
}

func progress(v health.Value, goal float64) GoalProgress {
	p := GoalProgress{Value: v, Goal: goal}
	if goal > 0 {
		p.Ratio = v.Map(func(x float64) float64 { return x / goal })
	}
	return p
}

func (g Goals) progress(s health.Snapshot, period health.Period, exercise health.Value) DailyGoals {
	days := float64(period.Days())
	return DailyGoals{
		Steps:           progress(s.Steps, g.Steps*days),
		ActiveEnergy:    progress(s.ActiveEnergy, g.ActiveEnergy*days),
		ExerciseMinutes: progress(exercise, g.ExerciseMinutes*days),
		StandHours:      progress(s.StandHours, g.StandHours*days),
		SleepHours:      progress(s.SleepHours, g.SleepHours),
	}
}
