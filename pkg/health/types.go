// Package health defines the raw sample data model for Vitalscope.
// Every measurable field is an explicit optional Value; absence means
// "unmeasured" and is never folded into zero.
package health

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Period is the aggregation window a score is computed for.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// Periods lists all periods in ascending window order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth}

// ParsePeriod parses a period name, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodDay:
		return PeriodDay, nil
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	}
	return "", fmt.Errorf("unknown period %q (want day, week or month)", s)
}

// Days returns how many calendar days one period aggregate covers.
func (p Period) Days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	default:
		return 1
	}
}

// Workout is a single recorded training session.
type Workout struct {
	Activity     string        `json:"activity"`
	Start        time.Time     `json:"start"`
	Duration     time.Duration `json:"duration"`
	Energy       Value         `json:"energy_kcal"`
	AvgHeartRate Value         `json:"avg_heart_rate"`
}

// Snapshot is one period's aggregate of raw samples.
// Snapshots are treated as immutable once handed to the engine.
type Snapshot struct {
	Date time.Time `json:"date,omitempty"` // as-of day; zero means "latest"

	// Activity
	Steps           Value `json:"steps"`
	ActiveEnergy    Value `json:"active_energy_kcal"`
	BasalEnergy     Value `json:"basal_energy_kcal"`
	TotalEnergy     Value `json:"total_energy_kcal"`
	ExerciseMinutes Value `json:"exercise_minutes"`
	StandHours      Value `json:"stand_hours"`

	// Heart
	HeartRate         Value `json:"heart_rate"`
	RestingHeartRate  Value `json:"resting_heart_rate"`
	WalkingHeartRate  Value `json:"walking_heart_rate"`
	HRV               Value `json:"hrv_ms"`
	HRVBaseline7d     Value `json:"hrv_baseline_7d_ms"`
	HRVTrendSlope     Value `json:"hrv_trend_slope"`
	HeartRateRecovery Value `json:"heart_rate_recovery"`
	SpO2              Value `json:"spo2_pct"`
	BloodPressureSys  Value `json:"blood_pressure_systolic"`
	BloodPressureDia  Value `json:"blood_pressure_diastolic"`
	VO2Max            Value `json:"vo2max"`

	// Sleep
	SleepHours      Value `json:"sleep_hours"`
	DeepSleepHours  Value `json:"deep_sleep_hours"`
	REMSleepHours   Value `json:"rem_sleep_hours"`
	CoreSleepHours  Value `json:"core_sleep_hours"`
	AwakeHours      Value `json:"awake_hours"`
	SleepEfficiency Value `json:"sleep_efficiency_pct"`

	// Body composition
	BodyMass          Value `json:"body_mass_kg"`
	BodyFatPercentage Value `json:"body_fat_pct"`
	LeanBodyMass      Value `json:"lean_body_mass_kg"`

	// Gait
	WalkingSpeed        Value `json:"walking_speed_mps"`
	StepLength          Value `json:"step_length_m"`
	DoubleSupportPct    Value `json:"double_support_pct"`
	WalkingAsymmetryPct Value `json:"walking_asymmetry_pct"`

	// Nutrition and metabolic
	DietaryEnergy Value `json:"dietary_energy_kcal"`
	Protein       Value `json:"protein_g"`
	Carbohydrates Value `json:"carbohydrates_g"`
	Fat           Value `json:"fat_g"`
	BloodGlucose  Value `json:"blood_glucose_mgdl"`

	Workouts []Workout `json:"workouts,omitempty"`
}

// Key names a single snapshot field in the map-shaped view of a snapshot.
type Key string

const (
	KeySteps             Key = "steps"
	KeyActiveEnergy      Key = "active_energy_kcal"
	KeyBasalEnergy       Key = "basal_energy_kcal"
	KeyTotalEnergy       Key = "total_energy_kcal"
	KeyExerciseMinutes   Key = "exercise_minutes"
	KeyStandHours        Key = "stand_hours"
	KeyHeartRate         Key = "heart_rate"
	KeyRestingHeartRate  Key = "resting_heart_rate"
	KeyWalkingHeartRate  Key = "walking_heart_rate"
	KeyHRV               Key = "hrv_ms"
	KeyHRVBaseline7d     Key = "hrv_baseline_7d_ms"
	KeyHRVTrendSlope     Key = "hrv_trend_slope"
	KeyHeartRateRecovery Key = "heart_rate_recovery"
	KeySpO2              Key = "spo2_pct"
	KeyBloodPressureSys  Key = "blood_pressure_systolic"
	KeyBloodPressureDia  Key = "blood_pressure_diastolic"
	KeyVO2Max            Key = "vo2max"
	KeySleepHours        Key = "sleep_hours"
	KeyDeepSleepHours    Key = "deep_sleep_hours"
	KeyREMSleepHours     Key = "rem_sleep_hours"
	KeyCoreSleepHours    Key = "core_sleep_hours"
	KeyAwakeHours        Key = "awake_hours"
	KeySleepEfficiency   Key = "sleep_efficiency_pct"
	KeyBodyMass          Key = "body_mass_kg"
	KeyBodyFat           Key = "body_fat_pct"
	KeyLeanBodyMass      Key = "lean_body_mass_kg"
	KeyWalkingSpeed      Key = "walking_speed_mps"
	KeyStepLength        Key = "step_length_m"
	KeyDoubleSupport     Key = "double_support_pct"
	KeyWalkingAsymmetry  Key = "walking_asymmetry_pct"
	KeyDietaryEnergy     Key = "dietary_energy_kcal"
	KeyProtein           Key = "protein_g"
	KeyCarbohydrates     Key = "carbohydrates_g"
	KeyFat               Key = "fat_g"
	KeyBloodGlucose      Key = "blood_glucose_mgdl"
)

func (s *Snapshot) fields() map[Key]*Value {
	return map[Key]*Value{
		KeySteps:             &s.Steps,
		KeyActiveEnergy:      &s.ActiveEnergy,
		KeyBasalEnergy:       &s.BasalEnergy,
		KeyTotalEnergy:       &s.TotalEnergy,
		KeyExerciseMinutes:   &s.ExerciseMinutes,
		KeyStandHours:        &s.StandHours,
		KeyHeartRate:         &s.HeartRate,
		KeyRestingHeartRate:  &s.RestingHeartRate,
		KeyWalkingHeartRate:  &s.WalkingHeartRate,
		KeyHRV:               &s.HRV,
		KeyHRVBaseline7d:     &s.HRVBaseline7d,
		KeyHRVTrendSlope:     &s.HRVTrendSlope,
		KeyHeartRateRecovery: &s.HeartRateRecovery,
		KeySpO2:              &s.SpO2,
		KeyBloodPressureSys:  &s.BloodPressureSys,
		KeyBloodPressureDia:  &s.BloodPressureDia,
		KeyVO2Max:            &s.VO2Max,
		KeySleepHours:        &s.SleepHours,
		KeyDeepSleepHours:    &s.DeepSleepHours,
		KeyREMSleepHours:     &s.REMSleepHours,
		KeyCoreSleepHours:    &s.CoreSleepHours,
		KeyAwakeHours:        &s.AwakeHours,
		KeySleepEfficiency:   &s.SleepEfficiency,
		KeyBodyMass:          &s.BodyMass,
		KeyBodyFat:           &s.BodyFatPercentage,
		KeyLeanBodyMass:      &s.LeanBodyMass,
		KeyWalkingSpeed:      &s.WalkingSpeed,
		KeyStepLength:        &s.StepLength,
		KeyDoubleSupport:     &s.DoubleSupportPct,
		KeyWalkingAsymmetry:  &s.WalkingAsymmetryPct,
		KeyDietaryEnergy:     &s.DietaryEnergy,
		KeyProtein:           &s.Protein,
		KeyCarbohydrates:     &s.Carbohydrates,
		KeyFat:               &s.Fat,
		KeyBloodGlucose:      &s.BloodGlucose,
	}
}

// percentKeys are fields that represent percentages and are clamped to [0,100].
var percentKeys = map[Key]bool{
	KeySpO2:             true,
	KeySleepEfficiency:  true,
	KeyBodyFat:          true,
	KeyDoubleSupport:    true,
	KeyWalkingAsymmetry: true,
}

// signedKeys may legitimately be negative (trend slopes).
var signedKeys = map[Key]bool{
	KeyHRVTrendSlope: true,
}

// Keys returns all snapshot keys in stable order.
func Keys() []Key {
	var s Snapshot
	m := s.fields()
	keys := make([]Key, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Get returns the value stored under key, absent for unknown keys.
func (s Snapshot) Get(key Key) Value {
	if p, ok := s.fields()[key]; ok {
		return *p
	}
	return Value{}
}

// Set stores v under key. It reports false for unknown keys.
func (s *Snapshot) Set(key Key, v Value) bool {
	p, ok := s.fields()[key]
	if ok {
		*p = v
	}
	return ok
}

// IsEmpty reports whether no field carries a measurement.
func (s Snapshot) IsEmpty() bool {
	for _, p := range s.fields() {
		if p.OK() {
			return false
		}
	}
	return len(s.Workouts) == 0
}

// Normalized returns a copy with percentages clamped to [0,100] and all
// unsigned quantities floored at zero.
func (s Snapshot) Normalized() Snapshot {
	out := s
	out.Workouts = make([]Workout, 0, len(s.Workouts))
	for k, p := range out.fields() {
		switch {
		case percentKeys[k]:
			*p = p.Clamp(0, 100)
		case !signedKeys[k]:
			*p = p.Map(nonNegative)
		}
	}
	for _, w := range s.Workouts {
		if w.Duration < 0 {
			w.Duration = 0
		}
		w.Energy = w.Energy.Map(nonNegative)
		w.AvgHeartRate = w.AvgHeartRate.Map(nonNegative)
		out.Workouts = append(out.Workouts, w)
	}
	return out
}

// WorkoutMinutes returns the summed workout duration, absent without workouts.
func (s Snapshot) WorkoutMinutes() Value {
	if len(s.Workouts) == 0 {
		return Value{}
	}
	var total time.Duration
	for _, w := range s.Workouts {
		total += w.Duration
	}
	return Some(total.Minutes())
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// KeyWorkouts is a pseudo-key that is present when the snapshot lists at
// least one workout. It has no scalar value.
const KeyWorkouts Key = "workouts"

// Has reports whether key carries a measurement, including KeyWorkouts.
func (s Snapshot) Has(key Key) bool {
	if key == KeyWorkouts {
		return len(s.Workouts) > 0
	}
	return s.Get(key).OK()
}
