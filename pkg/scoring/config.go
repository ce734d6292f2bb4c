package scoring

// DefaultWeights holds the component weights for every sub-score and the
// main-score weights over the contributing sub-scores.
type DefaultWeights struct {
	// Recovery readiness
	RecoveryHRV       float64
	RecoveryRHR       float64
	RecoverySleep     float64
	RecoveryHRRecover float64

	// Sleep quality
	SleepDuration   float64
	SleepEfficiency float64
	SleepDeepShare  float64
	SleepREMShare   float64

	// Nervous system balance
	NervousHRV float64
	NervousRHR float64

	// Energy forecast
	EnergySleep float64
	EnergyHRV   float64
	EnergyRHR   float64
	EnergySpO2  float64

	// Activity
	ActivitySteps    float64
	ActivityEnergy   float64
	ActivityExercise float64

	// Load balance (acute:chronic workload)
	LoadEnergy float64
	LoadSteps  float64

	// Stress load
	StressHRVSuppression float64
	StressRHRElevation   float64
	StressSleepShortfall float64

	// Morning freshness
	FreshSleep       float64
	FreshRestorative float64
	FreshHRV         float64
	FreshAwake       float64

	// Sleep debt
	DebtTonight     float64
	DebtAccumulated float64

	// Training strain
	StrainEnergy  float64
	StrainMinutes float64

	// Cardio fitness trend
	CardioLevel    float64
	CardioBaseline float64
	CardioSlope    float64

	// Main score
	Main   map[Kind]float64
	Quorum int
}

// Defaults returns the default scoring weights.
func Defaults() DefaultWeights {
	return DefaultWeights{
		RecoveryHRV:       0.40,
		RecoveryRHR:       0.25,
		RecoverySleep:     0.25,
		RecoveryHRRecover: 0.10,

		SleepDuration:   0.35,
		SleepEfficiency: 0.25,
		SleepDeepShare:  0.20,
		SleepREMShare:   0.20,

		NervousHRV: 0.70,
		NervousRHR: 0.30,

		EnergySleep: 0.40,
		EnergyHRV:   0.30,
		EnergyRHR:   0.15,
		EnergySpO2:  0.15,

		ActivitySteps:    0.50,
		ActivityEnergy:   0.30,
		ActivityExercise: 0.20,

		LoadEnergy: 0.70,
		LoadSteps:  0.30,

		StressHRVSuppression: 0.50,
		StressRHRElevation:   0.30,
		StressSleepShortfall: 0.20,

		FreshSleep:       0.30,
		FreshRestorative: 0.30,
		FreshHRV:         0.20,
		FreshAwake:       0.20,

		DebtTonight:     0.40,
		DebtAccumulated: 0.60,

		StrainEnergy:  0.50,
		StrainMinutes: 0.50,

		CardioLevel:    0.40,
		CardioBaseline: 0.30,
		CardioSlope:    0.30,

		Main: DefaultMainWeights(),

		Quorum: 2,
	}
}

// DefaultMainWeights returns the weights of the six sub-scores that feed
// the main score.
func DefaultMainWeights() map[Kind]float64 {
	return map[Kind]float64{
		KindRecoveryReadiness:    0.25,
		KindSleepQuality:         0.20,
		KindNervousSystemBalance: 0.15,
		KindActivityScore:        0.15,
		KindLoadBalance:          0.15,
		KindEnergyForecast:       0.10,
	}
}
