package scoring

// DefaultMetrics returns the standard set of sub-score metrics with the
// given weights.
func DefaultMetrics(w DefaultWeights) []Metric {
	return []Metric{
		&RecoveryMetric{
			HRVWeight:      w.RecoveryHRV,
			RHRWeight:      w.RecoveryRHR,
			SleepWeight:    w.RecoverySleep,
			RecoveryWeight: w.RecoveryHRRecover,
		},
		&SleepQualityMetric{
			DurationWeight:   w.SleepDuration,
			EfficiencyWeight: w.SleepEfficiency,
			DeepWeight:       w.SleepDeepShare,
			REMWeight:        w.SleepREMShare,
		},
		&NervousSystemMetric{
			HRVWeight: w.NervousHRV,
			RHRWeight: w.NervousRHR,
		},
		&EnergyForecastMetric{
			SleepWeight: w.EnergySleep,
			HRVWeight:   w.EnergyHRV,
			RHRWeight:   w.EnergyRHR,
			SpO2Weight:  w.EnergySpO2,
		},
		&ActivityMetric{
			StepsWeight:    w.ActivitySteps,
			EnergyWeight:   w.ActivityEnergy,
			ExerciseWeight: w.ActivityExercise,
		},
		&LoadBalanceMetric{
			EnergyWeight: w.LoadEnergy,
			StepsWeight:  w.LoadSteps,
		},
		&StressLoadMetric{
			HRVWeight:   w.StressHRVSuppression,
			RHRWeight:   w.StressRHRElevation,
			SleepWeight: w.StressSleepShortfall,
		},
		&MorningFreshnessMetric{
			SleepWeight:       w.FreshSleep,
			RestorativeWeight: w.FreshRestorative,
			HRVWeight:         w.FreshHRV,
			AwakeWeight:       w.FreshAwake,
		},
		&SleepDebtMetric{
			TonightWeight:     w.DebtTonight,
			AccumulatedWeight: w.DebtAccumulated,
		},
		&SleepConsistencyMetric{},
		&TrainingStrainMetric{
			EnergyWeight:  w.StrainEnergy,
			MinutesWeight: w.StrainMinutes,
		},
		&CardioTrendMetric{
			LevelWeight:    w.CardioLevel,
			BaselineWeight: w.CardioBaseline,
			SlopeWeight:    w.CardioSlope,
		},
	}
}
