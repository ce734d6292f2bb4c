package scoring

import (
	"gonum.org/v1/gonum/stat"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// CardioTrendMetric combines the VO2 max level with its direction over
// the long baseline window.
type CardioTrendMetric struct {
	LevelWeight    float64
	BaselineWeight float64
	SlopeWeight    float64
}

func (m *CardioTrendMetric) Kind() Kind   { return KindCardioFitnessTrend }
func (m *CardioTrendMetric) Name() string { return "Cardio fitness trend" }

func (m *CardioTrendMetric) Requires() []health.Key {
	return []health.Key{health.KeyVO2Max}
}

func (m *CardioTrendMetric) Evaluate(in *Inputs) InsightMetric {
	vo2 := in.Current.VO2Max

	var vsBaseline health.Value
	if b, ok := mean(in.Long, vo2Of).Get(); ok && b > 0 {
		vsBaseline = vo2.Map(func(v float64) float64 { return (v - b) / b * 100 })
	}

	return blend(m.Kind(),
		comp("vo2max_level", m.LevelWeight, linear(vo2, 25, 55)),
		comp("vo2max_vs_baseline", m.BaselineWeight, linear(vsBaseline, -10, 10)),
		comp("vo2max_slope_30d", m.SlopeWeight, linear(m.slope(in), -3, 3)),
	)
}

// slope fits VO2 max against day offset and returns the change per 30 days.
// It needs three points, the current value included.
func (m *CardioTrendMetric) slope(in *Inputs) health.Value {
	cur, ok := in.Current.VO2Max.Get()
	if !ok {
		return health.None()
	}

	var xs, ys []float64
	for _, r := range in.Long {
		if v, ok := r.VO2Max.Get(); ok {
			xs = append(xs, r.Date.Sub(in.Anchor).Hours()/24)
			ys = append(ys, v)
		}
	}
	xs = append(xs, 0)
	ys = append(ys, cur)
	if len(xs) < 3 {
		return health.None()
	}

	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return health.Some(beta * 30)
}
