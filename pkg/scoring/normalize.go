package scoring

import (
	"math"

	"github.com/vitalscope/vitalscope/pkg/health"
)

// minCoverage is the share of a sub-score's weight that must be backed by
// present components for the result to be reported as confident.
const minCoverage = 0.5

// linear maps x onto 0-100 where lo scores 0 and hi scores 100. lo may be
// greater than hi for quantities where less is better.
func linear(x health.Value, lo, hi float64) health.Value {
	return x.Map(func(v float64) float64 {
		return clamp100((v - lo) / (hi - lo) * 100)
	})
}

// ratio scores x as a percentage of base, capped at 100. It is absent when
// either side is missing or base is not positive.
func ratio(x, base health.Value) health.Value {
	b, ok := base.Get()
	if !ok || b <= 0 {
		return health.None()
	}
	return x.Map(func(v float64) float64 { return clamp100(v / b * 100) })
}

// share returns part/whole, absent when whole is missing or not positive.
func share(part, whole health.Value) health.Value {
	w, ok := whole.Get()
	if !ok || w <= 0 {
		return health.None()
	}
	return part.Map(func(v float64) float64 { return v / w })
}

// perDay divides a period total by the number of days it covers.
func perDay(x health.Value, p health.Period) health.Value {
	days := float64(p.Days())
	return x.Map(func(v float64) float64 { return v / days })
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// blend combines weighted components, renormalizing over the ones that are
// present. The result is absent when no component is present.
func blend(kind Kind, cs ...Component) InsightMetric {
	var total, present, sum float64
	for _, c := range cs {
		total += c.Weight
		if v, ok := c.Value.Get(); ok {
			present += c.Weight
			sum += c.Weight * v
		}
	}

	m := InsightMetric{Kind: kind, Components: cs}
	if present == 0 || total == 0 {
		return m
	}

	m.Value = health.Some(clamp100(sum / present))
	m.Coverage = present / total
	m.Confidence = m.Coverage >= minCoverage
	return m
}

func comp(key string, weight float64, v health.Value) Component {
	return Component{Key: key, Weight: weight, Value: v}
}
