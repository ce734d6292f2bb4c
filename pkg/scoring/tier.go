package scoring

import "math"

// Tier is one of five ordered score bands.
type Tier struct {
	Ordinal    int     `json:"ordinal"`
	LowerBound float64 `json:"lower_bound"`
	Label      string  `json:"label"`
	Status     string  `json:"status"`
	Appearance string  `json:"appearance"`
}

// Tiers lists the bands in ascending order. Lower bounds are strictly
// increasing and the first starts at 0.
var Tiers = []Tier{
	{Ordinal: 0, LowerBound: 0, Label: "stalled", Status: "Low", Appearance: "tier_stalled"},
	{Ordinal: 1, LowerBound: 35, Label: "idling", Status: "Fair", Appearance: "tier_idling"},
	{Ordinal: 2, LowerBound: 55, Label: "cruising", Status: "Good", Appearance: "tier_cruising"},
	{Ordinal: 3, LowerBound: 70, Label: "accelerating", Status: "Great", Appearance: "tier_accelerating"},
	{Ordinal: 4, LowerBound: 85, Label: "peak", Status: "Excellent", Appearance: "tier_peak"},
}

// Classify maps a score to its tier. Scores are clamped into [0,100]
// first; NaN falls into the lowest tier.
func Classify(score float64) Tier {
	if math.IsNaN(score) {
		return Tiers[0]
	}
	score = clamp100(score)
	for i := len(Tiers) - 1; i > 0; i-- {
		if score >= Tiers[i].LowerBound {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// Display returns the name to show for a tier, preferring a generated
// narrative name when one exists.
func Display(t Tier, narrativeName string) string {
	if narrativeName != "" {
		return narrativeName
	}
	return t.Label
}
