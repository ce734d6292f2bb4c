package scoring_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "stalled"},
		{34.99, "stalled"},
		{35, "idling"},
		{54.9, "idling"},
		{55, "cruising"},
		{70, "accelerating"},
		{84.999, "accelerating"},
		{85, "peak"},
		{100, "peak"},
		{-20, "stalled"},
		{180, "peak"},
		{math.NaN(), "stalled"},
	}
	for _, tt := range tests {
		if got := scoring.Classify(tt.score); got.Label != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.score, got.Label, tt.want)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	prev := -1
	for s := 0.0; s <= 100; s += 0.25 {
		tier := scoring.Classify(s)
		if tier.Ordinal < prev {
			t.Fatalf("Classify(%v) ordinal %d dropped below %d", s, tier.Ordinal, prev)
		}
		prev = tier.Ordinal
	}
	assert.Equal(t, 4, prev)
}

func TestTiersAscending(t *testing.T) {
	assert.Equal(t, 0.0, scoring.Tiers[0].LowerBound)
	for i := 1; i < len(scoring.Tiers); i++ {
		assert.Greater(t, scoring.Tiers[i].LowerBound, scoring.Tiers[i-1].LowerBound)
		assert.Equal(t, i, scoring.Tiers[i].Ordinal)
	}
}

func TestDisplayPrefersNarrative(t *testing.T) {
	tier := scoring.Classify(90)
	assert.Equal(t, "Porsche Taycan", scoring.Display(tier, "Porsche Taycan"))
	assert.Equal(t, "peak", scoring.Display(tier, ""))
}
