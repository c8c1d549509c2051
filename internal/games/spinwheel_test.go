package games

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWheelWeightsSumToOne(t *testing.T) {
	sum := 0.0
	for _, p := range wheelPrizes {
		sum += p.Weight
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSegmentDegreesCoverTheWheel(t *testing.T) {
	assert.Equal(t, 360, segmentDegrees*len(wheelPrizes))
}

func TestSpinAlwaysResolvesToAPrize(t *testing.T) {
	labels := make(map[string]Prize, len(wheelPrizes))
	for _, p := range wheelPrizes {
		labels[p.Label] = p
	}

	w := NewSpinWheel(rand.New(rand.NewSource(1)))
	for i := 0; i < 1000; i++ {
		result := w.Spin()
		prize, ok := labels[result.Prize]
		require.True(t, ok, "unknown prize %q", result.Prize)
		assert.Equal(t, prize.Value, result.Value)
		assert.Equal(t, prize.Value > 0, result.Recorded)
		assert.GreaterOrEqual(t, result.Degrees, 3*360)
		assert.Zero(t, result.Degrees%segmentDegrees)
	}
}

func TestSpinDistributionMatchesWeights(t *testing.T) {
	const draws = 100000

	w := NewSpinWheel(rand.New(rand.NewSource(99)))
	counts := make(map[string]int)
	for i := 0; i < draws; i++ {
		counts[w.Spin().Prize]++
	}

	for _, p := range wheelPrizes {
		freq := float64(counts[p.Label]) / draws
		assert.InDelta(t, p.Weight, freq, 0.01, "prize %q", p.Label)
	}
}

func TestTryAgainNeverRecorded(t *testing.T) {
	w := NewSpinWheel(rand.New(rand.NewSource(7)))

	sawTryAgain := false
	for i := 0; i < 200; i++ {
		result := w.Spin()
		if result.Prize == "Try Again" {
			sawTryAgain = true
			assert.Zero(t, result.Value)
			assert.False(t, result.Recorded)
		}
	}
	// Weight 0.25 makes 200 consecutive misses vanishingly unlikely.
	assert.True(t, sawTryAgain)
}

func TestPromptIsAlwaysFromFixedSet(t *testing.T) {
	known := make(map[string]bool, len(typingPrompts))
	for _, p := range typingPrompts {
		known[p] = true
	}

	r := NewTypeRacer(rand.New(rand.NewSource(2)))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		prompt := r.Prompt()
		require.True(t, known[prompt])
		seen[prompt] = true
	}
	// 100 uniform draws over 5 prompts should visit every one.
	assert.Len(t, seen, len(typingPrompts))
}
