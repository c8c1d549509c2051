// Package games holds the per-game outcome resolvers: each one owns a single
// game's scoring rule and randomization. Resolvers assume validated input;
// range checks happen at the request boundary.
package games

import (
	"math/rand"
	"sync"
)

// Prize is one segment of the spin wheel.
type Prize struct {
	Label  string  `json:"prize"`
	Value  float64 `json:"value"`
	Weight float64 `json:"-"`
}

// wheelPrizes is the fixed probability table. Order matters: draws walk the
// list accumulating weights, so reordering changes edge-case floating-point
// behavior. Weights sum to 1.0.
var wheelPrizes = []Prize{
	{Label: "10 Points", Value: 10, Weight: 0.20},
	{Label: "25 Points", Value: 25, Weight: 0.20},
	{Label: "50 Points", Value: 50, Weight: 0.15},
	{Label: "100 Points", Value: 100, Weight: 0.10},
	{Label: "200 Points", Value: 200, Weight: 0.05},
	{Label: "500 Points", Value: 500, Weight: 0.04},
	{Label: "1000 Points", Value: 1000, Weight: 0.01},
	{Label: "Try Again", Value: 0, Weight: 0.25},
}

var segmentDegrees = 360 / len(wheelPrizes)

// SpinResult is a resolved wheel draw. Degrees is a presentation-only
// rotation amount for the client animation.
type SpinResult struct {
	Prize   string  `json:"prize"`
	Value   float64 `json:"value"`
	Degrees int     `json:"degrees"`
	// Recorded reports whether the draw yields a ledger entry. "Try Again"
	// outcomes are never recorded.
	Recorded bool `json:"-"`
}

// SpinWheel resolves spin draws over the fixed prize table.
type SpinWheel struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSpinWheel creates a resolver drawing from rng.
func NewSpinWheel(rng *rand.Rand) *SpinWheel {
	return &SpinWheel{rng: rng}
}

// Prizes returns the configured prize table.
func (w *SpinWheel) Prizes() []Prize {
	return wheelPrizes
}

// Spin draws one prize by cumulative-distribution sampling: a uniform
// fraction in [0,1) walks the ordered prize list accumulating weights until
// it falls inside a segment. If floating-point drift leaves the draw
// unmatched, the last prize wins; every draw resolves to exactly one prize.
func (w *SpinWheel) Spin() SpinResult {
	w.mu.Lock()
	draw := w.rng.Float64()
	spins := w.rng.Intn(3) + 3
	w.mu.Unlock()

	idx := len(wheelPrizes) - 1
	cumulative := 0.0
	for i, p := range wheelPrizes {
		cumulative += p.Weight
		if draw < cumulative {
			idx = i
			break
		}
	}

	prize := wheelPrizes[idx]
	return SpinResult{
		Prize:    prize.Label,
		Value:    prize.Value,
		Degrees:  spins*360 + idx*segmentDegrees,
		Recorded: prize.Value > 0,
	}
}
