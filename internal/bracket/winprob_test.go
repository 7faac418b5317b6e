package bracket

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

func TestWinProbabilitySymmetricUniformRatings(t *testing.T) {
	a := ratings.Rating{Name: "A", Offense: 0, Defense: 0, Tempo: 67.7}
	b := ratings.Rating{Name: "B", Offense: 0, Defense: 0, Tempo: 67.7}

	p := WinProbability(a, b, nil, 0)
	assert.InDelta(t, 0.5, p, 1e-9)
}

func TestWinProbabilitySymmetryProperty(t *testing.T) {
	a := ratings.Rating{Name: "A", Offense: 3.2, Defense: -1.1, Tempo: 70}
	b := ratings.Rating{Name: "B", Offense: -0.4, Defense: 2.0, Tempo: 65}

	for _, f := range []float64{0, 0.1, 0.5, 0.99} {
		pAB := WinProbability(a, b, nil, f)
		pBA := WinProbability(b, a, nil, f)
		assert.InDelta(t, 1.0, pAB+pBA, 1e-9)
	}
}

func TestWinProbabilityOverrideUsedAndSymmetric(t *testing.T) {
	a := ratings.Rating{Name: "A", Offense: 10, Defense: -10, Tempo: 70}
	b := ratings.Rating{Name: "B", Offense: -10, Defense: 10, Tempo: 70}

	overrides := NewOverrideTable().Set("A", "B", 0.2)

	pAB := WinProbability(a, b, overrides, 0)
	pBA := WinProbability(b, a, overrides, 0)

	assert.InDelta(t, 0.2, pAB, 1e-12)
	assert.InDelta(t, 0.8, pBA, 1e-12)
}

func TestWinProbabilityForfeitBlend(t *testing.T) {
	a := ratings.Rating{Name: "A", Offense: 100, Defense: -100, Tempo: 70}
	b := ratings.Rating{Name: "B", Offense: -100, Defense: 100, Tempo: 70}

	// Without forfeit, a should win virtually always.
	pNoForfeit := WinProbability(a, b, nil, 0)
	assert.Greater(t, pNoForfeit, 0.999)

	// A full coin-flip forfeit blends toward 0.5.
	pForfeit := WinProbability(a, b, nil, 1.0)
	assert.InDelta(t, 0.5, pForfeit, 1e-9)

	// Partial forfeit interpolates linearly.
	pHalf := WinProbability(a, b, nil, 0.5)
	expected := 0.5*pNoForfeit + 0.5*0.5
	assert.InDelta(t, expected, pHalf, 1e-9)
}

func TestWinProbabilityBounded(t *testing.T) {
	a := ratings.Rating{Name: "A", Offense: 1000, Defense: -1000, Tempo: 70}
	b := ratings.Rating{Name: "B", Offense: -1000, Defense: 1000, Tempo: 70}
	p := WinProbability(a, b, nil, 0)
	assert.True(t, p >= 0 && p <= 1)
	assert.False(t, math.IsNaN(p))
}
