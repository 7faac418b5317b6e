package distribution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/portfolio"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

func uniformFourTeamState(t *testing.T) (*ratings.Book, *bracket.TournamentState) {
	t.Helper()
	book, err := ratings.NewBook(map[string]ratings.Rating{
		"A": {Name: "A", Offense: 0, Defense: 0, Tempo: 67.7},
		"B": {Name: "B", Offense: 0, Defense: 0, Tempo: 67.7},
		"C": {Name: "C", Offense: 0, Defense: 0, Tempo: 67.7},
		"D": {Name: "D", Offense: 0, Defense: 0, Tempo: 67.7},
	}, nil)
	require.NoError(t, err)

	b, err := bracket.NewBracket([]bracket.Slot{
		{"A": 1.0}, {"B": 1.0}, {"C": 1.0}, {"D": 1.0},
	})
	require.NoError(t, err)

	state, err := bracket.NewTournamentState(book, b, nil, []float64{1, 1}, 0)
	require.NoError(t, err)
	return book, state
}

func TestComputeReturnsNFiniteValuesWithExpectedValueFromClosedForm(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 1}, {Team: portfolio.CashKey, Quantity: 5}}

	summary, err := Compute(book, positions, state, 500, 1, 10)
	require.NoError(t, err)

	assert.InDelta(t, 5.75, summary.ExpectedValue, 1e-9)
	assert.LessOrEqual(t, summary.Min, summary.Max)
	assert.Len(t, summary.Histogram, 10)

	total := 0
	for _, bin := range summary.Histogram {
		total += bin.Count
	}
	assert.Equal(t, 500, total)
}

func TestComputePercentilesAreMonotonic(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 10}}

	summary, err := Compute(book, positions, state, 2000, 7, 20)
	require.NoError(t, err)

	order := []string{"p1", "p5", "p10", "p25", "p50", "p75", "p90", "p95", "p99"}
	for i := 1; i < len(order); i++ {
		assert.LessOrEqual(t, summary.Percentiles[order[i-1]], summary.Percentiles[order[i]])
	}
}

func TestComputeRejectsNonPositiveSimulationCount(t *testing.T) {
	book, state := uniformFourTeamState(t)
	_, err := Compute(book, nil, state, 0, 1, 10)
	require.Error(t, err)
}

func TestHistogramCountsMaxIntoLastBin(t *testing.T) {
	bins := histogram([]float64{0, 1, 2, 3, 4}, 4)
	require.Len(t, bins, 4)
	assert.Equal(t, 2, bins[len(bins)-1].Count)

	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 5, total)
}

func TestHistogramHandlesZeroWidthDistribution(t *testing.T) {
	bins := histogram([]float64{3, 3, 3}, 5)
	require.Len(t, bins, 5)
	assert.Equal(t, 3, bins[0].Count)
}
