// Package distribution reduces a batch of Monte Carlo simulations into
// a portfolio-value distribution summary: expected value, range,
// percentiles, and a uniform-width histogram.
package distribution

import (
	"fmt"
	"math"
	"sort"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/portfolio"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
	"github.com/jstittsworth/bracket-engine/internal/simulate"
)

var requestedPercentiles = []float64{1, 5, 10, 25, 50, 75, 90, 95, 99}

// HistogramBin is one uniform-width bucket of the value histogram.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Summary is the full distribution report §4.7 describes.
type Summary struct {
	ExpectedValue float64            `json:"expected_value"`
	Min           float64            `json:"min"`
	Max           float64            `json:"max"`
	Percentiles   map[string]float64 `json:"percentiles"`
	Histogram     []HistogramBin     `json:"histogram"`
}

// Compute runs n simulations of state, values each under positions, and
// reduces the resulting values into a Summary. expectedValue is taken
// from the closed-form expected_scores reduction, not the simulated
// mean.
func Compute(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState, n int, seed int64, bins int) (*Summary, error) {
	if n <= 0 {
		return nil, fmt.Errorf("distribution requires at least one simulation, got %d", n)
	}
	if bins <= 0 {
		return nil, fmt.Errorf("distribution requires at least one histogram bin, got %d", bins)
	}

	expectedScores, err := scoring.ExpectedScores(state)
	if err != nil {
		return nil, err
	}
	expectedValue, _ := portfolio.Value(book, positions, expectedScores)

	results, err := simulate.RunSimulations(state, n, seed)
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(results))
	for i, result := range results {
		value, _ := portfolio.Value(book, positions, scoring.ScoreMap(result))
		values[i] = value
	}
	sort.Float64s(values)

	summary := &Summary{
		ExpectedValue: expectedValue,
		Min:           values[0],
		Max:           values[len(values)-1],
		Percentiles:   percentiles(values, requestedPercentiles),
		Histogram:     histogram(values, bins),
	}
	return summary, nil
}

// percentiles linearly interpolates between the two closest ranks of
// the sorted sample.
func percentiles(sorted []float64, requested []float64) map[string]float64 {
	out := make(map[string]float64, len(requested))
	n := len(sorted)
	for _, p := range requested {
		rank := p / 100 * float64(n-1)
		lo := int(math.Floor(rank))
		hi := int(math.Ceil(rank))
		if lo == hi {
			out[percentileKey(p)] = sorted[lo]
			continue
		}
		frac := rank - float64(lo)
		out[percentileKey(p)] = sorted[lo]*(1-frac) + sorted[hi]*frac
	}
	return out
}

func percentileKey(p float64) string {
	return fmt.Sprintf("p%g", p)
}

// histogram buckets the sorted sample into bins uniform-width buckets
// spanning [min, max], with the max value counted into the last bin.
func histogram(sorted []float64, bins int) []HistogramBin {
	min, max := sorted[0], sorted[len(sorted)-1]
	width := (max - min) / float64(bins)

	out := make([]HistogramBin, bins)
	for i := range out {
		out[i] = HistogramBin{Low: min + float64(i)*width, High: min + float64(i+1)*width}
	}
	if width == 0 {
		out[0].Count = len(sorted)
		return out
	}

	for _, v := range sorted {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
