package bracket

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

// expectedMargin returns a team's expected scoring margin against a
// league-average opponent: its offense/defense deviation, scaled by how
// its tempo compares to AvgTempo (more possessions amplify a given
// per-possession edge).
func expectedMargin(r ratings.Rating) float64 {
	tempoFactor := r.Tempo / AvgTempo
	return tempoFactor * (r.Offense - r.Defense)
}

// WinProbability returns P(a beats b) under the reference model: the
// probability the points differential (a's expected margin minus b's)
// is positive under a normal approximation with standard deviation
// ScoringStdDev * sqrt(2) (independent per-team scoring noise).
//
// If overrides holds an entry for the pair, it is used in place of the
// rating-derived probability before the forfeit blend is applied.
// Guarantees P(a,b)+P(b,a) == 1 to machine precision because the
// normal CDF and the override lookup are both exactly antisymmetric
// under argument swap.
func WinProbability(a, b ratings.Rating, overrides *OverrideTable, forfeitProb float64) float64 {
	var p0 float64
	if overrides != nil {
		if p, ok := overrides.Get(a.Name, b.Name); ok {
			p0 = p
		} else {
			p0 = ratingWinProbability(a, b)
		}
	} else {
		p0 = ratingWinProbability(a, b)
	}
	return blendForfeit(p0, forfeitProb)
}

func ratingWinProbability(a, b ratings.Rating) float64 {
	diff := expectedMargin(a) - expectedMargin(b)
	sigma := ScoringStdDev * math.Sqrt2
	dist := distuv.Normal{Mu: 0, Sigma: sigma}
	return dist.CDF(diff)
}

// blendForfeit applies the coin-flip blend for forfeits: effective
// probability = (1-f)*p0 + f*0.5.
func blendForfeit(p0, forfeitProb float64) float64 {
	return (1-forfeitProb)*p0 + forfeitProb*0.5
}
