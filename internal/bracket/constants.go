package bracket

// Fixed win-probability model constants. The distilled original_source/
// kept only the Python call sites into a native "tourney_core" extension
// that carried these as compiled-in constants; the extension itself was
// filtered out of the retrieved snapshot as a non-code artifact. These
// values are this edition's own self-consistent fixture and are what the
// test suite's expected numbers are built against.
const (
	// AvgScoring is the average points a team scores in a contest.
	AvgScoring = 70.0

	// AvgTempo is the average possessions-per-game tempo, matching the
	// spec's own worked example ratings (offense=0, defense=0, tempo=67.7).
	AvgTempo = 67.7

	// ScoringStdDev is the per-game scoring standard deviation used in
	// the normal approximation of the points differential.
	ScoringStdDev = 10.0
)

// StandardRoundPoints is the "standard" scoring vector for a 6-round,
// 64-team bracket: one entry per round, index 0 is round 1.
var StandardRoundPoints = []float64{1, 2, 4, 8, 16, 32}

// CalcuttaRoundPoints is the "Calcutta" scoring vector for the same
// bracket shape.
var CalcuttaRoundPoints = []float64{2, 3, 5, 8, 13, 21}
