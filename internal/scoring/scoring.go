// Package scoring implements the ScoreEngine: reduction of a
// Propagator round table into per-team expected scores, plus a
// parallel batched form for evaluating many override scenarios at
// once.
package scoring

import (
	"github.com/sourcegraph/conc/pool"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/propagate"
)

// ScoreMap is a team -> expected-score map.
type ScoreMap map[string]float64

// ExpectedScores reduces a TournamentState's propagation into a
// per-team expected score: for each round r (1-indexed into the
// scoring vector), for each slot's occupancy map, add
// occupancy[team] * scoring[r-1] to team's running total.
func ExpectedScores(state *bracket.TournamentState) (ScoreMap, error) {
	table, err := propagate.Propagate(state)
	if err != nil {
		return nil, err
	}
	return reduce(table, state.Scoring), nil
}

func reduce(table propagate.RoundTable, scoring []float64) ScoreMap {
	scores := make(ScoreMap)
	for r := 1; r <= table.Rounds(); r++ {
		points := scoring[r-1]
		for _, slot := range table[r] {
			for team, p := range slot {
				scores[team] += p * points
			}
		}
	}
	return scores
}

// OverrideSet is one named scenario of pairwise win-probability
// overrides to layer on top of a base state.
type OverrideSet []Override

// Override is a single forced matchup probability to apply.
type Override struct {
	Team1       string
	Team2       string
	Probability float64
}

func (o OverrideSet) apply(state *bracket.TournamentState) *bracket.TournamentState {
	next := state
	for _, ov := range o {
		next = next.WithOverride(ov.Team1, ov.Team2, ov.Probability)
	}
	return next
}

// BatchExpectedScores evaluates expected_scores for many override
// scenarios concurrently, preserving the input order in the output.
// Each scenario is layered on top of the shared base state; the
// engine's functional-update contract means no scenario's overlay can
// leak into another's.
func BatchExpectedScores(state *bracket.TournamentState, scenarios []OverrideSet) ([]ScoreMap, error) {
	results := make([]ScoreMap, len(scenarios))
	errsOut := make([]error, len(scenarios))

	p := pool.New().WithMaxGoroutines(workerCount())
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		p.Go(func() {
			scenarioState := scenario.apply(state)
			scores, err := ExpectedScores(scenarioState)
			results[i] = scores
			errsOut[i] = err
		})
	}
	p.Wait()

	for _, err := range errsOut {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func workerCount() int {
	n := defaultWorkers
	if n < 1 {
		n = 1
	}
	return n
}
