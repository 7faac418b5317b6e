// Package simulate implements the Simulator: a seeded Monte Carlo that
// resolves every game in the bracket from a TournamentState and
// accumulates realized round points per team.
//
// The per-simulation seed derivation is grounded on the seeded
// Bernoulli draw pattern used for pick'em simulation in the pack's
// major-pickems simulator: one independent PRNG per simulation index,
// mixed from (seed, index), so results never depend on how work is
// chunked across goroutines.
package simulate

import (
	"math/rand"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

// Result is one simulation's realized per-team round-point total.
type Result map[string]float64

// mixSeed derives an independent per-simulation seed from a global seed
// and simulation index using a splitmix64-style avalanche, so adjacent
// indices do not produce correlated PRNG streams.
func mixSeed(seed int64, index int) int64 {
	z := uint64(seed) + uint64(index)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z = z ^ (z >> 31)
	return int64(z)
}

// Simulate runs one full bracket resolution with the given seed and
// returns each team's realized round-point total.
func Simulate(state *bracket.TournamentState, seed int64) (Result, error) {
	rng := rand.New(rand.NewSource(seed))
	return simulateWith(state, rng)
}

func simulateWith(state *bracket.TournamentState, rng *rand.Rand) (Result, error) {
	rounds := state.Bracket.Rounds()
	current := make([]string, state.Bracket.Len())

	for i := 0; i < state.Bracket.Len(); i++ {
		team, err := drawSlotOccupant(state.Bracket.Slot(i), state.Overrides, state.ForfeitProb, rng)
		if err != nil {
			return nil, err
		}
		current[i] = team
	}

	result := make(Result)

	for r := 1; r <= rounds; r++ {
		width := len(current) / 2
		next := make([]string, width)
		points := state.Scoring[r-1]

		for i := 0; i < width; i++ {
			teamT := current[2*i]
			teamU := current[2*i+1]

			ratingT, err := state.Ratings.Rating(teamT)
			if err != nil {
				return nil, err
			}
			ratingU, err := state.Ratings.Rating(teamU)
			if err != nil {
				return nil, err
			}

			p := bracket.WinProbability(ratingT, ratingU, state.Overrides, state.ForfeitProb)
			winner := teamT
			if rng.Float64() >= p {
				winner = teamU
			}
			result[winner] += points
			next[i] = winner
		}
		current = next
	}

	return result, nil
}

// drawSlotOccupant resolves a first-round slot to a single team,
// sampling when the slot models a play-in game. Candidates are visited
// in a fixed (lexicographic) order so the draw is reproducible: Go map
// iteration order is randomized per-process and must never leak into a
// result the determinism invariant depends on.
//
// A forced-win override on the play-in pair overrides the slot's raw
// probabilities, mirroring propagate's treatment of round 0 -- nothing
// else in the pipeline ever revisits the play-in once it is drawn here.
func drawSlotOccupant(slot bracket.Slot, overrides *bracket.OverrideTable, forfeitProb float64, rng *rand.Rand) (string, error) {
	if len(slot) == 1 {
		for team := range slot {
			return team, nil
		}
	}
	teams := make([]string, 0, len(slot))
	for team := range slot {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	probs := map[string]float64{teams[0]: slot[teams[0]], teams[1]: slot[teams[1]]}
	if overrides != nil {
		if _, ok := overrides.Get(teams[0], teams[1]); ok {
			p := bracket.WinProbability(ratings.Rating{Name: teams[0]}, ratings.Rating{Name: teams[1]}, overrides, forfeitProb)
			probs[teams[0]] = p
			probs[teams[1]] = 1 - p
		}
	}

	draw := rng.Float64()
	cumulative := 0.0
	for _, team := range teams {
		cumulative += probs[team]
		if draw < cumulative {
			return team, nil
		}
	}
	return teams[len(teams)-1], nil
}

// RunSimulations runs n independent simulations and returns their
// results in input-index order regardless of how the pool schedules
// the work.
func RunSimulations(state *bracket.TournamentState, n int, seed int64) ([]Result, error) {
	results := make([]Result, n)
	errsOut := make([]error, n)

	p := pool.New().WithMaxGoroutines(workerCount())
	for i := 0; i < n; i++ {
		i := i
		p.Go(func() {
			rng := rand.New(rand.NewSource(mixSeed(seed, i)))
			res, err := simulateWith(state, rng)
			results[i] = res
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
