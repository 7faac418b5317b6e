// Package propagate implements the Propagator: the bottom-up
// round-by-round computation of per-slot team occupancy distributions,
// the core algorithm every downstream analytical query is built on.
package propagate

import (
	"sort"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

// OccupancyMap is a single slot's team -> probability-of-occupying-this-slot
// distribution.
type OccupancyMap map[string]float64

// RoundTable is the full propagation result: RoundTable[0] is the
// bracket's first-round slots (unchanged); RoundTable[r] holds
// 2^(Rounds-r) occupancy maps, one per slot at round r.
type RoundTable [][]OccupancyMap

// Rounds returns the index of the final round (len(RoundTable)-1).
func (t RoundTable) Rounds() int { return len(t) - 1 }

// Slot returns the occupancy map for (round, position).
func (t RoundTable) Slot(round, position int) OccupancyMap { return t[round][position] }

// TeamSlot returns the slot a team starting at first-round index
// startIndex occupies at the given round: start_index >> round, per the
// fixed bracket-pairing topology.
func TeamSlot(startIndex, round int) int { return startIndex >> uint(round) }

// Propagate runs the full bottom-up propagation for a TournamentState.
// For round r >= 1, slot i is formed from round r-1's slots 2i and 2i+1:
// each candidate T from the left child and U from the right child
// contribute left[T]*right[U]*WinProbability(T,U) to T's advancement and
// the complement to U's, summed into the new slot's map.
func Propagate(state *bracket.TournamentState) (RoundTable, error) {
	rounds := state.Bracket.Rounds()
	table := make(RoundTable, rounds+1)

	table[0] = make([]OccupancyMap, state.Bracket.Len())
	for i := 0; i < state.Bracket.Len(); i++ {
		table[0][i] = resolveFirstRoundSlot(state.Bracket.Slot(i), state.Overrides, state.ForfeitProb)
	}

	for r := 1; r <= rounds; r++ {
		width := 1 << uint(rounds-r)
		table[r] = make([]OccupancyMap, width)
		for i := 0; i < width; i++ {
			left := table[r-1][2*i]
			right := table[r-1][2*i+1]
			next := make(OccupancyMap, len(left)+len(right))

			for teamT, pT := range left {
				if pT == 0 {
					continue
				}
				ratingT, err := state.Ratings.Rating(teamT)
				if err != nil {
					return nil, err
				}
				for teamU, pU := range right {
					if pU == 0 {
						continue
					}
					ratingU, err := state.Ratings.Rating(teamU)
					if err != nil {
						return nil, err
					}
					p := bracket.WinProbability(ratingT, ratingU, state.Overrides, state.ForfeitProb)
					joint := pT * pU
					next[teamT] += joint * p
					next[teamU] += joint * (1 - p)
				}
			}
			table[r][i] = next
		}
	}

	return table, nil
}

// resolveFirstRoundSlot returns round 0's occupancy map for a slot. A
// single-team slot is always deterministic. A two-team (play-in) slot
// uses its raw stored probabilities unless an override exists for the
// pair, in which case the override (forfeit-blended, same as any other
// matchup) replaces it -- this is what lets a forced-win override reach
// a play-in pair, since nothing else in the pipeline ever revisits
// round 0.
func resolveFirstRoundSlot(slot bracket.Slot, overrides *bracket.OverrideTable, forfeitProb float64) OccupancyMap {
	m := make(OccupancyMap, len(slot))
	if len(slot) != 2 {
		for team, p := range slot {
			m[team] = p
		}
		return m
	}

	teams := make([]string, 0, 2)
	for team := range slot {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	a, b := teams[0], teams[1]

	if overrides != nil {
		if _, ok := overrides.Get(a, b); ok {
			p := bracket.WinProbability(ratings.Rating{Name: a}, ratings.Rating{Name: b}, overrides, forfeitProb)
			m[a] = p
			m[b] = 1 - p
			return m
		}
	}

	m[a] = slot[a]
	m[b] = slot[b]
	return m
}
