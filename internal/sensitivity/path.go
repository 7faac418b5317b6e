package sensitivity

import (
	"sort"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
)

// ComputePath returns the minimum set of forced-win overrides that
// deterministically place team in (round, position): from team's
// first-round slot, for every round up to the target, a forced win
// against every team reachable in the mirror (sibling) sub-bracket. If
// team's starting slot is a play-in, a forced win over the play-in
// opponent is included first.
//
// reachable is false when (round, position) is not the one and only
// slot team's bracket index can ever reach -- per the edge rule,
// target_position must equal start_index >> round -- in which case
// path is nil.
func ComputePath(b *bracket.Bracket, team string, round, position int) (path scoring.OverrideSet, reachable bool) {
	startIdx := b.StartIndex(team)
	if startIdx < 0 {
		return nil, false
	}
	if startIdx>>uint(round) != position {
		return nil, false
	}

	slot := b.Slot(startIdx)
	if len(slot) == 2 {
		for other := range slot {
			if other != team {
				path = append(path, scoring.Override{Team1: team, Team2: other, Probability: 1.0})
			}
		}
	}

	pos := startIdx
	for r := 1; r <= round; r++ {
		siblingPos := pos ^ 1
		for _, opp := range leafTeams(b, siblingPos, r-1) {
			path = append(path, scoring.Override{Team1: team, Team2: opp, Probability: 1.0})
		}
		pos >>= 1
	}

	return path, true
}

// leafTeams returns every team in the first-round slots under the
// subtree rooted at (position, level), where level 0 addresses a
// first-round slot directly and each level above doubles the span.
func leafTeams(b *bracket.Bracket, position, level int) []string {
	width := 1 << uint(level)
	start := position * width

	var teams []string
	for i := start; i < start+width; i++ {
		for team := range b.Slot(i) {
			teams = append(teams, team)
		}
	}
	sort.Strings(teams)
	return teams
}
