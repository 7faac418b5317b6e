// Package sensitivity implements the SensitivityEngine: per-team
// rating-bump deltas, per-game deltas, slot-candidate reports (minimum
// override path + portfolio delta per reachable team), and
// game-importance scoring over fully-determined upcoming matchups.
package sensitivity

import (
	"math"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/portfolio"
	"github.com/jstittsworth/bracket-engine/internal/propagate"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
)

// SlotCandidateProbabilityFloor drops slot-occupancy entries below this
// threshold before computing candidate paths, per the reference
// implementation's reporting floor.
const SlotCandidateProbabilityFloor = 1e-3

// FullyDeterminedThreshold is the occupancy probability above which a
// slot is treated as decided for game-importance enumeration.
const FullyDeterminedThreshold = 0.9999

// TeamDelta holds the two perturbed expected-score maps produced by
// bumping a team's rating by +/-epsilon.
type TeamDelta struct {
	Plus  scoring.ScoreMap
	Minus scoring.ScoreMap
}

// GetTeamDelta constructs the +epsilon/-epsilon rating-bumped states
// for team and returns their expected-score maps.
func GetTeamDelta(state *bracket.TournamentState, team string, epsilon float64) (TeamDelta, error) {
	plusState, err := state.WithTeamAdjustment(team, epsilon)
	if err != nil {
		return TeamDelta{}, err
	}
	minusState, err := state.WithTeamAdjustment(team, -epsilon)
	if err != nil {
		return TeamDelta{}, err
	}

	plusScores, err := scoring.ExpectedScores(plusState)
	if err != nil {
		return TeamDelta{}, err
	}
	minusScores, err := scoring.ExpectedScores(minusState)
	if err != nil {
		return TeamDelta{}, err
	}
	return TeamDelta{Plus: plusScores, Minus: minusScores}, nil
}

// GetTeamPortfolioDelta returns the portfolio-value swing from bumping
// team's rating by +epsilon versus -epsilon.
func GetTeamPortfolioDelta(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState, team string, epsilon float64) (float64, error) {
	delta, err := GetTeamDelta(state, team, epsilon)
	if err != nil {
		return 0, err
	}
	plusValue, _ := portfolio.Value(book, positions, delta.Plus)
	minusValue, _ := portfolio.Value(book, positions, delta.Minus)
	return plusValue - minusValue, nil
}

// GetTeamPairwiseDeltas returns, for every team with a nonzero expected
// score under the bump, the epsilon-scaled score difference
// (Plus[t]-Minus[t]).
func GetTeamPairwiseDeltas(state *bracket.TournamentState, team string, epsilon float64) (map[string]float64, error) {
	delta, err := GetTeamDelta(state, team, epsilon)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for t, v := range delta.Plus {
		out[t] = v - delta.Minus[t]
	}
	for t, v := range delta.Minus {
		if _, ok := out[t]; !ok {
			out[t] = delta.Plus[t] - v
		}
	}
	return out, nil
}

// AllTeamDeltas is the result of fanning GetTeamPortfolioDelta and
// GetTeamPairwiseDeltas out across every bracket team in parallel.
type AllTeamDeltas struct {
	PortfolioDeltas map[string]float64
	PairwiseDeltas  map[string]map[string]float64
}

// GetAllTeamDeltas computes both the portfolio delta and the pairwise
// score deltas for every bracket team concurrently.
func GetAllTeamDeltas(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState, epsilon float64) (*AllTeamDeltas, error) {
	teams := state.Bracket.Teams()
	portfolioDeltas := make([]float64, len(teams))
	pairwiseDeltas := make([]map[string]float64, len(teams))
	errsOut := make([]error, len(teams))

	p := pool.New().WithMaxGoroutines(workerCount())
	for i, team := range teams {
		i, team := i, team
		p.Go(func() {
			pd, err := GetTeamPortfolioDelta(book, positions, state, team, epsilon)
			if err != nil {
				errsOut[i] = err
				return
			}
			pairwise, err := GetTeamPairwiseDeltas(state, team, epsilon)
			if err != nil {
				errsOut[i] = err
				return
			}
			portfolioDeltas[i] = pd
			pairwiseDeltas[i] = pairwise
		})
	}
	p.Wait()

	for _, err := range errsOut {
		if err != nil {
			return nil, err
		}
	}

	result := &AllTeamDeltas{
		PortfolioDeltas: make(map[string]float64, len(teams)),
		PairwiseDeltas:  make(map[string]map[string]float64, len(teams)),
	}
	for i, team := range teams {
		result.PortfolioDeltas[team] = portfolioDeltas[i]
		result.PairwiseDeltas[team] = pairwiseDeltas[i]
	}
	return result, nil
}

// TeamImpact is one team's contribution to a game delta: its held
// position, the per-share score swing between the win and loss states,
// and their product.
type TeamImpact struct {
	Team               string
	HeldPosition       float64
	DeltaScorePerShare float64
	Impact             float64
}

// GameDelta evaluates the portfolio swing from forcing team1 to win
// versus forcing team2 to win, plus a per-team impact breakdown for
// every team whose expected score changes between the two states.
func GameDelta(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState, team1, team2 string) (winValue, lossValue float64, impacts []TeamImpact, err error) {
	scenarios := []scoring.OverrideSet{
		{{Team1: team1, Team2: team2, Probability: 1.0}},
		{{Team1: team1, Team2: team2, Probability: 0.0}},
	}
	results, err := scoring.BatchExpectedScores(state, scenarios)
	if err != nil {
		return 0, 0, nil, err
	}
	winScores, lossScores := results[0], results[1]

	winValue, _ = portfolio.Value(book, positions, winScores)
	lossValue, _ = portfolio.Value(book, positions, lossScores)

	heldByTeam := make(map[string]float64, len(positions))
	for _, pos := range positions {
		if pos.Team == portfolio.CashKey {
			continue
		}
		if canon, resolveErr := book.Resolve(pos.Team); resolveErr == nil {
			heldByTeam[canon] += pos.Quantity
		}
	}

	seen := make(map[string]struct{})
	for team := range winScores {
		seen[team] = struct{}{}
	}
	for team := range lossScores {
		seen[team] = struct{}{}
	}

	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	for _, team := range teams {
		deltaPerShare := winScores[team] - lossScores[team]
		if deltaPerShare == 0 {
			continue
		}
		held := heldByTeam[team]
		impacts = append(impacts, TeamImpact{
			Team:               team,
			HeldPosition:        held,
			DeltaScorePerShare: deltaPerShare,
			Impact:             deltaPerShare * held,
		})
	}

	return winValue, lossValue, impacts, nil
}

// SlotCandidate is one team that can reach a target slot, its raw
// occupancy probability, and the portfolio delta conditioned on it
// arriving there.
type SlotCandidate struct {
	Team            string
	Probability     float64
	PortfolioDelta  float64
	Path            scoring.OverrideSet
}

// SlotCandidates reports, for every team reaching (round, position)
// with probability at least SlotCandidateProbabilityFloor, the minimum
// forced-win path and the resulting portfolio delta, sorted by
// probability descending.
func SlotCandidates(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState, round, position int) ([]SlotCandidate, error) {
	table, err := propagate.Propagate(state)
	if err != nil {
		return nil, err
	}

	currentScores, err := scoring.ExpectedScores(state)
	if err != nil {
		return nil, err
	}
	currentValue, _ := portfolio.Value(book, positions, currentScores)

	occupancy := table.Slot(round, position)

	type candidateTeam struct {
		team string
		prob float64
		path scoring.OverrideSet
	}
	var candidates []candidateTeam
	for team, p := range occupancy {
		if p < SlotCandidateProbabilityFloor {
			continue
		}
		path, reachable := ComputePath(state.Bracket, team, round, position)
		if !reachable {
			continue
		}
		candidates = append(candidates, candidateTeam{team: team, prob: p, path: path})
	}

	scenarios := make([]scoring.OverrideSet, len(candidates))
	for i, c := range candidates {
		scenarios[i] = c.path
	}
	results, err := scoring.BatchExpectedScores(state, scenarios)
	if err != nil {
		return nil, err
	}

	out := make([]SlotCandidate, len(candidates))
	for i, c := range candidates {
		value, _ := portfolio.Value(book, positions, results[i])
		out[i] = SlotCandidate{
			Team:           c.team,
			Probability:    c.prob,
			PortfolioDelta: value - currentValue,
			Path:           c.path,
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Probability > out[j].Probability
	})
	return out, nil
}

// GameImportanceReport is one fully-determined upcoming game's swing.
type GameImportanceReport struct {
	Team1              string
	Team2              string
	Round              int
	Position           int
	WinProbability     float64
	RawImportance      float64
	AdjustedImportance float64
}

// GameImportance enumerates every fully-determined upcoming game (both
// feeder slots already resolved to a single occupant, the parent slot
// not yet resolved) and scores each by raw and probability-adjusted
// swing magnitude.
//
// Adjusted importance intentionally does not reduce to the usual
// expected-absolute-swing formula; it weights each outcome's delta by
// the matchup probability squared.
func GameImportance(book *ratings.Book, positions []portfolio.Position, state *bracket.TournamentState) ([]GameImportanceReport, error) {
	table, err := propagate.Propagate(state)
	if err != nil {
		return nil, err
	}

	currentScores, err := scoring.ExpectedScores(state)
	if err != nil {
		return nil, err
	}
	currentValue, _ := portfolio.Value(book, positions, currentScores)

	var reports []GameImportanceReport
	for r := 1; r <= table.Rounds(); r++ {
		for i, parent := range table[r] {
			if dominant(parent) {
				continue
			}
			team1, ok1 := soleOccupant(table[r-1][2*i])
			team2, ok2 := soleOccupant(table[r-1][2*i+1])
			if !ok1 || !ok2 {
				continue
			}

			rating1, err := state.Ratings.Rating(team1)
			if err != nil {
				return nil, err
			}
			rating2, err := state.Ratings.Rating(team2)
			if err != nil {
				return nil, err
			}
			p := bracket.WinProbability(rating1, rating2, state.Overrides, state.ForfeitProb)

			scenarios := []scoring.OverrideSet{
				{{Team1: team1, Team2: team2, Probability: 1.0}},
				{{Team1: team1, Team2: team2, Probability: 0.0}},
			}
			results, err := scoring.BatchExpectedScores(state, scenarios)
			if err != nil {
				return nil, err
			}
			winValue, _ := portfolio.Value(book, positions, results[0])
			lossValue, _ := portfolio.Value(book, positions, results[1])

			deltaPlus := winValue - currentValue
			deltaMinus := lossValue - currentValue

			reports = append(reports, GameImportanceReport{
				Team1:              team1,
				Team2:              team2,
				Round:              r,
				Position:           i,
				WinProbability:     p,
				RawImportance:      math.Abs(deltaPlus - deltaMinus),
				AdjustedImportance: math.Abs(deltaPlus)*p*p + math.Abs(deltaMinus)*(1-p)*(1-p),
			})
		}
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].AdjustedImportance > reports[j].AdjustedImportance
	})
	return reports, nil
}

func dominant(m propagate.OccupancyMap) bool {
	for _, p := range m {
		if p >= FullyDeterminedThreshold {
			return true
		}
	}
	return false
}

func soleOccupant(m propagate.OccupancyMap) (string, bool) {
	for team, p := range m {
		if p >= FullyDeterminedThreshold {
			return team, true
		}
	}
	return "", false
}
