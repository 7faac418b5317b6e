package sensitivity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/portfolio"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
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

func TestGameDeltaSymmetryScenarioFour(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{
		{Team: "A", Quantity: 10},
		{Team: "B", Quantity: 5},
	}

	currentScores, err := scoring.ExpectedScores(state)
	require.NoError(t, err)
	currentValue, _ := portfolio.Value(book, positions, currentScores)

	winValue, lossValue, impacts, err := GameDelta(book, positions, state, "A", "B")
	require.NoError(t, err)

	assert.Greater(t, winValue, currentValue)
	assert.Less(t, lossValue, currentValue)
	assert.Greater(t, winValue-lossValue, 0.0)

	var sawPositiveA, sawNegativeB bool
	for _, impact := range impacts {
		if impact.Team == "A" && impact.Impact > 0 {
			sawPositiveA = true
		}
		if impact.Team == "B" && impact.Impact < 0 {
			sawNegativeB = true
		}
	}
	assert.True(t, sawPositiveA, "expected a positive impact entry for A")
	assert.True(t, sawNegativeB, "expected a negative impact entry for B")
}

func TestSlotCandidatesSortedByProbabilityDescending(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 10}}

	candidates, err := SlotCandidates(book, positions, state, 2, 0)
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Probability, candidates[i].Probability)
	}
}

func TestSlotCandidatesOmitsBelowFloor(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 10}}

	candidates, err := SlotCandidates(book, positions, state, 2, 0)
	require.NoError(t, err)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.Probability, SlotCandidateProbabilityFloor)
	}
}

func TestGameImportanceFindsTheOnlyLiveMatchupInRoundOne(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 10}}

	reports, err := GameImportance(book, positions, state)
	require.NoError(t, err)
	require.NotEmpty(t, reports)

	for _, r := range reports {
		assert.Equal(t, 1, r.Round)
		assert.InDelta(t, 0.5, r.WinProbability, 1e-9)
		assert.GreaterOrEqual(t, r.RawImportance, 0.0)
	}
}

func TestGetAllTeamDeltasCoversEveryBracketTeam(t *testing.T) {
	book, state := uniformFourTeamState(t)
	positions := []portfolio.Position{{Team: "A", Quantity: 10}, {Team: "B", Quantity: 10}}

	result, err := GetAllTeamDeltas(book, positions, state, 1.0)
	require.NoError(t, err)

	for _, team := range []string{"A", "B", "C", "D"} {
		_, ok := result.PortfolioDeltas[team]
		assert.True(t, ok, "missing portfolio delta for %s", team)
		_, ok = result.PairwiseDeltas[team]
		assert.True(t, ok, "missing pairwise deltas for %s", team)
	}
}
