package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

func uniformFourTeamState(t *testing.T) *bracket.TournamentState {
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
	return state
}

func TestExpectedScoresUniformBracket(t *testing.T) {
	state := uniformFourTeamState(t)
	scores, err := ExpectedScores(state)
	require.NoError(t, err)

	for _, team := range []string{"A", "B", "C", "D"} {
		assert.InDelta(t, 0.75, scores[team], 1e-9)
	}

	total := 0.0
	for _, v := range scores {
		total += v
	}
	assert.InDelta(t, 3.0, total, 1e-9)
}

func TestExpectedScoresWithOverride(t *testing.T) {
	state := uniformFourTeamState(t).WithOverride("A", "B", 1.0)
	scores, err := ExpectedScores(state)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, scores["A"], 1e-9)
	assert.InDelta(t, 0.0, scores["B"], 1e-9)
	assert.InDelta(t, 0.75, scores["C"], 1e-9)
	assert.InDelta(t, 0.75, scores["D"], 1e-9)
}

func TestBatchExpectedScoresPreservesOrder(t *testing.T) {
	state := uniformFourTeamState(t)

	scenarios := []OverrideSet{
		{{Team1: "A", Team2: "B", Probability: 1.0}},
		{{Team1: "A", Team2: "B", Probability: 0.0}},
		{}, // base state, no overrides
	}

	results, err := BatchExpectedScores(state, scenarios)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.InDelta(t, 1.5, results[0]["A"], 1e-9)
	assert.InDelta(t, 0.0, results[1]["A"], 1e-9)
	assert.InDelta(t, 0.75, results[2]["A"], 1e-9)
}

func TestBatchExpectedScoresUnknownTeamFails(t *testing.T) {
	book, err := ratings.NewBook(map[string]ratings.Rating{
		"A": {Name: "A", Offense: 0, Defense: 0, Tempo: 67.7},
	}, nil)
	require.NoError(t, err)

	b, err := bracket.NewBracket([]bracket.Slot{{"A": 1.0}, {"Ghost": 1.0}})
	require.NoError(t, err)

	state, err := bracket.NewTournamentState(book, b, nil, []float64{1}, 0)
	require.NoError(t, err)

	scenarios := []OverrideSet{{}}
	_, err = BatchExpectedScores(state, scenarios)
	require.Error(t, err)
}
