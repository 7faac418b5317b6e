package simulate

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

func fourTeamState(t *testing.T) *bracket.TournamentState {
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

func TestSimulateAllocatesExactlyThreeRoundPoints(t *testing.T) {
	state := fourTeamState(t)
	result, err := Simulate(state, 42)
	require.NoError(t, err)

	total := 0.0
	for _, v := range result {
		total += v
	}
	assert.InDelta(t, 3.0, total, 1e-12)
}

func TestSimulateDeterministicForSameSeed(t *testing.T) {
	state := fourTeamState(t)
	r1, err := Simulate(state, 7)
	require.NoError(t, err)
	r2, err := Simulate(state, 7)
	require.NoError(t, err)
	assert.True(t, reflect.DeepEqual(r1, r2))
}

func TestRunSimulationsDeterministicRegardlessOfPartitioning(t *testing.T) {
	state := fourTeamState(t)

	SetWorkerCount(1)
	single, err := RunSimulations(state, 200, 42)
	require.NoError(t, err)

	SetWorkerCount(8)
	parallel, err := RunSimulations(state, 200, 42)
	require.NoError(t, err)

	require.Len(t, parallel, len(single))
	for i := range single {
		assert.True(t, reflect.DeepEqual(single[i], parallel[i]), "mismatch at index %d", i)
	}
}

func TestSimulatePlayInSlotResolvesToASingleOccupant(t *testing.T) {
	book, err := ratings.NewBook(map[string]ratings.Rating{
		"W": {Name: "W", Offense: 0, Defense: 0, Tempo: 67.7},
		"X": {Name: "X", Offense: 0, Defense: 0, Tempo: 67.7},
		"C": {Name: "C", Offense: 0, Defense: 0, Tempo: 67.7},
		"D": {Name: "D", Offense: 0, Defense: 0, Tempo: 67.7},
		"E": {Name: "E", Offense: 0, Defense: 0, Tempo: 67.7},
	}, nil)
	require.NoError(t, err)

	b, err := bracket.NewBracket([]bracket.Slot{
		{"W": 0.6, "X": 0.4}, {"C": 1.0}, {"D": 1.0}, {"E": 1.0},
	})
	require.NoError(t, err)

	state, err := bracket.NewTournamentState(book, b, nil, []float64{1, 1}, 0)
	require.NoError(t, err)

	result, err := Simulate(state, 1)
	require.NoError(t, err)

	total := 0.0
	for _, v := range result {
		total += v
	}
	assert.InDelta(t, 3.0, total, 1e-12)
}
