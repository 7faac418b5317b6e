package bracket

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/errs"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

func testBook(t *testing.T) *ratings.Book {
	t.Helper()
	book, err := ratings.NewBook(map[string]ratings.Rating{
		"A": {Name: "A", Offense: 1, Defense: -1, Tempo: 70},
		"B": {Name: "B", Offense: 0, Defense: 0, Tempo: 70},
		"C": {Name: "C", Offense: -1, Defense: 1, Tempo: 70},
		"D": {Name: "D", Offense: 2, Defense: -2, Tempo: 70},
	}, nil)
	require.NoError(t, err)
	return book
}

func testBracket(t *testing.T) *Bracket {
	t.Helper()
	b, err := NewBracket([]Slot{
		{"A": 1.0},
		{"B": 1.0},
		{"C": 1.0},
		{"D": 1.0},
	})
	require.NoError(t, err)
	return b
}

func TestNewTournamentStateValidatesScoringLength(t *testing.T) {
	_, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2, 4}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
}

func TestNewTournamentStateValidatesForfeitRange(t *testing.T) {
	_, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))

	_, err = NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, -0.1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
}

func TestWithOverrideDoesNotMutateReceiver(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	next := state.WithOverride("A", "B", 0.9)

	_, ok := state.Overrides.Get("A", "B")
	assert.False(t, ok)

	p, ok := next.Overrides.Get("A", "B")
	require.True(t, ok)
	assert.InDelta(t, 0.9, p, 1e-12)

	// Bracket and ratings are shared, not copied.
	assert.Same(t, state.Bracket, next.Bracket)
	assert.Same(t, state.Ratings, next.Ratings)
}

func TestWithTeamAdjustmentDoesNotMutateReceiver(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	next, err := state.WithTeamAdjustment("A", 5.0)
	require.NoError(t, err)

	origRating, err := state.Ratings.Rating("A")
	require.NoError(t, err)
	assert.Equal(t, 1.0, origRating.Offense)

	nextRating, err := next.Ratings.Rating("A")
	require.NoError(t, err)
	assert.Equal(t, 6.0, nextRating.Offense)
	assert.Equal(t, -6.0, nextRating.Defense)

	// Bracket and overrides are shared, not copied.
	assert.Same(t, state.Bracket, next.Bracket)
	assert.Same(t, state.Overrides, next.Overrides)
}

func TestWithTeamAdjustmentUnknownTeam(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	_, err = state.WithTeamAdjustment("Z", 5.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnknownTeam))
}

func TestApplyWhatIfDropsAdjustmentsForEliminatedTeams(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	completed := []CompletedGame{{Winner: "A", Loser: "B"}}
	adjustments := map[string]float64{
		"B": 5.0, // eliminated, should be dropped
		"C": 2.0, // still live, should apply
	}

	next, err := state.ApplyWhatIf(completed, adjustments)
	require.NoError(t, err)

	bRating, err := next.Ratings.Rating("B")
	require.NoError(t, err)
	assert.Equal(t, 0.0, bRating.Offense, "eliminated team's adjustment must not apply")

	cRating, err := next.Ratings.Rating("C")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cRating.Offense)
}

func TestApplyWhatIfUnknownLoser(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	_, err = state.ApplyWhatIf([]CompletedGame{{Winner: "A", Loser: "Z"}}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrUnknownTeam))
}

func TestHashIsStableAndOrderIndependent(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	a := state.WithOverride("A", "B", 0.7).WithOverride("C", "D", 0.4)
	b := state.WithOverride("C", "D", 0.4).WithOverride("A", "B", 0.7)

	assert.Equal(t, a.Hash(), b.Hash(), "hash must not depend on the order overrides were applied")
}

func TestHashChangesWithOverride(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	next := state.WithOverride("A", "B", 0.9)
	assert.NotEqual(t, state.Hash(), next.Hash())
}

func TestHashChangesWithRatingAdjustment(t *testing.T) {
	state, err := NewTournamentState(testBook(t), testBracket(t), nil, []float64{1, 2}, 0)
	require.NoError(t, err)

	next, err := state.WithTeamAdjustment("A", 3.0)
	require.NoError(t, err)
	assert.NotEqual(t, state.Hash(), next.Hash())
}
