package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
)

func testBook(t *testing.T) *ratings.Book {
	t.Helper()
	book, err := ratings.NewBook(map[string]ratings.Rating{
		"A": {Name: "A", Offense: 0, Defense: 0, Tempo: 67.7},
	}, []ratings.EquivalenceClass{{"A", "Team A", "A State"}})
	require.NoError(t, err)
	return book
}

func TestValueCashPassThrough(t *testing.T) {
	book := testBook(t)
	scores := scoring.ScoreMap{"A": 0.75}

	total, warnings := Value(book, []Position{
		{Team: "A", Quantity: 10},
		{Team: CashKey, Quantity: 500},
	}, scores)

	assert.Empty(t, warnings)
	assert.InDelta(t, 507.5, total, 1e-12)
}

func TestValueCashNeutrality(t *testing.T) {
	book := testBook(t)
	scores := scoring.ScoreMap{"A": 0.75}

	base, _ := Value(book, []Position{{Team: "A", Quantity: 10}, {Team: CashKey, Quantity: 500}}, scores)
	bumped, _ := Value(book, []Position{{Team: "A", Quantity: 10}, {Team: CashKey, Quantity: 600}}, scores)

	assert.InDelta(t, 100.0, bumped-base, 1e-12)
}

func TestValueResolvesAliases(t *testing.T) {
	book := testBook(t)
	scores := scoring.ScoreMap{"A": 1.5}

	total, warnings := Value(book, []Position{{Team: "Team A", Quantity: 4}}, scores)
	assert.Empty(t, warnings)
	assert.InDelta(t, 6.0, total, 1e-12)
}

func TestValueSkipsUnresolvedPositions(t *testing.T) {
	book := testBook(t)
	scores := scoring.ScoreMap{"A": 0.75}

	total, warnings := Value(book, []Position{
		{Team: "A", Quantity: 10},
		{Team: "Ghost", Quantity: 100},
	}, scores)

	require.Len(t, warnings, 1)
	assert.Equal(t, "Ghost", warnings[0].Team)
	assert.InDelta(t, 7.5, total, 1e-12)
}
