package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
	"github.com/jstittsworth/bracket-engine/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	repo := store.NewRepository(db)
	require.NoError(t, repo.Migrate())

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

	e, err := New(Config{Book: book, Bracket: b, Scoring: []float64{1, 1}, ForfeitProb: 0, Repo: repo})
	require.NoError(t, err)
	return e
}

func TestStateReflectsPermanentOverride(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Repository().UpsertGameOutcome("A", "B", 1.0, true, nil)
	require.NoError(t, err)

	state, err := e.State()
	require.NoError(t, err)

	scores, err := scoring.ExpectedScores(state)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, scores["B"], 1e-9)
}

func TestStateReflectsCompletedGameElimination(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Repository().AddCompletedGame("A", "B", nil)
	require.NoError(t, err)

	state, err := e.State()
	require.NoError(t, err)

	scores, err := scoring.ExpectedScores(state)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, scores["A"], 1e-9)
	assert.InDelta(t, 0.0, scores["B"], 1e-9)
}

func TestStateIgnoresOverridesScopedToInactiveScenario(t *testing.T) {
	e := newTestEngine(t)

	scenario, err := e.Repository().CreateScenario("bull-case", nil)
	require.NoError(t, err)
	_, err = e.Repository().UpsertGameOutcome("A", "B", 1.0, false, &scenario.ID)
	require.NoError(t, err)

	state, err := e.State()
	require.NoError(t, err)
	scores, err := scoring.ExpectedScores(state)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, scores["A"], 1e-9)

	require.NoError(t, e.Repository().SetActiveScenario(&scenario.ID))

	state, err = e.State()
	require.NoError(t, err)
	scores, err = scoring.ExpectedScores(state)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, scores["B"], 1e-9)
}

func TestRoundPointsForUnknownVectorFails(t *testing.T) {
	_, err := RoundPointsFor("exotic", 2)
	require.Error(t, err)
}

func TestRoundPointsForTrimsToBracketRounds(t *testing.T) {
	points, err := RoundPointsFor("standard", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 4}, points)
}

func TestExpectedScoresWithoutCacheMatchesDirectComputation(t *testing.T) {
	e := newTestEngine(t)
	state, err := e.State()
	require.NoError(t, err)

	viaEngine, err := e.ExpectedScores(state)
	require.NoError(t, err)
	direct, err := scoring.ExpectedScores(state)
	require.NoError(t, err)

	assert.Equal(t, direct, viaEngine)
}
