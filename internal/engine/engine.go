package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/cache"
	"github.com/jstittsworth/bracket-engine/internal/market"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
	"github.com/jstittsworth/bracket-engine/internal/store"
)

// scoresCacheTTL bounds how long a memoized expected-scores map is
// kept. Entries are keyed by state.Hash(), so any change to the state
// already maps to a new key; nothing deletes an entry on a store write.
const scoresCacheTTL = 5 * time.Minute

// Engine is the composition root: an owned handle wiring the
// startup-loaded RatingBook and Bracket together with the store-backed
// completed games and scenario/override state. It is safe for
// concurrent use by request handlers; State() always reflects the most
// recently persisted completed games and active scenario.
type Engine struct {
	mu sync.RWMutex

	book        *ratings.Book
	baseBracket *bracket.Bracket
	scoring     []float64
	forfeitProb float64

	repo   *store.Repository
	market market.Adapter
	cache  *cache.Service
}

// Config bundles everything New needs beyond the loaded startup data.
type Config struct {
	Book        *ratings.Book
	Bracket     *bracket.Bracket
	Scoring     []float64
	ForfeitProb float64
	Repo        *store.Repository
	Market      market.Adapter
	// Cache is optional; when nil, ExpectedScores always recomputes.
	Cache *cache.Service
}

func New(cfg Config) (*Engine, error) {
	if cfg.Book == nil || cfg.Bracket == nil || cfg.Repo == nil {
		return nil, fmt.Errorf("engine: Book, Bracket, and Repo are required")
	}
	return &Engine{
		book:        cfg.Book,
		baseBracket: cfg.Bracket,
		scoring:     cfg.Scoring,
		forfeitProb: cfg.ForfeitProb,
		repo:        cfg.Repo,
		market:      cfg.Market,
		cache:       cfg.Cache,
	}, nil
}

// RoundPointsFor resolves the SCORING_VECTOR config value to a fixed
// points vector trimmed to the bracket's round count.
func RoundPointsFor(name string, rounds int) ([]float64, error) {
	var vector []float64
	switch name {
	case "", "standard":
		vector = bracket.StandardRoundPoints
	case "calcutta":
		vector = bracket.CalcuttaRoundPoints
	default:
		return nil, fmt.Errorf("unknown scoring vector %q", name)
	}
	if rounds > len(vector) {
		return nil, fmt.Errorf("bracket has %d rounds, only %d round-point constants defined", rounds, len(vector))
	}
	return append([]float64(nil), vector[:rounds]...), nil
}

// State rebuilds the current TournamentState from the startup-loaded
// base bracket plus the store's completed games and the active
// scenario's (or permanent) overrides and rating adjustments.
func (e *Engine) State() (*bracket.TournamentState, error) {
	e.mu.RLock()
	book, baseBracket, scoringVec, forfeitProb := e.book, e.baseBracket, e.scoring, e.forfeitProb
	e.mu.RUnlock()

	state, err := bracket.NewTournamentState(book, baseBracket, nil, scoringVec, forfeitProb)
	if err != nil {
		return nil, err
	}

	active, err := e.repo.GetActiveScenario()
	if err != nil {
		return nil, fmt.Errorf("loading active scenario: %w", err)
	}

	permanentOutcomes, err := e.repo.ListGameOutcomes(true, nil)
	if err != nil {
		return nil, err
	}
	for _, o := range permanentOutcomes {
		state = state.WithOverride(o.Team1, o.Team2, o.Probability)
	}

	permanentAdjustments, err := e.repo.ListRatingAdjustments(true, nil)
	if err != nil {
		return nil, err
	}
	for _, a := range permanentAdjustments {
		state, err = state.WithTeamAdjustment(a.Team, a.Adjustment)
		if err != nil {
			return nil, err
		}
	}

	scopedOutcomes, err := e.repo.ListGameOutcomes(false, active.ScenarioID)
	if err != nil {
		return nil, err
	}
	for _, o := range scopedOutcomes {
		state = state.WithOverride(o.Team1, o.Team2, o.Probability)
	}

	scopedAdjustments, err := e.repo.ListRatingAdjustments(false, active.ScenarioID)
	if err != nil {
		return nil, err
	}
	for _, a := range scopedAdjustments {
		state, err = state.WithTeamAdjustment(a.Team, a.Adjustment)
		if err != nil {
			return nil, err
		}
	}

	completed, err := e.repo.ListCompletedGames()
	if err != nil {
		return nil, err
	}
	games := make([]bracket.CompletedGame, len(completed))
	for i, g := range completed {
		games[i] = bracket.CompletedGame{Winner: g.Winner, Loser: g.Loser}
	}
	if len(games) > 0 {
		state, err = state.ApplyWhatIf(games, nil)
		if err != nil {
			return nil, err
		}
	}

	return state, nil
}

// ExpectedScores returns state's per-team expected scores, memoized in
// the configured cache under a key derived from state.Hash() when one
// is configured. A cache miss, a disabled cache, or a corrupt cached
// entry all fall back to recomputing directly.
func (e *Engine) ExpectedScores(state *bracket.TournamentState) (scoring.ScoreMap, error) {
	if e.cache == nil {
		return scoring.ExpectedScores(state)
	}

	ctx := context.Background()
	key := cache.ExpectedScoresCacheKey(state.Hash())

	var cached scoring.ScoreMap
	if err := e.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	scores, err := scoring.ExpectedScores(state)
	if err != nil {
		return nil, err
	}
	_ = e.cache.Set(ctx, key, scores, scoresCacheTTL)
	return scores, nil
}

// Book returns the engine's startup-loaded RatingBook.
func (e *Engine) Book() *ratings.Book {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.book
}

// Repository returns the underlying store, for admin CRUD handlers.
func (e *Engine) Repository() *store.Repository { return e.repo }

// Market returns the configured market adapter.
func (e *Engine) Market() market.Adapter { return e.market }
