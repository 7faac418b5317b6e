package bracket

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jstittsworth/bracket-engine/internal/errs"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
)

// CompletedGame records a game that has actually been played, used by
// ApplyWhatIf to force the winner's result and to drop adjustments that
// reference the eliminated loser.
type CompletedGame struct {
	Winner string
	Loser  string
}

// TournamentState is the immutable, functionally-updated aggregate of
// everything a round of analysis needs: the rating book, the bracket
// shape, any pairwise overrides, the scoring vector, and the forfeit
// probability. Every With* method returns a new state; none mutate the
// receiver.
type TournamentState struct {
	Ratings     *ratings.Book
	Bracket     *Bracket
	Overrides   *OverrideTable
	Scoring     []float64
	ForfeitProb float64
}

// NewTournamentState validates and constructs a TournamentState. The
// scoring vector must have one entry per round; forfeitProb must be in
// [0,1).
func NewTournamentState(book *ratings.Book, brkt *Bracket, overrides *OverrideTable, scoring []float64, forfeitProb float64) (*TournamentState, error) {
	if overrides == nil {
		overrides = NewOverrideTable()
	}
	if len(scoring) != brkt.Rounds() {
		return nil, fmt.Errorf("%w: scoring vector has %d entries, bracket has %d rounds", errs.ErrInvalidConfig, len(scoring), brkt.Rounds())
	}
	if forfeitProb < 0 || forfeitProb >= 1 {
		return nil, fmt.Errorf("%w: forfeit probability %f must be in [0,1)", errs.ErrInvalidConfig, forfeitProb)
	}
	scoringCopy := make([]float64, len(scoring))
	copy(scoringCopy, scoring)
	return &TournamentState{
		Ratings:     book,
		Bracket:     brkt,
		Overrides:   overrides,
		Scoring:     scoringCopy,
		ForfeitProb: forfeitProb,
	}, nil
}

// WithOverride returns a new state with one additional pairwise win
// probability override. The bracket, ratings, and scoring vector are
// shared with the receiver.
func (s *TournamentState) WithOverride(team1, team2 string, p float64) *TournamentState {
	next := *s
	next.Overrides = s.Overrides.Set(team1, team2, p)
	return &next
}

// WithTeamAdjustment returns a new state with a team's rating bumped by
// delta (offense +delta, defense -delta). The bracket and overrides are
// shared with the receiver; only the rating book is replaced.
func (s *TournamentState) WithTeamAdjustment(team string, delta float64) (*TournamentState, error) {
	r, err := s.Ratings.Rating(team)
	if err != nil {
		return nil, err
	}
	nextBook, err := s.Ratings.WithAdjustedRating(team, r.WithAdjustment(delta))
	if err != nil {
		return nil, err
	}
	next := *s
	next.Ratings = nextBook
	return &next, nil
}

// ApplyWhatIf layers a batch of completed games and rating adjustments
// onto the receiver. Completed games are games whose outcome is now
// known: each one is recorded as a probability-1 override for the
// winner over the loser, and any adjustment for an eliminated team (the
// loser of a completed game) is dropped rather than silently misapplied
// to a dead bracket slot. Overrides already on the receiver are kept as
// they are.
func (s *TournamentState) ApplyWhatIf(completed []CompletedGame, adjustments map[string]float64) (*TournamentState, error) {
	eliminated := make(map[string]struct{}, len(completed))
	next := s
	for _, g := range completed {
		winner, err := s.Ratings.Resolve(g.Winner)
		if err != nil {
			return nil, err
		}
		canon, err := s.Ratings.Resolve(g.Loser)
		if err != nil {
			return nil, err
		}
		eliminated[canon] = struct{}{}
		next = next.WithOverride(winner, canon, 1.0)
	}

	for team, delta := range adjustments {
		canon, err := s.Ratings.Resolve(team)
		if err != nil {
			return nil, err
		}
		if _, dead := eliminated[canon]; dead {
			continue
		}
		var err2 error
		next, err2 = next.WithTeamAdjustment(team, delta)
		if err2 != nil {
			return nil, err2
		}
	}
	return next, nil
}

// Hash returns a deterministic digest of everything that can affect an
// expected-score or distribution computation, so derived reports can
// be memoized against it and invalidated whenever any input changes.
func (s *TournamentState) Hash() string {
	teams := s.Bracket.Teams()
	sort.Strings(teams)

	var b strings.Builder
	for _, team := range teams {
		r, err := s.Ratings.Rating(team)
		if err != nil {
			continue
		}
		b.WriteString(team)
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(r.Offense, 'f', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(r.Defense, 'f', -1, 64))
		b.WriteByte('|')
		b.WriteString(strconv.FormatFloat(r.Tempo, 'f', -1, 64))
		b.WriteByte('\n')
	}
	for _, entry := range s.Overrides.SortedEntries() {
		b.WriteString(entry)
		b.WriteByte('\n')
	}
	for _, points := range s.Scoring {
		b.WriteString(strconv.FormatFloat(points, 'f', -1, 64))
		b.WriteByte(',')
	}
	b.WriteString(strconv.FormatFloat(s.ForfeitProb, 'f', -1, 64))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
