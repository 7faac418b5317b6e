// Package ratings implements the RatingBook: an immutable map from team
// name to rating record, plus the equivalence-class index that collapses
// alias names (bracket file, ratings file, market feed all spell teams
// differently) onto one canonical record.
//
// Resolution order mirrors original_source/team_names.py's resolve_name:
// exact match first, then equivalence-class membership, else failure.
package ratings

import (
	"fmt"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

// Rating is a team's standardized offense/defense/tempo record.
type Rating struct {
	Name    string
	Offense float64
	Defense float64
	Tempo   float64
}

// WithAdjustment returns a new Rating with offense bumped by +delta and
// defense bumped by -delta (a symmetric "strength" bump), per
// TournamentState.with_team_adjustment.
func (r Rating) WithAdjustment(delta float64) Rating {
	r.Offense += delta
	r.Defense -= delta
	return r
}

// EquivalenceClass groups alias names for one school; the first entry
// is canonical.
type EquivalenceClass []string

// Canonical returns the class's canonical (first) name.
func (c EquivalenceClass) Canonical() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Book is an immutable RatingBook: canonical name -> Rating, plus the
// alias -> canonical lookup built from a set of equivalence classes.
type Book struct {
	ratings   map[string]Rating
	canonical map[string]string // alias -> canonical name
}

// NewBook builds a Book from canonical ratings and equivalence classes.
// Every alias may appear in at most one class.
func NewBook(ratingsByName map[string]Rating, classes []EquivalenceClass) (*Book, error) {
	canonical := make(map[string]string, len(ratingsByName))
	for _, class := range classes {
		canon := class.Canonical()
		for _, alias := range class {
			if existing, ok := canonical[alias]; ok && existing != canon {
				return nil, fmt.Errorf("team name %q appears in multiple equivalence classes", alias)
			}
			canonical[alias] = canon
		}
	}

	ratingsCopy := make(map[string]Rating, len(ratingsByName))
	for name, r := range ratingsByName {
		ratingsCopy[name] = r
	}

	return &Book{ratings: ratingsCopy, canonical: canonical}, nil
}

// Resolve maps any known alias (or exact name) to its canonical
// RatingBook key. Returns errs.ErrUnknownTeam if unresolvable.
func (b *Book) Resolve(name string) (string, error) {
	if _, ok := b.ratings[name]; ok {
		return name, nil
	}
	if canon, ok := b.canonical[name]; ok {
		if _, ok := b.ratings[canon]; ok {
			return canon, nil
		}
	}
	return "", errs.Team(name)
}

// TryResolve is like Resolve but returns the original name unchanged
// instead of an error, mirroring try_resolve_name.
func (b *Book) TryResolve(name string) string {
	resolved, err := b.Resolve(name)
	if err != nil {
		return name
	}
	return resolved
}

// Rating returns the canonical Rating for a team, resolving aliases.
func (b *Book) Rating(name string) (Rating, error) {
	canon, err := b.Resolve(name)
	if err != nil {
		return Rating{}, err
	}
	return b.ratings[canon], nil
}

// WithAdjustedRating returns a new Book sharing the alias index but
// with one team's rating replaced -- the structural-sharing half of
// TournamentState.with_team_adjustment.
func (b *Book) WithAdjustedRating(team string, r Rating) (*Book, error) {
	canon, err := b.Resolve(team)
	if err != nil {
		return nil, err
	}
	next := &Book{
		ratings:   make(map[string]Rating, len(b.ratings)),
		canonical: b.canonical, // immutable, shared
	}
	for name, rating := range b.ratings {
		next.ratings[name] = rating
	}
	next.ratings[canon] = r
	return next, nil
}

// Teams returns every canonical team name in the book.
func (b *Book) Teams() []string {
	names := make([]string, 0, len(b.ratings))
	for name := range b.ratings {
		names = append(names, name)
	}
	return names
}
