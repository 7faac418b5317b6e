// Package portfolio implements PortfolioValuer: the linear combination
// of held positions and per-team expected or simulated scores, with a
// distinguished "cash" pseudo-entry that carries no team sensitivity.
package portfolio

import (
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
)

// CashKey is the distinguished position key whose payoff is its
// quantity, independent of any team's advancement.
const CashKey = "cash"

// Position is a signed quantity held against a team name (or CashKey).
type Position struct {
	Team     string
	Quantity float64
}

// UnresolvedWarning is a recoverable notice that a held position could
// not be resolved to a known team and was skipped. Value() returns
// these to the caller instead of logging directly, so callers choose
// their own log sink.
type UnresolvedWarning struct {
	Team string
}

// Value computes the portfolio's value against a score map. Cash adds
// its quantity directly; every other position resolves through the
// rating book's equivalence classes to a canonical team name and adds
// quantity * scores[resolved]. Positions that fail to resolve are
// skipped and reported as warnings rather than failing the whole
// valuation.
func Value(book *ratings.Book, positions []Position, scores scoring.ScoreMap) (float64, []UnresolvedWarning) {
	var total float64
	var warnings []UnresolvedWarning

	for _, pos := range positions {
		if pos.Team == CashKey {
			total += pos.Quantity
			continue
		}
		resolved, err := book.Resolve(pos.Team)
		if err != nil {
			warnings = append(warnings, UnresolvedWarning{Team: pos.Team})
			continue
		}
		total += pos.Quantity * scores[resolved]
	}

	return total, warnings
}
