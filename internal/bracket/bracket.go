package bracket

import (
	"fmt"
	"math/bits"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

// Slot is a first-round bracket slot: team -> probability this team
// occupies the slot before any games are played. A slot with one entry
// is deterministic; a slot with two entries models a play-in game.
type Slot map[string]float64

// Bracket is an ordered, immutable sequence of first-round slots. Its
// length is always a power of two.
type Bracket struct {
	slots []Slot
}

const slotSumTolerance = 1e-9

// NewBracket validates and constructs a Bracket. Length must be a power
// of two (k>=1), each slot's probabilities must sum to 1, and each slot
// must hold one or two teams.
func NewBracket(slots []Slot) (*Bracket, error) {
	n := len(slots)
	if n < 2 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: bracket length %d is not a power of two >= 2", errs.ErrMalformedBracket, n)
	}
	for i, s := range slots {
		if len(s) == 0 || len(s) > 2 {
			return nil, fmt.Errorf("%w: slot %d has %d teams, want 1 or 2", errs.ErrMalformedBracket, i, len(s))
		}
		sum := 0.0
		for _, p := range s {
			sum += p
		}
		if diffAbs(sum, 1.0) > slotSumTolerance {
			return nil, fmt.Errorf("%w: slot %d probabilities sum to %f, want 1", errs.ErrMalformedBracket, i, sum)
		}
	}
	// Defensive copy: slots are immutable once wrapped.
	copied := make([]Slot, n)
	for i, s := range slots {
		sc := make(Slot, len(s))
		for team, p := range s {
			sc[team] = p
		}
		copied[i] = sc
	}
	return &Bracket{slots: copied}, nil
}

func diffAbs(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Len returns the number of first-round slots.
func (b *Bracket) Len() int { return len(b.slots) }

// Rounds returns log2(Len()), the index of the final round.
func (b *Bracket) Rounds() int { return bits.TrailingZeros(uint(len(b.slots))) }

// Slot returns the first-round slot at position i.
func (b *Bracket) Slot(i int) Slot { return b.slots[i] }

// Teams returns every team name appearing anywhere in the bracket.
func (b *Bracket) Teams() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range b.slots {
		for team := range s {
			if _, ok := seen[team]; !ok {
				seen[team] = struct{}{}
				out = append(out, team)
			}
		}
	}
	return out
}

// StartIndex returns the first-round slot index a team starts in, or -1
// if the team is not in the bracket.
func (b *Bracket) StartIndex(team string) int {
	for i, s := range b.slots {
		if _, ok := s[team]; ok {
			return i
		}
	}
	return -1
}

// Node is one node of the bracket tree, flattened for client rendering.
// Round 0 is the set of first-round slots; Round R (the final) has one
// node.
type Node struct {
	ID            string
	Round         int
	Position      int
	ParentID      string
	LeftChildID   string
	RightChildID  string
}

// Tree returns every node of the bracket tree, keyed by a stable id of
// the form "R{round}-P{position}" (the final round's single node is
// "finals-R{round}").
func (b *Bracket) Tree() map[string]Node {
	rounds := b.Rounds()
	nodes := make(map[string]Node)

	idFor := func(round, pos int) string {
		if round == rounds {
			return fmt.Sprintf("finals-R%d", round)
		}
		return fmt.Sprintf("R%d-P%d", round, pos)
	}

	for round := 0; round <= rounds; round++ {
		width := 1 << (rounds - round)
		for pos := 0; pos < width; pos++ {
			id := idFor(round, pos)
			n := Node{ID: id, Round: round, Position: pos}
			if round < rounds {
				n.ParentID = idFor(round+1, pos/2)
			}
			if round > 0 {
				n.LeftChildID = idFor(round-1, pos*2)
				n.RightChildID = idFor(round-1, pos*2+1)
			}
			nodes[id] = n
		}
	}
	return nodes
}
