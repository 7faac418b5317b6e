package bracket

import (
	"sort"
	"strconv"
)

// OverrideTable is a symmetric map from an unordered pair of team names
// to a fixed win probability for the pair's alphabetically-first member.
// Writes are idempotent under swap: Set(A,B,p) and Get(B,A) yield 1-p.
type OverrideTable struct {
	// entries are keyed by the alphabetically-smaller team name paired
	// with the larger one, storing P(key.lo beats key.hi).
	entries map[pairKey]float64
}

type pairKey struct{ lo, hi string }

func newPairKey(a, b string) (pairKey, bool) {
	if a <= b {
		return pairKey{lo: a, hi: b}, true
	}
	return pairKey{lo: b, hi: a}, false
}

// NewOverrideTable returns an empty override table.
func NewOverrideTable() *OverrideTable {
	return &OverrideTable{entries: make(map[pairKey]float64)}
}

// Set records that team1 beats team2 with probability p. Storing (A,B,p)
// is equivalent to storing (B,A,1-p).
func (t *OverrideTable) Set(team1, team2 string, p float64) *OverrideTable {
	next := t.clone()
	key, aIsLo := newPairKey(team1, team2)
	if aIsLo {
		next.entries[key] = p
	} else {
		next.entries[key] = 1 - p
	}
	return next
}

// Get returns P(team1 beats team2) and whether an override exists for
// this pair.
func (t *OverrideTable) Get(team1, team2 string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	key, aIsLo := newPairKey(team1, team2)
	p, ok := t.entries[key]
	if !ok {
		return 0, false
	}
	if aIsLo {
		return p, true
	}
	return 1 - p, true
}

// clone returns a shallow copy so Set never mutates a shared table --
// TournamentState's functional-update contract depends on this.
func (t *OverrideTable) clone() *OverrideTable {
	next := &OverrideTable{entries: make(map[pairKey]float64, len(t.entries)+1)}
	for k, v := range t.entries {
		next.entries[k] = v
	}
	return next
}

// Len returns the number of stored pair overrides.
func (t *OverrideTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// SortedEntries returns every stored override as "lo|hi|p" strings in
// deterministic order, for cache-key hashing.
func (t *OverrideTable) SortedEntries() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.entries))
	for k, p := range t.entries {
		out = append(out, k.lo+"|"+k.hi+"|"+formatProbability(p))
	}
	sort.Strings(out)
	return out
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
