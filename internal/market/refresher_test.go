package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRefresherStartRequiresCache(t *testing.T) {
	r := NewQuoteRefresher(NewMockAdapter(nil), nil, []string{"A", "B"}, testLogger())
	err := r.Start("*/5 * * * *")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache")
}

func TestQuoteRefresherStopWithoutStartIsNoop(t *testing.T) {
	r := NewQuoteRefresher(NewMockAdapter(nil), nil, []string{"A"}, testLogger())
	r.Stop() // must not panic or block
}
