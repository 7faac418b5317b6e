package market

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
)

// MockAdapter is the offline-development stand-in used when mock mode
// is enabled (config UseMockMarket), mirroring the reference service's
// USE_MOCK_DATA toggle: deterministic-enough fake quotes so the rest of
// the stack can be exercised without a live venue.
type MockAdapter struct {
	positions map[string]float64
}

// NewMockAdapter builds a mock adapter seeded with a fixed starting
// position book.
func NewMockAdapter(positions map[string]float64) *MockAdapter {
	if positions == nil {
		positions = make(map[string]float64)
	}
	return &MockAdapter{positions: positions}
}

func (m *MockAdapter) Quote(ctx context.Context, team string) (Quote, error) {
	// Deterministic-seeming synthetic price derived from the team name,
	// not a real market signal.
	seed := int64(0)
	for _, r := range team {
		seed = seed*31 + int64(r)
	}
	price := 1.0 + rand.New(rand.NewSource(seed)).Float64()*9.0
	return Quote{Team: team, Price: price}, nil
}

func (m *MockAdapter) Positions(ctx context.Context) (map[string]float64, error) {
	out := make(map[string]float64, len(m.positions))
	for team, qty := range m.positions {
		out[team] = qty
	}
	return out, nil
}

func (m *MockAdapter) PlaceOrder(ctx context.Context, order Order) (OrderResult, error) {
	m.positions[order.Team] += order.Quantity
	return OrderResult{OrderID: uuid.NewString(), Filled: order.Quantity}, nil
}
