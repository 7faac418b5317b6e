package market

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

func TestNewHTTPAdapterMisconfiguredWithoutCredentials(t *testing.T) {
	_, err := NewHTTPAdapter(Config{}, testLogger())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrMisconfigured))
}

func TestMockAdapterRoundTripsPositions(t *testing.T) {
	adapter := NewMockAdapter(map[string]float64{"A": 10})

	positions, err := adapter.Positions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.0, positions["A"])

	_, err = adapter.PlaceOrder(context.Background(), Order{Team: "A", Quantity: 5})
	require.NoError(t, err)

	positions, err = adapter.Positions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 15.0, positions["A"])
}

func TestMockAdapterQuoteIsStableForSameTeam(t *testing.T) {
	adapter := NewMockAdapter(nil)
	q1, err := adapter.Quote(context.Background(), "Duke")
	require.NoError(t, err)
	q2, err := adapter.Quote(context.Background(), "Duke")
	require.NoError(t, err)
	assert.Equal(t, q1.Price, q2.Price)
}

func TestMockAdapterPlaceOrderAssignsUniqueOrderID(t *testing.T) {
	adapter := NewMockAdapter(nil)
	r1, err := adapter.PlaceOrder(context.Background(), Order{Team: "A", Quantity: 1})
	require.NoError(t, err)
	r2, err := adapter.PlaceOrder(context.Background(), Order{Team: "A", Quantity: 1})
	require.NoError(t, err)

	_, err = uuid.Parse(r1.OrderID)
	require.NoError(t, err, "OrderID must be a valid uuid")
	assert.NotEqual(t, r1.OrderID, r2.OrderID)
}
