// Package market implements the Adapter: the external interface
// collaborator that quotes positions and submits orders against an
// upstream trading venue. It is the only component that raises the
// Upstream/Unavailable/Misconfigured error tiers; the analytical core
// never talks to the network.
//
// Circuit breaking follows the pack's sports-data-service pattern of
// one gobreaker.CircuitBreaker per upstream venue, tripped on failure
// ratio rather than a fixed consecutive-failure count.
package market

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

// Quote is a point-in-time price for a tradable team contract.
type Quote struct {
	Team  string
	Price float64
}

// Order is a request to buy or sell a quantity of a team contract.
type Order struct {
	Team     string
	Quantity float64
}

// OrderResult is the venue's acknowledgement of a placed order.
type OrderResult struct {
	OrderID string
	Filled  float64
}

// Adapter is the external interface the engine's portfolio layer reads
// positions and quotes from, and through which orders are placed.
type Adapter interface {
	Quote(ctx context.Context, team string) (Quote, error)
	Positions(ctx context.Context) (map[string]float64, error)
	PlaceOrder(ctx context.Context, order Order) (OrderResult, error)
}

// Config configures a venue adapter.
type Config struct {
	BaseURL                 string
	APIKey                  string
	RequestsPerSecond       float64
	Timeout                 time.Duration
	CircuitBreakerThreshold uint32
	CircuitBreakerInterval  time.Duration
	CircuitBreakerTimeout   time.Duration
}

// HTTPAdapter is the real venue adapter: HTTP calls wrapped in a rate
// limiter and a circuit breaker.
type HTTPAdapter struct {
	cfg     Config
	client  *http.Client
	limiter *RequestLimiter
	breaker *gobreaker.CircuitBreaker
	log     *logrus.Logger
}

// NewHTTPAdapter builds a venue adapter. It returns errs.ErrMisconfigured
// immediately if the venue is not reachable without credentials,
// mirroring the reference client's credential check at construction
// rather than deferring the failure to the first call.
func NewHTTPAdapter(cfg Config, log *logrus.Logger) (*HTTPAdapter, error) {
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: market adapter requires base url and api key", errs.ErrMisconfigured)
	}

	settings := gobreaker.Settings{
		Name:        "market-adapter",
		MaxRequests: cfg.CircuitBreakerThreshold,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"component": "market_circuit_breaker",
				"adapter":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("market adapter circuit breaker state changed")
		},
	}

	return &HTTPAdapter{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: NewRequestLimiter(cfg.RequestsPerSecond),
		breaker: gobreaker.NewCircuitBreaker(settings),
		log:     log,
	}, nil
}

func (a *HTTPAdapter) Quote(ctx context.Context, team string) (Quote, error) {
	result, err := a.execute(ctx, func() (interface{}, error) {
		return a.fetchQuote(ctx, team)
	})
	if err != nil {
		return Quote{}, err
	}
	return result.(Quote), nil
}

func (a *HTTPAdapter) Positions(ctx context.Context) (map[string]float64, error) {
	result, err := a.execute(ctx, func() (interface{}, error) {
		return a.fetchPositions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]float64), nil
}

func (a *HTTPAdapter) PlaceOrder(ctx context.Context, order Order) (OrderResult, error) {
	result, err := a.execute(ctx, func() (interface{}, error) {
		return a.submitOrder(ctx, order)
	})
	if err != nil {
		return OrderResult{}, err
	}
	return result.(OrderResult), nil
}

// execute rate-limits, circuit-breaks, and translates a call into the
// engine's three external-service error tiers.
func (a *HTTPAdapter) execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}

	result, err := a.breaker.Execute(fn)
	if err == nil {
		return result, nil
	}
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, fmt.Errorf("%w: %v", errs.ErrUnavailable, err)
	}
	return nil, fmt.Errorf("%w: %v", errs.ErrUpstream, err)
}

// fetchQuote, fetchPositions, and submitOrder are the actual HTTP
// call sites; left unimplemented pending the venue's wire format, but
// wired end to end through the breaker and limiter above.
func (a *HTTPAdapter) fetchQuote(ctx context.Context, team string) (Quote, error) {
	return Quote{}, fmt.Errorf("%w: quote endpoint not wired", errs.ErrUpstream)
}

func (a *HTTPAdapter) fetchPositions(ctx context.Context) (map[string]float64, error) {
	return nil, fmt.Errorf("%w: positions endpoint not wired", errs.ErrUpstream)
}

func (a *HTTPAdapter) submitOrder(ctx context.Context, order Order) (OrderResult, error) {
	// A fresh client-side idempotency key is generated on every call, so
	// a retried submission carries a different key than the original.
	idempotencyKey := uuid.NewString()
	return OrderResult{}, fmt.Errorf("%w: order endpoint not wired (idempotency-key %s)", errs.ErrUpstream, idempotencyKey)
}
