package market

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/bracket-engine/internal/cache"
)

// quoteCacheTTL bounds how long a warmed quote is trusted before a
// direct read falls through to the adapter again.
const quoteCacheTTL = 2 * time.Minute

// QuoteRefresher periodically pulls a fresh Quote for every tracked
// team from an Adapter and warms the scores cache with it, so
// request-time reads rarely hit the venue directly. Grounded on the
// pack's scheduled data-fetcher pattern: a single cron.Cron, guarded by
// a mutex, started and stopped explicitly by the owning process.
type QuoteRefresher struct {
	adapter Adapter
	cache   *cache.Service
	log     *logrus.Logger
	cron    *cron.Cron

	mu        sync.Mutex
	isRunning bool
	teams     []string
}

// NewQuoteRefresher builds a refresher for the given tracked teams.
func NewQuoteRefresher(adapter Adapter, scoresCache *cache.Service, teams []string, log *logrus.Logger) *QuoteRefresher {
	return &QuoteRefresher{
		adapter: adapter,
		cache:   scoresCache,
		log:     log,
		cron:    cron.New(),
		teams:   teams,
	}
}

// Start schedules the refresh job on the given cron expression (e.g.
// "*/5 * * * *") and runs one refresh immediately.
func (r *QuoteRefresher) Start(schedule string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("quote refresher is already running")
	}
	if r.cache == nil {
		return fmt.Errorf("quote refresher requires a cache")
	}

	if _, err := r.cron.AddFunc(schedule, r.refreshAll); err != nil {
		return fmt.Errorf("failed to schedule quote refresh: %w", err)
	}

	r.cron.Start()
	r.isRunning = true
	go r.refreshAll()

	r.log.Info("quote refresher started")
	return nil
}

// Stop halts the scheduled refresh job, waiting for any in-flight run
// to finish.
func (r *QuoteRefresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isRunning {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.isRunning = false
	r.log.Info("quote refresher stopped")
}

func (r *QuoteRefresher) refreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, team := range r.teams {
		quote, err := r.adapter.Quote(ctx, team)
		if err != nil {
			r.log.WithError(err).WithField("team", team).Warn("quote refresh failed")
			continue
		}
		key := cache.QuoteCacheKey(team)
		if err := r.cache.Set(ctx, key, quote, quoteCacheTTL); err != nil {
			r.log.WithError(err).WithField("team", team).Warn("quote cache warm failed")
		}
	}
}
