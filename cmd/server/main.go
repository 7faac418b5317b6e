package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/bracket-engine/internal/api"
	"github.com/jstittsworth/bracket-engine/internal/api/handlers"
	"github.com/jstittsworth/bracket-engine/internal/api/middleware"
	"github.com/jstittsworth/bracket-engine/internal/bracket"
	"github.com/jstittsworth/bracket-engine/internal/cache"
	"github.com/jstittsworth/bracket-engine/internal/config"
	"github.com/jstittsworth/bracket-engine/internal/engine"
	"github.com/jstittsworth/bracket-engine/internal/market"
	"github.com/jstittsworth/bracket-engine/internal/ratings"
	"github.com/jstittsworth/bracket-engine/internal/scoring"
	"github.com/jstittsworth/bracket-engine/internal/sensitivity"
	"github.com/jstittsworth/bracket-engine/internal/simulate"
	"github.com/jstittsworth/bracket-engine/internal/store"
	"github.com/jstittsworth/bracket-engine/pkg/database"
	"github.com/jstittsworth/bracket-engine/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	simulate.SetWorkerCount(cfg.SimulationWorkers)
	scoring.SetWorkerCount(cfg.ScenarioWorkers)
	sensitivity.SetWorkerCount(cfg.ScenarioWorkers)

	log := logger.InitLogger("info", cfg.IsDevelopment())
	log.WithFields(logrus.Fields{
		"environment":    cfg.Env,
		"scoring_vector": cfg.ScoringVector,
	}).Info("starting bracket engine")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := store.NewRepository(db.DB)
	if err := db.RunMigrations(repo); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ratingsByName, err := engine.LoadRatingsFile(cfg.RatingsPath)
	if err != nil {
		log.Fatalf("failed to load ratings file: %v", err)
	}
	classes, err := engine.LoadEquivalenceClasses(cfg.EquivalenceClassPath)
	if err != nil {
		log.Fatalf("failed to load equivalence classes: %v", err)
	}
	book, err := ratings.NewBook(ratingsByName, classes)
	if err != nil {
		log.Fatalf("failed to build rating book: %v", err)
	}

	slots, err := engine.LoadBracketFile(cfg.BracketPath)
	if err != nil {
		log.Fatalf("failed to load bracket file: %v", err)
	}
	baseBracket, err := bracket.NewBracket(slots)
	if err != nil {
		log.Fatalf("failed to build bracket: %v", err)
	}

	scoringVector, err := engine.RoundPointsFor(cfg.ScoringVector, baseBracket.Rounds())
	if err != nil {
		log.Fatalf("failed to resolve scoring vector: %v", err)
	}

	marketAdapter, err := buildMarketAdapter(cfg, log)
	if err != nil {
		log.Fatalf("failed to initialize market adapter: %v", err)
	}

	scoresCache := buildCache(cfg, log)

	var quoteRefresher *market.QuoteRefresher
	if cfg.QuoteRefreshEnabled && scoresCache != nil {
		quoteRefresher = market.NewQuoteRefresher(marketAdapter, scoresCache, baseBracket.Teams(), log)
		if err := quoteRefresher.Start(cfg.QuoteRefreshSchedule); err != nil {
			log.Warnf("quote refresher disabled: %v", err)
			quoteRefresher = nil
		}
	}

	eng, err := engine.New(engine.Config{
		Book:        book,
		Bracket:     baseBracket,
		Scoring:     scoringVector,
		ForfeitProb: cfg.ForfeitProbability,
		Repo:        repo,
		Market:      marketAdapter,
		Cache:       scoresCache,
	})
	if err != nil {
		log.Fatalf("failed to initialize engine: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(cfg.CorsOrigins))

	healthHandler := handlers.NewHealthHandler(eng)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, eng, cfg)

	log.Info("registered routes:")
	for _, route := range router.Routes() {
		log.Infof("%s %s", route.Method, route.Path)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if quoteRefresher != nil {
		quoteRefresher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server forced to shutdown: %v", err)
	}

	log.Info("server exited")
}

// buildCache connects to Redis for expected-score memoization. A
// connection failure is non-fatal: the engine just recomputes on every
// call, so the process still starts when Redis is unavailable in a
// local or degraded environment.
func buildCache(cfg *config.Config, log *logrus.Logger) *cache.Service {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Warnf("invalid redis url, scores cache disabled: %v", err)
		return nil
	}
	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Warnf("redis unreachable, scores cache disabled: %v", err)
		return nil
	}
	return cache.NewService(client)
}

func buildMarketAdapter(cfg *config.Config, log *logrus.Logger) (market.Adapter, error) {
	if cfg.UseMockMarket {
		log.Info("using mock market adapter")
		return market.NewMockAdapter(nil), nil
	}
	return market.NewHTTPAdapter(market.Config{
		BaseURL:                 cfg.MarketBaseURL,
		APIKey:                  cfg.MarketAPIKey,
		RequestsPerSecond:       cfg.MarketRequestsPerSecond,
		Timeout:                 cfg.MarketTimeout,
		CircuitBreakerThreshold: cfg.CircuitBreakerThreshold,
		CircuitBreakerInterval:  cfg.CircuitBreakerInterval,
		CircuitBreakerTimeout:   cfg.CircuitBreakerTimeout,
	}, log)
}
