package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placesearch/internal/config"
	"github.com/kailas-cloud/placesearch/internal/db"
	dbGoRedis "github.com/kailas-cloud/placesearch/internal/db/goredis"
	dbMemory "github.com/kailas-cloud/placesearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/placesearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/placesearch/internal/logger"
	"github.com/kailas-cloud/placesearch/internal/metrics"
	bookmarkrepo "github.com/kailas-cloud/placesearch/internal/repository/bookmark"
	momentrepo "github.com/kailas-cloud/placesearch/internal/repository/moment"
	placerepo "github.com/kailas-cloud/placesearch/internal/repository/place"
	"github.com/kailas-cloud/placesearch/internal/repository/searchcache"
	chiTransport "github.com/kailas-cloud/placesearch/internal/transport/chi"
	openaiRec "github.com/kailas-cloud/placesearch/internal/transport/openai"
	"github.com/kailas-cloud/placesearch/internal/transport/recommender"
	cataloguc "github.com/kailas-cloud/placesearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/placesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/placesearch/internal/usecase/search"
	"github.com/kailas-cloud/placesearch/internal/workers"
)

// Build metadata, set via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// aiClient is what both recommender drivers provide.
type aiClient interface {
	searchuc.Recommender
	healthuc.RecommenderChecker
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting placesearch API server",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.String("ai_driver", cfg.AI.Driver),
	)

	ctx := context.Background()

	// Place database
	pg, err := sqlx.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer pg.Close()
	pg.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	pg.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	pg.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	places := placerepo.New(pg)
	if err := db.WaitForReady(ctx, places, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	if cfg.Database.Migrate {
		if err := placerepo.RunMigrations(ctx, pg); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Database schema up to date")
	}

	// Result cache store
	store, err := newCacheStore(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache not ready", zap.Error(err))
	}
	logger.Info("Connected to cache")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()

	ai, err := newRecommender(cfg.AI, logger)
	if err != nil {
		logger.Fatal("Failed to create recommender", zap.Error(err))
	}

	cache := searchcache.New(store, searchcache.Options{
		Prefix:        cfg.Cache.KeyPrefix,
		Env:           env,
		RegionTTL:     cfg.Cache.RegionTTL(),
		CategoriesTTL: cfg.Cache.CategoriesTTL(),
	}, logger)

	collab := searchuc.Collaborators{
		Store:     places,
		Moments:   momentrepo.New(pg),
		Bookmarks: bookmarkrepo.New(pg),
		Pool:      workers.NewPool(cfg.Search.MaxConcurrentLookups),
	}
	assembler := searchuc.NewAssembler()

	dispatcher := searchuc.NewDispatcher(logger,
		searchuc.NewAIQueryStrategy(collab, ai, assembler, cfg.Search.AIRadius, cfg.Search.CategoryFallbackRadius),
		searchuc.NewCategoryStrategy(collab, cache, assembler, cfg.Search.DefaultRadius),
	)

	searchSvc := searchuc.New(dispatcher, cfg.Search.Timeout())
	catalogSvc := cataloguc.New(places, cache)
	healthSvc := healthuc.New(places, store, ai)

	server := chiTransport.NewServer(searchSvc, catalogSvc, healthSvc, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newCacheStore(cfg config.CacheConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.CacheDriverRueidis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.CacheDriverGoRedis:
		return dbGoRedis.NewStore(dbGoRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case config.CacheDriverMemory:
		return dbMemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
}

func newRecommender(cfg config.AIConfig, logger *zap.Logger) (aiClient, error) {
	switch cfg.Driver {
	case config.AIDriverHTTP:
		return recommender.New(&recommender.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:  logger,
		}), nil
	case config.AIDriverOpenAI:
		return openaiRec.NewRecommender(&openaiRec.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Categories: cfg.Categories,
			Logger:     logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown ai driver %q", cfg.Driver)
	}
}
