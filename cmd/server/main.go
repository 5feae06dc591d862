package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partsmarket/backend/config"
	httpDelivery "github.com/partsmarket/backend/internal/delivery/http"
	"github.com/partsmarket/backend/internal/domain"
	"github.com/partsmarket/backend/internal/infrastructure/cache"
	"github.com/partsmarket/backend/internal/infrastructure/catalogfile"
	"github.com/partsmarket/backend/internal/infrastructure/feed"
	"github.com/partsmarket/backend/internal/infrastructure/store"
	"github.com/partsmarket/backend/internal/logging"
	"github.com/partsmarket/backend/internal/usecase"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "partsmarket-backend",
	})

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("store", cfg.Catalog.Store).
		Str("cache", cfg.Cache.Type).
		Str("locale", cfg.Catalog.Locale).
		Msg("starting PartsMarket backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize infrastructure dependencies
	repo, closeRepo, err := openRepository(cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeRepo.Close()

	catalogCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer catalogCache.Close()

	// Initialize usecase layer
	catalogService := usecase.NewCatalogService(repo, catalogCache, usecase.CatalogServiceConfig{
		OptionsCacheTTL: cfg.Cache.TTL,
		Locale:          cfg.Catalog.LocaleTag(),
	})

	if cfg.Catalog.SeedFile != "" {
		count, err := catalogService.SyncFrom(ctx, catalogfile.Source{Path: cfg.Catalog.SeedFile})
		if err != nil {
			return fmt.Errorf("failed to import seed file: %w", err)
		}
		log.Info().Str("file", cfg.Catalog.SeedFile).Int("products", count).Msg("seed file imported")
	}

	var feedSource domain.CatalogSource
	if cfg.Feed.URL != "" {
		feedClient := feed.NewClient(feed.Config{
			BaseURL:           cfg.Feed.URL,
			APIKey:            cfg.Feed.APIKey,
			PageSize:          cfg.Feed.PageSize,
			RequestsPerMinute: cfg.Feed.RequestsPerMinute,
		})
		// Enable debug mode in development environment
		if cfg.Server.Environment == "development" {
			feedClient.SetDebug(true)
		}
		feedSource = feedClient

		if _, err := catalogService.SyncFrom(ctx, feedSource); err != nil {
			log.Warn().Err(err).Str("url", cfg.Feed.URL).Msg("initial feed sync failed, serving stored catalog")
		}
	}

	if _, err := catalogService.Reload(ctx); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	if cfg.Catalog.WatchSeedFile && cfg.Catalog.SeedFile != "" {
		if err := startSeedWatcher(ctx, catalogService, cfg.Catalog.SeedFile); err != nil {
			return err
		}
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(catalogService, feedSource)
	router := httpDelivery.SetupRouter(cfg, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func openRepository(cfg config.CatalogConfig) (domain.CatalogRepository, io.Closer, error) {
	switch cfg.Store {
	case "memory":
		return store.NewMemoryRepository(), closerFunc(func() error { return nil }), nil
	default:
		repo, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open catalog database: %w", err)
		}
		log.Info().Str("path", cfg.DBPath).Msg("catalog database opened")
		return repo, repo, nil
	}
}

type closableCache interface {
	domain.CacheRepository
	io.Closer
}

func openCache(ctx context.Context, cfg config.CacheConfig) (closableCache, error) {
	if cfg.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisCache, nil
	}
	return cache.NewMemoryCache(), nil
}

// startSeedWatcher re-imports the seed file whenever it changes on disk
func startSeedWatcher(ctx context.Context, service *usecase.CatalogService, path string) error {
	watcher, err := catalogfile.NewWatcher(path, 0, func(ctx context.Context) {
		count, err := service.SyncFrom(ctx, catalogfile.Source{Path: path})
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("failed to re-import seed file")
			return
		}
		log.Info().Str("file", path).Int("products", count).Msg("seed file re-imported")
	})
	if err != nil {
		return err
	}

	go func() {
		if err := watcher.Run(ctx); err != nil {
			log.Error().Err(err).Msg("seed file watcher stopped")
		}
	}()
	return nil
}
