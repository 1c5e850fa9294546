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

	"github.com/rs/zerolog"

	"github.com/corexlabs/corexurl/internal/audit"
	"github.com/corexlabs/corexurl/internal/config"
	"github.com/corexlabs/corexurl/internal/masker"
	"github.com/corexlabs/corexurl/internal/metrics"
	"github.com/corexlabs/corexurl/internal/relay"
	"github.com/corexlabs/corexurl/internal/server"
	"github.com/corexlabs/corexurl/internal/storage"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("Corex URL proxy %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	logger.Info().
		Str("version", Version).
		Str("listen", cfg.Server.Listen).
		Msg("corexd starting")

	store := openStore(context.Background(), cfg, logger)
	defer store.Close()

	auditLog := audit.NewLogger(&audit.Config{
		Enabled:           cfg.Audit.Enabled,
		IncludeOriginURLs: cfg.Audit.IncludeOriginURLs,
	}, logger)

	maskSvc := masker.NewService(store, auditLog, logger)
	streamRelay := relay.New(store, auditLog, logger, relay.Options{
		ConnectTimeout:        cfg.Upstream.ConnectTimeout,
		ResponseHeaderTimeout: cfg.Upstream.ResponseHeaderTimeout,
	})
	srv := server.New(cfg, maskSvc, streamRelay, logger)

	stopGauge := make(chan struct{})
	if cfg.Metrics.Enabled {
		go refreshStoreGauge(store, stopGauge)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		close(stopGauge)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// newLogger builds the process logger from the configured level.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}

// openStore selects the mapping store backend. A missing Redis URL means
// local development; an unreachable Redis degrades to the in-memory store
// with a warning instead of failing startup.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) storage.Store {
	if cfg.Storage.Redis.URL == "" {
		logger.Info().Msg("no redis configured, using in-memory mapping store")
		return storage.NewMemoryStore(logger)
	}

	store, err := storage.NewRedisStore(ctx, cfg.Storage.Redis.URL, cfg.Storage.Redis.Token, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, falling back to in-memory mapping store")
		return storage.NewMemoryStore(logger)
	}

	logger.Info().Msg("connected to redis mapping store")
	return store
}

// refreshStoreGauge keeps the mapping-store size gauge current.
func refreshStoreGauge(store storage.Store, stop <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			metrics.MappingStoreSize.Set(float64(store.Size(ctx)))
			cancel()
		case <-stop:
			return
		}
	}
}
