package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/brojonat/walletdash/client"
	"github.com/brojonat/walletdash/service/config"
	"github.com/brojonat/walletdash/service/db"
	"github.com/brojonat/walletdash/service/metrics"
	natspkg "github.com/brojonat/walletdash/service/nats"
	"github.com/brojonat/walletdash/service/server"
	"github.com/brojonat/walletdash/service/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

// runtime is everything a command needs: configuration, logging, metrics and
// the store with its data source.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    *store.Store

	closers []func()
}

// setupRuntime wires the store to the configured source. With live set and a
// NATS URL configured, the history refreshes on published events.
func setupRuntime(c *cli.Context, live bool) (*runtime, error) {
	cfg, err := configFromFlags(c)
	if err != nil {
		return nil, err
	}

	logger := setupLogger(cfg.LogLevel)
	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry)

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
	}

	src, err := rt.newSource(c.Context)
	if err != nil {
		return nil, err
	}

	rt.store = store.New(src, store.Options{
		FetchTimeout: cfg.FetchTimeout,
		Logger:       logger,
		Metrics:      m,
	})
	rt.onClose(rt.store.Close)

	if live && cfg.NATSURL != "" {
		sub, err := natspkg.NewSubscriber(cfg.NATSURL, logger)
		if err != nil {
			// The dashboard still works without live refresh.
			logger.Warn("live refresh disabled", "error", err)
		} else {
			refresher := natspkg.NewLiveRefresher(rt.store, sub, logger, m)
			refresher.Start(c.Context)
			rt.onClose(func() { sub.Close() })
			rt.onClose(refresher.Close)
		}
	}

	if cfg.MetricsAddr != "" {
		srv := server.New(cfg.MetricsAddr, rt.store, registry, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("status server error", "error", err)
			}
		}()
		rt.onClose(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("failed to shutdown status server gracefully", "error", err)
			}
		})
	}

	return rt, nil
}

func (rt *runtime) newSource(ctx context.Context) (store.Source, error) {
	if rt.cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, rt.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		rt.onClose(pool.Close)
		rt.logger.Info("reading wallet data from database")
		return db.NewStore(pool), nil
	}

	rt.logger.Debug("reading wallet data from API", "url", rt.cfg.APIURL)
	return client.NewInstrumentedClient(rt.cfg.APIURL, rt.cfg.FetchTimeout, rt.metrics, rt.logger), nil
}

func (rt *runtime) onClose(fn func()) {
	rt.closers = append(rt.closers, fn)
}

// Close releases everything in reverse order of setup.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

// setupLogger creates a structured logger with the given log level.
func setupLogger(levelStr string) *slog.Logger {
	level, err := config.ParseLogLevel(levelStr)
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
