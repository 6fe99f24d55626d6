package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"gagyebu/internal/cache"
	"gagyebu/internal/cli"
	"gagyebu/internal/config"
	"gagyebu/internal/core"
	apphttp "gagyebu/internal/http"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

const cacheEntries = 120

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store, err := cli.OpenStore(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Change events are optional; the server keeps working without a broker.
	var publisher services.Publisher
	client, err := cli.OpenAMQP(context.Background(), logger, cfg)
	if err != nil {
		logger.Error("AMQP unavailable, continuing without change events", "error", err)
	} else if client != nil {
		publisher = client
	}

	repo := ledger.NewRepository(store.Store,
		ledger.WithLogger(logger.WithComponent(applog.ComponentLedger).Logger))

	janitor := cache.NewJanitor(logger.Logger)
	calendarCache, statsCache := newCaches(cfg, janitor)
	if cfg.CacheTTL > 0 {
		janitor.Start(cfg.CacheTTL)
	}

	calendar := services.NewCalendarService(repo, calendarCache, cfg.StatsConcurrency)
	stats := services.NewStatsService(repo, statsCache, cfg.StatsConcurrency)
	ledgerSvc := services.NewLedgerService(repo, publisher, calendar, stats)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:     ledgerSvc,
		Calendar:   calendar,
		Stats:      stats,
		Categories: ledger.LoadCategories(cfg.SeedDir),
		Location:   cfg.Location(),
		Logger:     logger,
	})

	ctx, done := cli.GracefulShutdown(logger, cli.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if cfg.CacheTTL > 0 {
			janitor.Stop()
		}
		if err := ledgerSvc.Close(); err != nil {
			logger.Error("Failed to close publisher", "error", err)
		}
		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", "error", err)
		}
	})

	// Edits from other processes (ledgerctl) reach the caches through the
	// exchange. Without a broker they show up once CACHE_TTL expires.
	if client != nil && cfg.CacheTTL > 0 {
		go func() {
			err := client.SubscribeBucketChanged(ctx, ledgerSvc.ApplyBucketChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("Bucket change subscription ended, caches rely on CACHE_TTL", "error", err)
			}
		}()
	}

	logger.Info("Starting gagyebu server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"timezone", cfg.Location().String(),
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// newCaches returns nil caches when CACHE_TTL is 0, which disables caching.
func newCaches(cfg *config.Config, janitor *cache.Janitor) (cache.Cache[[]core.Totals], cache.Cache[services.MonthStats]) {
	if cfg.CacheTTL <= 0 {
		return nil, nil
	}
	calendarCache := cache.NewLRUCache[[]core.Totals](cacheEntries, cfg.CacheTTL)
	statsCache := cache.NewLRUCache[services.MonthStats](cacheEntries, cfg.CacheTTL)
	janitor.Register(calendarCache)
	janitor.Register(statsCache)
	return calendarCache, statsCache
}
