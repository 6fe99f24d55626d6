// Package cli provides the startup steps shared by cmd/gagyebu,
// cmd/gagyebu-worker and cmd/ledgerctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"gagyebu/internal/amqp"
	"gagyebu/internal/backend"
	"gagyebu/internal/config"
	applog "gagyebu/internal/log"
)

// ShutdownTimeout bounds graceful shutdown after SIGINT/SIGTERM.
const ShutdownTimeout = 30 * time.Second

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the application logger at level and installs it as
// the slog default. An unparsable level falls back to info.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	if l, err := applog.ParseLevel(level); err == nil {
		cfg.Level = l
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// LoadSharedConfig is LoadAndValidateConfig for processes that work on the
// server's store from outside it. It also exits when the backend cannot be
// shared between processes.
func LoadSharedConfig(logger *applog.Logger) *config.Config {
	cfg := LoadAndValidateConfig(logger)
	if err := cfg.ValidateShared(); err != nil {
		logger.Error("Store is not shared with the server", "error", err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore opens the configured KV backend.
func OpenStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// OpenAMQP connects to the broker when AMQP_URL is set. It returns a nil
// client and no error when AMQP is disabled.
func OpenAMQP(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*amqp.Client, error) {
	if cfg.AMQPURL == "" {
		logger.Info("AMQP disabled, change events will not be published")
		return nil, nil
	}
	client, err := amqp.NewClient(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		return nil, fmt.Errorf("connect to AMQP: %w", err)
	}
	logger.Info("AMQP client connected", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	return client, nil
}

// GracefulShutdown returns a context cancelled on SIGINT/SIGTERM. cleanup
// runs with a context bounded by timeout; done closes once it returns.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the signal context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
