package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evoforge/ai-breaker/config"
	"github.com/evoforge/ai-breaker/internal/breaker"
	"github.com/evoforge/ai-breaker/internal/httpserver"
	"github.com/evoforge/ai-breaker/internal/metrics"
	"github.com/evoforge/ai-breaker/internal/observe"
	"github.com/evoforge/ai-breaker/pkg/logger"
)

const eventBufferSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	collector := observe.NewCollector(eventBufferSize, logger.WithComponent(log, "observe"))
	collector.Start(ctx)

	brk, err := buildBreaker(cfg, collector)
	if err != nil {
		log.Error("Failed to create breaker", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("Circuit breaker initialized",
		slog.Any("categories", brk.Categories()),
		slog.Int("failure_threshold", brk.Settings().FailureThreshold),
		slog.Int("success_threshold", brk.Settings().SuccessThreshold),
		slog.Duration("timeout", brk.Settings().Timeout),
		slog.Duration("reset_timeout", brk.Settings().ResetTimeout))

	handler := metrics.NewHandler(brk, logger.WithComponent(log, "http"))

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(handler), log)
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error running breaker service", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func buildBreaker(cfg *config.Config, collector *observe.Collector) (*breaker.Breaker, error) {
	settings := breaker.Settings{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		Timeout:          cfg.Breaker.TimeoutDuration(),
		ResetTimeout:     cfg.Breaker.ResetTimeoutDuration(),
	}

	var events chan<- breaker.Event
	if collector != nil {
		events = collector.EventChannel()
	}

	return breaker.New(settings, cfg.Breaker.Categories, events)
}
