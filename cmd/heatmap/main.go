package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/health-equity-map/internal/adapter/cache"
	"github.com/couchcryptid/health-equity-map/internal/adapter/csvstore"
	httpadapter "github.com/couchcryptid/health-equity-map/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/health-equity-map/internal/adapter/kafka"
	"github.com/couchcryptid/health-equity-map/internal/config"
	"github.com/couchcryptid/health-equity-map/internal/domain"
	"github.com/couchcryptid/health-equity-map/internal/observability"
	"github.com/couchcryptid/health-equity-map/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store := csvstore.New(cfg.DataDir, logger)
	var source session.Source = store
	if cfg.CacheSize > 0 {
		source = cache.NewCachedSource(store, cfg.CacheSize, cfg.CacheTTL, clockwork.NewRealClock(), metrics)
		logger.Info("record cache enabled", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	// Snapshot publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var opts []session.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, session.WithPublisher(writer))
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	policy := domain.ViewPolicy{ZoomThreshold: cfg.MarkerZoomThreshold}
	sess := session.New(source, policy, logger, metrics, opts...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Warm the measure lists so /readyz reports the data directory is usable.
	for _, kind := range []domain.MeasureKind{domain.KindHealth, domain.KindSDOH} {
		measures, err := sess.Measures(ctx, kind)
		if err != nil {
			logger.Error("list measures failed", "kind", kind, "error", err)
			continue
		}
		logger.Info("measures available", "kind", kind, "count", len(measures))
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
