package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/clients"
	"github.com/spacesedan/starsense/internal/clients/kafka_client"
	"github.com/spacesedan/starsense/internal/consumers"
	"github.com/spacesedan/starsense/internal/logging"
	"github.com/spacesedan/starsense/internal/monitoring"
	"github.com/spacesedan/starsense/internal/processing"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)
	logging.InitLogger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stack, err := clients.NewClassifierStack(ctx, settings)
	if err != nil {
		slog.Error("[Main] Failed to build classifier", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()

	cfg := kafka_client.NewKafkaConfig(settings)

	var producer *kafka_client.Producer
	for {
		producer, err = kafka_client.NewProducer(ctx, cfg)
		if err == nil {
			break
		}

		slog.Warn("[Main] Kafka init failed, retrying...", slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
	defer producer.Close()

	classifierHealthy := &atomic.Bool{}
	go monitoring.MonitorClassifierHealth(ctx, stack, classifierHealthy, monitoring.HEALTHCHECK_TIMER)

	analyzer := processing.NewAnalyzer(stack, settings.BulkWorkers)
	bulkConsumer := consumers.NewBulkConsumer(analyzer, producer)

	registry := kafka_client.NewConsumerRegistry()
	registry.Register(kafka_client.KAFKA_TOPIC_BULK_REQUEST,
		consumers.WrapConsumer(bulkConsumer.Handler()).WithHealthCheck(classifierHealthy).Handler())

	if err := registry.StartConsumer(ctx, cfg); err != nil {
		slog.Error("[Main] Failed to start consumer",
			slog.String("error", err.Error()))
	}
}
