package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/spacesedan/starsense/internal/clients/kafka_client"
)

const HEALTH_POLL_INTERVAL = 2 * time.Second

// ConsumerWrapper delays a consumer until every health flag reports true.
type ConsumerWrapper struct {
	fn           kafka_client.ConsumerFunc
	health       []*atomic.Bool
	pollInterval time.Duration
}

func WrapConsumer(fn kafka_client.ConsumerFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{
		fn:           fn,
		health:       health,
		pollInterval: HEALTH_POLL_INTERVAL,
	}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	cw.health = append(cw.health, health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) error {
		if err := cw.waitHealthy(ctx); err != nil {
			return err
		}
		return cw.fn(ctx, consumer)
	}
}

func (cw ConsumerWrapper) healthy() bool {
	for _, h := range cw.health {
		if !h.Load() {
			return false
		}
	}
	return true
}

func (cw ConsumerWrapper) waitHealthy(ctx context.Context) error {
	if cw.healthy() {
		return nil
	}

	slog.Warn("[ConsumerWrapper] Dependencies unhealthy, waiting before consuming")
	ticker := time.NewTicker(cw.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if cw.healthy() {
				slog.Info("[ConsumerWrapper] Dependencies healthy, starting consumer")
				return nil
			}
		}
	}
}
