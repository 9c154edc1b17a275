package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type ConsumerFunc func(ctx context.Context, consumer *kafka.Consumer) error

// ConsumerRegistry maps a topic to the function that drains it.
type ConsumerRegistry struct {
	consumers map[string]ConsumerFunc
}

func NewConsumerRegistry() *ConsumerRegistry {
	return &ConsumerRegistry{consumers: make(map[string]ConsumerFunc)}
}

func (r *ConsumerRegistry) Register(topic string, fn ConsumerFunc) {
	r.consumers[topic] = fn
}

func (r *ConsumerRegistry) Lookup(topic string) (ConsumerFunc, bool) {
	fn, ok := r.consumers[topic]
	return fn, ok
}

// StartConsumer opens a consumer for cfg.Topic and runs the registered
// function until it returns.
func (r *ConsumerRegistry) StartConsumer(ctx context.Context, cfg KafkaConfig) error {
	consumerFunc, exists := r.Lookup(cfg.Topic)
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", cfg.Topic)
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", cfg.Topic))
	return consumerFunc(ctx, consumer)
}
