package kafka_client

import "github.com/spacesedan/starsense/config"

type KafkaConfig struct {
	Broker          string
	GroupID         string
	Topic           string
	TransactionalID string
}

func NewKafkaConfig(s config.Settings) KafkaConfig {
	return KafkaConfig{
		Broker:          s.KafkaBroker,
		GroupID:         s.KafkaGroupID,
		Topic:           KAFKA_TOPIC_BULK_REQUEST,
		TransactionalID: s.KafkaGroupID + "-producer",
	}
}
