package utils

import (
	"fmt"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// MessageTracker holds consumed messages until the result derived from each
// one has been published.
type MessageTracker struct {
	mu       sync.Mutex
	messages map[string][]*kafka.Message
}

func NewMessageTracker() *MessageTracker {
	return &MessageTracker{messages: make(map[string][]*kafka.Message)}
}

// MessageKey identifies a message by its topic, partition and offset.
func MessageKey(msg *kafka.Message) string {
	topic := ""
	if msg.TopicPartition.Topic != nil {
		topic = *msg.TopicPartition.Topic
	}
	return fmt.Sprintf("%s/%d/%d", topic, msg.TopicPartition.Partition, msg.TopicPartition.Offset)
}

func (t *MessageTracker) Track(key string, msg *kafka.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages[key] = append(t.messages[key], msg)
}

// Release removes and returns every message tracked under key.
func (t *MessageTracker) Release(key string) []*kafka.Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	msgs := t.messages[key]
	delete(t.messages, key)
	return msgs
}

func (t *MessageTracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, msgs := range t.messages {
		n += len(msgs)
	}
	return n
}
