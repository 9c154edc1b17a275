package consumers

import (
	"context"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"

	"github.com/spacesedan/starsense/internal/clients/kafka_client"
	"github.com/spacesedan/starsense/internal/metrics"
	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/utils"
)

const (
	PUBLISH_RETRIES        = 3
	PUBLISH_RETRY_DELAY    = 2 * time.Second
	SHUTDOWN_FLUSH_TIMEOUT = 10 * time.Second
)

type MessageSource interface {
	Next(ctx context.Context) (*kafka.Message, error)
}

type Committer interface {
	Commit(ctx context.Context, msg *kafka.Message) error
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type BulkAnalyzer interface {
	Aggregate(ctx context.Context, rows []string) (models.BulkReport, error)
}

// pendingResult ties a buffered result to the one message that produced it.
// Request ids come from clients and may repeat.
type pendingResult struct {
	messageKey string
	result     models.BulkResult
}

// BulkConsumer turns bulk requests into published reports. A request's
// offset is committed only after its result has been published.
type BulkConsumer struct {
	analyzer   BulkAnalyzer
	publisher  Publisher
	topic      string
	results    *utils.BatchBuffer[pendingResult]
	tracker    *utils.MessageTracker
	retryDelay time.Duration
}

func NewBulkConsumer(analyzer BulkAnalyzer, publisher Publisher) *BulkConsumer {
	return &BulkConsumer{
		analyzer:   analyzer,
		publisher:  publisher,
		topic:      kafka_client.KAFKA_TOPIC_BULK_RESULTS,
		results:    utils.NewBatchBuffer[pendingResult](utils.BATCH_SIZE),
		tracker:    utils.NewMessageTracker(),
		retryDelay: PUBLISH_RETRY_DELAY,
	}
}

func (bc *BulkConsumer) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) error {
		return bc.Run(ctx, kafka_client.NewKafkaMessageIterator(consumer), kafka_client.NewCommitHandler(consumer))
	}
}

func (bc *BulkConsumer) Run(ctx context.Context, source MessageSource, committer Committer) error {
	slog.Info("[BulkConsumer] Listening for messages...")

	ticker := time.NewTicker(utils.BATCH_TIMEOUT)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[BulkConsumer] Stopping consumer...")
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), SHUTDOWN_FLUSH_TIMEOUT)
			bc.Flush(flushCtx, committer)
			cancel()
			return nil
		case <-ticker.C:
			bc.Flush(ctx, committer)
		default:
			msg, err := source.Next(ctx)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				utils.HandleConsumerError(err)
				bc.sleep(ctx)
				continue
			}
			if msg == nil {
				continue
			}

			if full := bc.HandleMessage(ctx, msg, committer); full {
				bc.Flush(ctx, committer)
			}
		}
	}
}

// HandleMessage analyzes one request and buffers its result. It reports
// whether the result buffer is full.
func (bc *BulkConsumer) HandleMessage(ctx context.Context, msg *kafka.Message, committer Committer) bool {
	var req models.BulkRequest
	if err := utils.DeserializeFromJSON(msg.Value, &req); err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("malformed").Inc()
		slog.Warn("[BulkConsumer] Dropping malformed bulk request",
			slog.String("offset", msg.TopicPartition.Offset.String()))
		if err := committer.Commit(ctx, msg); err != nil {
			slog.Warn("[BulkConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
		return false
	}
	metrics.KafkaMessagesTotal.WithLabelValues("consumed").Inc()

	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}

	result := models.BulkResult{RequestID: req.RequestID}
	report, err := bc.analyzer.Aggregate(ctx, req.Rows)
	if err != nil {
		if ctx.Err() != nil {
			// left uncommitted so the request is redelivered
			return false
		}
		slog.Error("[BulkConsumer] Bulk request aborted",
			slog.String("request_id", req.RequestID),
			slog.String("error", err.Error()))
		result.Error = err.Error()
	} else {
		result.Report = &report
	}

	key := utils.MessageKey(msg)
	bc.tracker.Track(key, msg)
	return bc.results.Add(pendingResult{messageKey: key, result: result})
}

// Flush publishes buffered results in order. On the first publish failure
// that result and everything after it go back into the buffer so offsets
// are never committed past an unpublished request.
func (bc *BulkConsumer) Flush(ctx context.Context, committer Committer) {
	batch := bc.results.GetAndClear()
	if len(batch) == 0 {
		return
	}

	slog.Info("[BulkConsumer] Flushing results batch to Kafka", slog.Int("batch_size", len(batch)))

	for i, pending := range batch {
		result := pending.result
		if err := bc.publishWithRetry(ctx, result); err != nil {
			metrics.KafkaMessagesTotal.WithLabelValues("publish_failed").Inc()
			slog.Error("[BulkConsumer] Failed to publish result, keeping it for the next flush",
				slog.String("request_id", result.RequestID),
				slog.String("error", err.Error()))
			for _, unpublished := range batch[i:] {
				bc.results.Add(unpublished)
			}
			return
		}
		metrics.KafkaMessagesTotal.WithLabelValues("published").Inc()

		for _, msg := range bc.tracker.Release(pending.messageKey) {
			if err := committer.Commit(ctx, msg); err != nil {
				slog.Warn("[BulkConsumer] Failed to commit offset",
					slog.String("request_id", result.RequestID),
					slog.String("error", err.Error()))
			}
		}
	}
}

func (bc *BulkConsumer) Pending() int {
	return bc.results.Size()
}

func (bc *BulkConsumer) publishWithRetry(ctx context.Context, result models.BulkResult) error {
	var err error
	for i := 0; i < PUBLISH_RETRIES; i++ {
		err = bc.publisher.Publish(ctx, bc.topic, result.RequestID, result)
		if err == nil {
			return nil
		}
		slog.Warn("[BulkConsumer] Result publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		if i < PUBLISH_RETRIES-1 {
			bc.sleep(ctx)
		}
	}
	return err
}

func (bc *BulkConsumer) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(bc.retryDelay):
	}
}
