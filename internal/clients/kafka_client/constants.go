package kafka_client

import "time"

const (
	KAFKA_TOPIC_BULK_REQUEST = "bulk-sentiment-request" // CSV rows submitted for bulk analysis
	KAFKA_TOPIC_BULK_RESULTS = "bulk-sentiment-results" // bulk reports or abort errors keyed by request id
)

const (
	MAX_RETRIES  = 5
	RETRY_DELAY  = 2 * time.Second
	POLL_TIMEOUT = time.Second
	FLUSH_MS     = 5000
)
