package clients

import "time"

const (
	MAX_RETRIES     = 3
	INITIAL_BACKOFF = 1 * time.Second
	MAX_BACKOFF     = 32 * time.Second
	USER_AGENT      = "starsense-client/1.0 (+https://github.com/spacesedan/starsense)"
)

const (
	HUGOT_BACKEND        = "hugot"
	HUGGING_FACE_BACKEND = "huggingface"
	OPENAI_BACKEND       = "openai"
)
