package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendHugot       = "hugot"
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendVader       = "vader"
)

const ENV_PRODUCTION = "production"

type Settings struct {
	AppEnv string

	Backend           string
	ModelName         string
	ModelDir          string
	ModelOnnxFilename string

	HFInferenceURL      string
	HFAPIToken          string
	HFRequestsPerSecond float64
	HFTimeout           time.Duration
	HFMaxRetries        int

	OpenAIAPIKey string
	OpenAIModel  string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	CacheTTL       time.Duration

	BulkWorkers int
	HTTPAddr    string

	KafkaBroker  string
	KafkaGroupID string

	LogLevel string
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return value, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return value, nil
}

// Load reads Settings from the environment. Call LoadEnv first to pull in
// an env file.
func Load() (Settings, error) {
	s := Settings{
		AppEnv:            getEnv("APP_ENV", "dev"),
		Backend:           strings.ToLower(getEnv("CLASSIFIER_BACKEND", BackendHugot)),
		ModelName:         getEnv("MODEL_NAME", "nlptown/bert-base-multilingual-uncased-sentiment"),
		ModelDir:          getEnv("MODEL_DIR", "./models"),
		ModelOnnxFilename: getEnv("MODEL_ONNX_FILENAME", "model.onnx"),
		HFInferenceURL:    getEnv("HF_INFERENCE_URL", "https://api-inference.huggingface.co/models"),
		HFAPIToken:        getEnv("HF_API_TOKEN", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		ValkeyAddress:     getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword:    getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:         getEnv("VALKEY_TLS", "") == "true",
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		KafkaBroker:       getEnv("KAFKA_BROKER", "localhost:29092"),
		KafkaGroupID:      getEnv("KAFKA_CONSUMER_GROUP_ID", "starsense-bulk-group"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if s.HFRequestsPerSecond, err = getEnvFloat("HF_REQUESTS_PER_SECOND", 5); err != nil {
		return Settings{}, err
	}
	if s.HFMaxRetries, err = getEnvInt("HF_MAX_RETRIES", 3); err != nil {
		return Settings{}, err
	}
	if s.BulkWorkers, err = getEnvInt("BULK_WORKERS", 4); err != nil {
		return Settings{}, err
	}

	defaultTimeout := 60 * time.Second
	if s.AppEnv == ENV_PRODUCTION {
		defaultTimeout = 10 * time.Second
	}
	if s.HFTimeout, err = getEnvDuration("HF_TIMEOUT", defaultTimeout); err != nil {
		return Settings{}, err
	}
	if s.CacheTTL, err = getEnvDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return Settings{}, err
	}

	if err := s.validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s Settings) validate() error {
	switch s.Backend {
	case BackendHugot, BackendHuggingFace, BackendVader:
	case BackendOpenAI:
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the %s backend", BackendOpenAI)
		}
	default:
		return fmt.Errorf("unknown CLASSIFIER_BACKEND %q", s.Backend)
	}

	if s.BulkWorkers < 1 {
		return fmt.Errorf("BULK_WORKERS must be at least 1, got %d", s.BulkWorkers)
	}
	if s.HFRequestsPerSecond <= 0 {
		return fmt.Errorf("HF_REQUESTS_PER_SECOND must be positive, got %v", s.HFRequestsPerSecond)
	}
	if s.HFMaxRetries < 1 {
		return fmt.Errorf("HF_MAX_RETRIES must be at least 1, got %d", s.HFMaxRetries)
	}
	// valkey expiry has whole-second resolution
	if s.CacheTTL < time.Second {
		return fmt.Errorf("CACHE_TTL must be at least 1s, got %s", s.CacheTTL)
	}
	return nil
}

func (s Settings) CacheEnabled() bool { return s.ValkeyAddress != "" }
