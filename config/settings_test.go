package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("CLASSIFIER_BACKEND", "")
	t.Setenv("BULK_WORKERS", "")

	_, err := Load()
	require.Error(t, err, "empty backend is not a known backend")

	t.Setenv("CLASSIFIER_BACKEND", "Vader")
	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendVader, s.Backend)
	assert.Equal(t, 4, s.BulkWorkers)
	assert.Equal(t, 60*time.Second, s.HFTimeout)
	assert.Equal(t, 24*time.Hour, s.CacheTTL)
	assert.False(t, s.CacheEnabled())
}

func TestLoad_ProductionTimeout(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CLASSIFIER_BACKEND", BackendHuggingFace)

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, s.HFTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", BackendHugot)
	t.Setenv("BULK_WORKERS", "16")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_TLS", "true")

	s, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 16, s.BulkWorkers)
	assert.Equal(t, 90*time.Minute, s.CacheTTL)
	assert.True(t, s.CacheEnabled())
	assert.True(t, s.ValkeyTLS)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric workers", "BULK_WORKERS", "many"},
		{"zero workers", "BULK_WORKERS", "0"},
		{"bad duration", "CACHE_TTL", "forever"},
		{"sub-second cache ttl", "CACHE_TTL", "500ms"},
		{"negative cache ttl", "CACHE_TTL", "-1h"},
		{"bad rate", "HF_REQUESTS_PER_SECOND", "-1"},
		{"unknown backend", "CLASSIFIER_BACKEND", "tensorflow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLASSIFIER_BACKEND", BackendHugot)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", BackendOpenAI)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	_, err = Load()
	assert.NoError(t, err)
}
