package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/sentiment"
)

const testModel = "nlptown/bert-base-multilingual-uncased-sentiment"

func newTestHFClient(t *testing.T, url string) *HuggingFaceClient {
	t.Helper()
	client, err := NewHuggingFaceClient(HuggingFaceConfig{
		BaseURL:           url,
		Model:             testModel,
		Token:             "hf_test",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1000,
		MaxRetries:        3,
		InitialBackoff:    time.Millisecond,
	})
	require.NoError(t, err)
	return client
}

func TestHuggingFaceClient_Classify(t *testing.T) {
	t.Run("nested response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/"+testModel, r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

			var req models.InferenceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "good product", req.Inputs)
			assert.True(t, req.Options.WaitForModel)

			_, _ = w.Write([]byte(`[[{"label":"5 stars","score":0.2},{"label":"4 stars","score":0.812},{"label":"1 star","score":0.01}]]`))
		}))
		defer server.Close()

		prediction, err := newTestHFClient(t, server.URL).Classify(context.Background(), "good product")
		require.NoError(t, err)
		assert.Equal(t, "4 stars", prediction.Label)
		assert.InDelta(t, 0.812, prediction.Score, 1e-9)
	})

	t.Run("flat response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[{"label":"1 star","score":0.93}]`))
		}))
		defer server.Close()

		prediction, err := newTestHFClient(t, server.URL).Classify(context.Background(), "terrible")
		require.NoError(t, err)
		assert.Equal(t, "1 star", prediction.Label)
	})

	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req models.InferenceRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "retry me", req.Inputs)

			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[[{"label":"3 stars","score":0.5}]]`))
		}))
		defer server.Close()

		prediction, err := newTestHFClient(t, server.URL).Classify(context.Background(), "retry me")
		require.NoError(t, err)
		assert.Equal(t, "3 stars", prediction.Label)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("persistent server error is model unavailable", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"model crashed"}`))
		}))
		defer server.Close()

		_, err := newTestHFClient(t, server.URL).Classify(context.Background(), "text")
		require.Error(t, err)
		assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
		assert.Contains(t, err.Error(), "model crashed")
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("client error is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		_, err := newTestHFClient(t, server.URL).Classify(context.Background(), "text")
		assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
		assert.Contains(t, err.Error(), "401")
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>oops</html>`))
		}))
		defer server.Close()

		_, err := newTestHFClient(t, server.URL).Classify(context.Background(), "text")
		assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
	})

	t.Run("canceled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[[{"label":"3 stars","score":0.5}]]`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestHFClient(t, server.URL).Classify(ctx, "text")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestHuggingFaceClient_HealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			w.WriteHeader(http.StatusMethodNotAllowed)
		}))
		defer server.Close()

		assert.NoError(t, newTestHFClient(t, server.URL).HealthCheck(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		err := newTestHFClient(t, server.URL).HealthCheck(context.Background())
		assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
	})
}
