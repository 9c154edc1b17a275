package clients

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/sentiment"
)

func TestBackendFactory(t *testing.T) {
	for _, backend := range []string{config.BackendHugot, config.BackendHuggingFace, config.BackendOpenAI, config.BackendVader} {
		factory, err := BackendFactory(config.Settings{Backend: backend})
		require.NoError(t, err, backend)
		assert.NotNil(t, factory)
	}

	_, err := BackendFactory(config.Settings{Backend: "tensorflow"})
	assert.Error(t, err)
}

func TestNewClassifierStack_Vader(t *testing.T) {
	stack, err := NewClassifierStack(context.Background(), config.Settings{Backend: config.BackendVader})
	require.NoError(t, err)
	defer stack.Close()

	assert.Equal(t, config.BackendVader, stack.Name())
	require.NoError(t, stack.HealthCheck(context.Background()))

	prediction, err := stack.Classify(context.Background(), "I love it, wonderful!")
	require.NoError(t, err)

	_, err = sentiment.NormalizePrediction(prediction)
	assert.NoError(t, err)
}

func TestNewStack_WithCache(t *testing.T) {
	backend := &fakeClassifier{name: "fake", prediction: sentiment.Prediction{Label: "4 stars", Score: 0.7}}
	store := newMemoryStore()

	stack := newStack("fake", func(context.Context) (Classifier, error) { return backend, nil }, store, "fake:m")

	for i := 0; i < 2; i++ {
		_, err := stack.Classify(context.Background(), "same")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), backend.calls.Load())
}
