package clients

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type closingClassifier struct {
	fakeClassifier
	closed atomic.Bool
	health error
}

func (c *closingClassifier) Close() error {
	c.closed.Store(true)
	return nil
}

func (c *closingClassifier) HealthCheck(context.Context) error { return c.health }

func TestLazyClassifier_InitializesOnceUnderConcurrency(t *testing.T) {
	var builds atomic.Int32
	backend := &fakeClassifier{name: "fake", prediction: sentiment.Prediction{Label: "4 stars", Score: 0.8}}

	lazy := NewLazyClassifier("fake", func(context.Context) (Classifier, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return backend, nil
	})
	assert.False(t, lazy.Initialized())

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			prediction, err := lazy.Classify(context.Background(), "text")
			assert.NoError(t, err)
			assert.Equal(t, "4 stars", prediction.Label)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
	assert.Equal(t, int32(32), backend.calls.Load())
	assert.True(t, lazy.Initialized())
}

func TestLazyClassifier_FailedInitIsModelUnavailable(t *testing.T) {
	var builds atomic.Int32
	lazy := NewLazyClassifier("fake", func(context.Context) (Classifier, error) {
		if builds.Add(1) == 1 {
			return nil, errors.New("onnxruntime not found")
		}
		return &fakeClassifier{prediction: sentiment.Prediction{Label: "2 stars", Score: 0.6}}, nil
	})

	_, err := lazy.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
	assert.Contains(t, err.Error(), "onnxruntime not found")
	assert.False(t, lazy.Initialized())

	prediction, err := lazy.Classify(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, "2 stars", prediction.Label)
	assert.Equal(t, int32(2), builds.Load())
}

func TestLazyClassifier_KeepsTypedFactoryError(t *testing.T) {
	typed := sentiment.Unavailable("hugot", errors.New("download failed"))
	lazy := NewLazyClassifier("hugot", func(context.Context) (Classifier, error) {
		return nil, typed
	})

	_, err := lazy.Classify(context.Background(), "text")
	assert.Same(t, typed, err)
}

func TestLazyClassifier_HealthCheckAndClose(t *testing.T) {
	backend := &closingClassifier{health: errors.New("unhealthy")}
	lazy := NewLazyClassifier("fake", func(context.Context) (Classifier, error) {
		return backend, nil
	})

	require.NoError(t, lazy.Close(), "closing before init is a no-op")

	assert.EqualError(t, lazy.HealthCheck(context.Background()), "unhealthy")
	assert.True(t, lazy.Initialized())

	require.NoError(t, lazy.Close())
	assert.True(t, backend.closed.Load())
}
