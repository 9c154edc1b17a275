package clients

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type fakeClassifier struct {
	name       string
	prediction sentiment.Prediction
	err        error
	calls      atomic.Int32
}

func (f *fakeClassifier) Name() string { return f.name }

func (f *fakeClassifier) Classify(_ context.Context, _ string) (sentiment.Prediction, error) {
	f.calls.Add(1)
	if f.err != nil {
		return sentiment.Prediction{}, f.err
	}
	return f.prediction, nil
}

type memoryStore struct {
	mu     sync.Mutex
	items  map[string]sentiment.Prediction
	getErr error
	setErr error
	sets   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[string]sentiment.Prediction)}
}

func (m *memoryStore) GetPrediction(_ context.Context, key string) (sentiment.Prediction, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return sentiment.Prediction{}, false, m.getErr
	}
	p, ok := m.items[key]
	return p, ok, nil
}

func (m *memoryStore) SetPrediction(_ context.Context, key string, p sentiment.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets++
	m.items[key] = p
	return nil
}

var errBackendDown = errors.New("backend down")
