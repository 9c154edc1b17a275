package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type ClassifierFactory func(ctx context.Context) (Classifier, error)

// LazyClassifier builds its backend on first use and keeps it for the life
// of the process. Concurrent first calls block until one construction
// finishes. A failed construction is reported as ErrModelUnavailable and
// the next call tries again.
type LazyClassifier struct {
	name     string
	factory  ClassifierFactory
	mu       sync.Mutex
	instance atomic.Pointer[Classifier]
}

func NewLazyClassifier(name string, factory ClassifierFactory) *LazyClassifier {
	return &LazyClassifier{name: name, factory: factory}
}

func (l *LazyClassifier) Name() string { return l.name }

func (l *LazyClassifier) Initialized() bool { return l.instance.Load() != nil }

func (l *LazyClassifier) get(ctx context.Context) (Classifier, error) {
	if c := l.instance.Load(); c != nil {
		return *c, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if c := l.instance.Load(); c != nil {
		return *c, nil
	}

	slog.Info("[LazyClassifier] Initializing classifier", slog.String("backend", l.name))
	start := time.Now()

	c, err := l.factory(ctx)
	if err != nil {
		slog.Error("[LazyClassifier] Classifier initialization failed",
			slog.String("backend", l.name),
			slog.String("error", err.Error()))
		if errors.Is(err, sentiment.ErrModelUnavailable) {
			return nil, err
		}
		return nil, sentiment.Unavailable(l.name, err)
	}
	if c == nil {
		return nil, sentiment.Unavailable(l.name, errors.New("factory returned no classifier"))
	}

	l.instance.Store(&c)
	slog.Info("[LazyClassifier] Classifier ready",
		slog.String("backend", l.name),
		slog.Duration("elapsed", time.Since(start)))
	return c, nil
}

func (l *LazyClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	c, err := l.get(ctx)
	if err != nil {
		return sentiment.Prediction{}, err
	}
	return c.Classify(ctx, text)
}

// HealthCheck initializes the backend if needed, then defers to the
// backend's own health check when it has one.
func (l *LazyClassifier) HealthCheck(ctx context.Context) error {
	c, err := l.get(ctx)
	if err != nil {
		return err
	}
	if hc, ok := c.(HealthChecker); ok {
		return hc.HealthCheck(ctx)
	}
	return nil
}

func (l *LazyClassifier) Close() error {
	c := l.instance.Load()
	if c == nil {
		return nil
	}
	if closer, ok := (*c).(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
