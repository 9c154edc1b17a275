package clients

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/sentiment"
)

// ClassifierStack is the wired classifier: a lazily built backend behind a
// circuit breaker, metrics and, when configured, the prediction cache.
type ClassifierStack struct {
	Classifier Classifier
	backend    *LazyClassifier
	closers    []io.Closer
}

func (s *ClassifierStack) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	return s.Classifier.Classify(ctx, text)
}

func (s *ClassifierStack) Name() string { return s.backend.Name() }

func (s *ClassifierStack) HealthCheck(ctx context.Context) error {
	return s.backend.HealthCheck(ctx)
}

func (s *ClassifierStack) Close() {
	for _, closer := range s.closers {
		if err := closer.Close(); err != nil {
			slog.Warn("[ClassifierStack] Close failed", slog.String("error", err.Error()))
		}
	}
}

func BackendFactory(s config.Settings) (ClassifierFactory, error) {
	switch s.Backend {
	case config.BackendHugot:
		return func(ctx context.Context) (Classifier, error) {
			return NewHugotClassifier(ctx, HugotConfig{
				ModelName:    s.ModelName,
				ModelDir:     s.ModelDir,
				OnnxFilename: s.ModelOnnxFilename,
			})
		}, nil
	case config.BackendHuggingFace:
		return func(context.Context) (Classifier, error) {
			return NewHuggingFaceClient(HuggingFaceConfig{
				BaseURL:           s.HFInferenceURL,
				Model:             s.ModelName,
				Token:             s.HFAPIToken,
				Timeout:           s.HFTimeout,
				RequestsPerSecond: s.HFRequestsPerSecond,
				MaxRetries:        s.HFMaxRetries,
			})
		}, nil
	case config.BackendOpenAI:
		return func(context.Context) (Classifier, error) {
			return NewOpenAIClassifier(OpenAIConfig{APIKey: s.OpenAIAPIKey, Model: s.OpenAIModel})
		}, nil
	case config.BackendVader:
		return func(context.Context) (Classifier, error) {
			return sentiment.NewVaderClassifier(), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown classifier backend %q", s.Backend)
	}
}

// NewClassifierStack wires the configured backend. The backend itself is not
// built until the first classification or health check.
func NewClassifierStack(ctx context.Context, s config.Settings) (*ClassifierStack, error) {
	factory, err := BackendFactory(s)
	if err != nil {
		return nil, err
	}

	var store PredictionStore
	if s.CacheEnabled() {
		valkeyClient, err := NewValkeyClient(ctx, ValkeyConfig{
			Address:  s.ValkeyAddress,
			Password: s.ValkeyPassword,
			TLS:      s.ValkeyTLS,
			TTL:      s.CacheTTL,
		})
		if err != nil {
			return nil, err
		}
		store = valkeyClient
	}

	return newStack(s.Backend, factory, store, s.Backend+":"+s.ModelName), nil
}

func newStack(name string, factory ClassifierFactory, store PredictionStore, scope string) *ClassifierStack {
	backend := NewLazyClassifier(name, factory)
	stack := &ClassifierStack{backend: backend, closers: []io.Closer{backend}}

	var classifier Classifier = NewInstrumentedClassifier(NewBreakerClassifier(backend, DefaultBreakerConfig))
	if store != nil {
		classifier = NewCachedClassifier(classifier, store, scope)
		if closer, ok := store.(io.Closer); ok {
			stack.closers = append(stack.closers, closer)
		}
	}
	stack.Classifier = classifier
	return stack
}
