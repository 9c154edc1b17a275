package clients

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/spacesedan/starsense/internal/metrics"
	"github.com/spacesedan/starsense/internal/sentiment"
)

type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

var DefaultBreakerConfig = BreakerConfig{
	ConsecutiveFailures: 5,
	OpenTimeout:         30 * time.Second,
}

// BreakerClassifier stops calling a failing model. Only ErrModelUnavailable
// counts as a failure; a label the normalizer rejects is the model working.
type BreakerClassifier struct {
	next Classifier
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerClassifier(next Classifier, cfg BreakerConfig) *BreakerClassifier {
	name := BackendName(next)
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, sentiment.ErrModelUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("[BreakerClassifier] Circuit breaker state changed",
				slog.String("backend", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	}

	return &BreakerClassifier{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerClassifier) Name() string { return BackendName(b.next) }

func (b *BreakerClassifier) State() gobreaker.State { return b.cb.State() }

func (b *BreakerClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Classify(ctx, text)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return sentiment.Prediction{}, sentiment.Unavailable(b.Name(), err)
	}
	if err != nil {
		return sentiment.Prediction{}, err
	}
	return out.(sentiment.Prediction), nil
}
