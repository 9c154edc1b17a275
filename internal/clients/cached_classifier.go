package clients

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	"github.com/spacesedan/starsense/internal/metrics"
	"github.com/spacesedan/starsense/internal/sentiment"
)

type PredictionStore interface {
	GetPrediction(ctx context.Context, key string) (sentiment.Prediction, bool, error)
	SetPrediction(ctx context.Context, key string, prediction sentiment.Prediction) error
}

// CachedClassifier serves repeated texts from a PredictionStore. Store
// failures are logged and the call falls through to the wrapped classifier.
type CachedClassifier struct {
	next  Classifier
	store PredictionStore
	scope string
}

// NewCachedClassifier scopes keys by scope (typically backend and model) so
// switching models never serves stale ratings.
func NewCachedClassifier(next Classifier, store PredictionStore, scope string) *CachedClassifier {
	return &CachedClassifier{next: next, store: store, scope: scope}
}

func (c *CachedClassifier) Name() string { return BackendName(c.next) }

func (c *CachedClassifier) CacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.scope + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

func (c *CachedClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	key := c.CacheKey(text)

	prediction, found, err := c.store.GetPrediction(ctx, key)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("[CachedClassifier] Cache lookup failed",
			slog.String("error", err.Error()))
	case found:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return prediction, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	prediction, err = c.next.Classify(ctx, text)
	if err != nil {
		return sentiment.Prediction{}, err
	}

	// only cache outputs the normalizer accepts
	if _, normErr := sentiment.NormalizePrediction(prediction); normErr == nil {
		if err := c.store.SetPrediction(ctx, key, prediction); err != nil {
			slog.Warn("[CachedClassifier] Cache write failed",
				slog.String("error", err.Error()))
		}
	}

	return prediction, nil
}
