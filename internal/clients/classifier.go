package clients

import (
	"context"

	"github.com/spacesedan/starsense/internal/sentiment"
)

// Classifier is the model boundary: any multilingual model that labels text
// "1 star" through "5 stars" with a probability. Implementations report
// model failures as sentiment.ErrModelUnavailable.
type Classifier interface {
	Classify(ctx context.Context, text string) (sentiment.Prediction, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Namer interface {
	Name() string
}

// BackendName reports the backend label of c, unwrapping decorators that
// implement Namer.
func BackendName(c Classifier) string {
	if n, ok := c.(Namer); ok {
		return n.Name()
	}
	return "unknown"
}

// topPrediction picks the highest scoring label.
func topPrediction(labels []string, scores []float64) (sentiment.Prediction, bool) {
	if len(labels) == 0 || len(labels) != len(scores) {
		return sentiment.Prediction{}, false
	}
	best := 0
	for i := range scores {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return sentiment.Prediction{Label: labels[best], Score: scores[best]}, true
}
