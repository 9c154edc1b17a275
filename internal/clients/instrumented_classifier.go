package clients

import (
	"context"
	"time"

	"github.com/spacesedan/starsense/internal/metrics"
	"github.com/spacesedan/starsense/internal/sentiment"
)

type InstrumentedClassifier struct {
	next Classifier
	name string
}

func NewInstrumentedClassifier(next Classifier) *InstrumentedClassifier {
	return &InstrumentedClassifier{next: next, name: BackendName(next)}
}

func (i *InstrumentedClassifier) Name() string { return i.name }

func (i *InstrumentedClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	start := time.Now()
	prediction, err := i.next.Classify(ctx, text)
	metrics.ClassificationDuration.WithLabelValues(i.name).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ClassificationsTotal.WithLabelValues(i.name, outcome).Inc()

	return prediction, err
}
