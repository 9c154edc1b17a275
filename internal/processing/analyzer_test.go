package processing

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/internal/clients"
	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/sentiment"
)

// keywordClassifier rates text by keyword and records every text it sees.
type keywordClassifier struct {
	mu     sync.Mutex
	seen   []string
	jitter bool
	calls  atomic.Int32
	failOn string
	err    error
}

func (k *keywordClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	k.calls.Add(1)
	k.mu.Lock()
	k.seen = append(k.seen, text)
	k.mu.Unlock()

	if k.jitter {
		time.Sleep(time.Duration(rand.Intn(3)) * time.Millisecond)
	}
	if err := ctx.Err(); err != nil {
		return sentiment.Prediction{}, err
	}
	if k.failOn != "" && strings.Contains(text, k.failOn) {
		return sentiment.Prediction{}, k.err
	}

	switch {
	case strings.Contains(text, "terrible"):
		return sentiment.Prediction{Label: "1 star", Score: 0.91}, nil
	case strings.Contains(text, "drift"):
		return sentiment.Prediction{Label: "NEGATIVE", Score: 0.7}, nil
	case strings.Contains(text, "overconfident"):
		return sentiment.Prediction{Label: "5 stars", Score: 1.2}, nil
	case strings.Contains(text, "good"):
		return sentiment.Prediction{Label: "4 stars", Score: 0.812}, nil
	default:
		return sentiment.Prediction{Label: "3 stars", Score: 0.5}, nil
	}
}

func TestAnalyzeText(t *testing.T) {
	classifier := &keywordClassifier{}
	analyzer := NewAnalyzer(classifier, 2)

	result, err := analyzer.AnalyzeText(context.Background(), "good product")
	require.NoError(t, err)
	assert.Equal(t, 4, result.StarCount())
	assert.Equal(t, "⭐⭐⭐⭐", result.StarGlyphs())
	assert.Equal(t, 81, result.ConfidencePercent())
}

func TestAnalyzeText_BlankNeverReachesClassifier(t *testing.T) {
	classifier := &keywordClassifier{}
	analyzer := NewAnalyzer(classifier, 2)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := analyzer.AnalyzeText(context.Background(), text)
		assert.True(t, errors.Is(err, sentiment.ErrInput))
	}
	assert.Zero(t, classifier.calls.Load())
}

func TestAnalyzeText_ErrorTaxonomy(t *testing.T) {
	t.Run("parse error surfaces", func(t *testing.T) {
		_, err := NewAnalyzer(&keywordClassifier{}, 1).AnalyzeText(context.Background(), "drift")
		assert.True(t, errors.Is(err, sentiment.ErrParse))
	})

	t.Run("validation error surfaces", func(t *testing.T) {
		_, err := NewAnalyzer(&keywordClassifier{}, 1).AnalyzeText(context.Background(), "overconfident")
		assert.True(t, errors.Is(err, sentiment.ErrValidation))
	})

	t.Run("untyped failure is model unavailable", func(t *testing.T) {
		classifier := &keywordClassifier{failOn: "boom", err: errors.New("segfault")}
		result, err := NewAnalyzer(classifier, 1).AnalyzeText(context.Background(), "boom")
		assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
		assert.True(t, result.IsZero())

		var modelErr *sentiment.ModelError
		require.True(t, errors.As(err, &modelErr))
		assert.Equal(t, clients.BackendName(classifier), modelErr.Backend)
		assert.Equal(t, "unknown", modelErr.Backend)
	})
}

func TestAggregate_Example(t *testing.T) {
	classifier := &keywordClassifier{}
	report, err := NewAnalyzer(classifier, 4).Aggregate(context.Background(), []string{"good product", "", "terrible"})
	require.NoError(t, err)

	require.Len(t, report.Records, 2)
	assert.Equal(t, 0, report.Records[0].Row)
	assert.Equal(t, "good product", report.Records[0].Text)
	assert.Equal(t, 2, report.Records[1].Row)
	assert.Equal(t, "terrible", report.Records[1].Text)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, 1, report.Skipped[0].Row)
	assert.Equal(t, 1, report.SkippedCount())

	assert.Equal(t, models.DistributionTable{1: 1, 2: 0, 3: 0, 4: 1, 5: 0}, report.Distribution)
	assert.Equal(t, int32(2), classifier.calls.Load())
	assert.NotContains(t, classifier.seen, "")
}

func TestAggregate_PreservesOrderUnderConcurrency(t *testing.T) {
	rows := make([]string, 200)
	for i := range rows {
		switch i % 4 {
		case 0:
			rows[i] = fmt.Sprintf("good %d", i)
		case 1:
			rows[i] = "  "
		case 2:
			rows[i] = fmt.Sprintf("terrible %d", i)
		default:
			rows[i] = fmt.Sprintf("drift %d", i)
		}
	}

	for _, workers := range []int{1, 3, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			report, err := NewAnalyzer(&keywordClassifier{jitter: true}, workers).Aggregate(context.Background(), rows)
			require.NoError(t, err)

			require.Len(t, report.Outcomes, len(rows))
			for i, outcome := range report.Outcomes {
				assert.Equal(t, i, outcome.Row)
				assert.Equal(t, rows[i], outcome.Text)
			}

			for i := 1; i < len(report.Records); i++ {
				assert.Less(t, report.Records[i-1].Row, report.Records[i].Row)
			}
			assert.Len(t, report.Records, 100)
			assert.Len(t, report.Skipped, 50)
			assert.Len(t, report.Failed, 50)
			assert.Equal(t, models.DistributionTable{1: 50, 2: 0, 3: 0, 4: 50, 5: 0}, report.Distribution)
		})
	}
}

func TestAggregate_DistributionAlwaysHasAllKeys(t *testing.T) {
	report, err := NewAnalyzer(&keywordClassifier{}, 2).Aggregate(context.Background(), []string{"good", "good"})
	require.NoError(t, err)

	for stars := 1; stars <= 5; stars++ {
		_, ok := report.Distribution[stars]
		assert.True(t, ok, "missing key %d", stars)
	}
	assert.Equal(t, 2, report.Distribution.Count(4))
	assert.Equal(t, 0, report.Distribution.Count(5))
}

func TestAggregate_FailedRowsDoNotAbort(t *testing.T) {
	report, err := NewAnalyzer(&keywordClassifier{}, 2).Aggregate(context.Background(), []string{"drift", "good", "overconfident"})
	require.NoError(t, err)

	require.Len(t, report.Failed, 2)
	assert.Equal(t, models.RowFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Reason, "NEGATIVE")
	assert.Equal(t, models.RowOK, report.Outcomes[1].Status)
	assert.Equal(t, models.RowFailed, report.Outcomes[2].Status)
	assert.Equal(t, 1, report.Distribution.Total())
}

func TestAggregate_ModelUnavailableAbortsBatch(t *testing.T) {
	rows := make([]string, 50)
	for i := range rows {
		rows[i] = fmt.Sprintf("good %d", i)
	}
	rows[5] = "broken"

	classifier := &keywordClassifier{failOn: "broken", err: sentiment.Unavailable("fake", errors.New("gpu lost"))}
	report, err := NewAnalyzer(classifier, 1).Aggregate(context.Background(), rows)

	require.Error(t, err)
	assert.True(t, errors.Is(err, sentiment.ErrModelUnavailable))
	assert.Contains(t, err.Error(), "row 5")
	assert.Empty(t, report.Records)
	assert.Less(t, int(classifier.calls.Load()), len(rows))
}

func TestAggregate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAnalyzer(&keywordClassifier{}, 2).Aggregate(ctx, []string{"good", "terrible"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate_EmptyInput(t *testing.T) {
	report, err := NewAnalyzer(&keywordClassifier{}, 2).Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Len(t, report.Distribution, 5)
}
