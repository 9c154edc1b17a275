package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spacesedan/starsense/internal/clients"
	"github.com/spacesedan/starsense/internal/metrics"
	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/sentiment"
)

const (
	DEFAULT_WORKERS = 4
	REASON_EMPTY    = "empty text"
)

// Analyzer runs single-text and bulk sentiment analysis against an injected
// classifier.
type Analyzer struct {
	classifier clients.Classifier
	workers    int
}

func NewAnalyzer(classifier clients.Classifier, workers int) *Analyzer {
	if workers < 1 {
		workers = DEFAULT_WORKERS
	}
	return &Analyzer{classifier: classifier, workers: workers}
}

func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

// AnalyzeText classifies one text. Blank text is rejected with ErrInput and
// never reaches the classifier.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (sentiment.SentimentResult, error) {
	if IsBlank(text) {
		return sentiment.SentimentResult{}, sentiment.InputError("please enter some text before analyzing")
	}
	return a.classify(ctx, text)
}

func (a *Analyzer) classify(ctx context.Context, text string) (sentiment.SentimentResult, error) {
	prediction, err := a.classifier.Classify(ctx, text)
	if err != nil {
		if errors.Is(err, sentiment.ErrParse) || errors.Is(err, sentiment.ErrValidation) ||
			errors.Is(err, sentiment.ErrModelUnavailable) || ctx.Err() != nil {
			return sentiment.SentimentResult{}, err
		}
		// an untyped classifier failure is still a model failure
		return sentiment.SentimentResult{}, sentiment.Unavailable(clients.BackendName(a.classifier), err)
	}
	return sentiment.NormalizePrediction(prediction)
}

// Aggregate classifies rows on a bounded worker pool. Each row yields one
// outcome in input order: blank rows are skipped, rows whose model output
// cannot be normalized are failed, the rest are ok. A model failure or a
// canceled context aborts the batch and no report is returned.
func (a *Analyzer) Aggregate(ctx context.Context, rows []string) (models.BulkReport, error) {
	start := time.Now()
	outcomes := make([]models.RowOutcome, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, text := range rows {
		if IsBlank(text) {
			outcomes[i] = models.RowOutcome{Row: i, Text: text, Status: models.RowSkipped, Reason: REASON_EMPTY}
			continue
		}

		// stop scheduling once a worker has failed
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			result, err := a.classify(gctx, text)
			switch {
			case err == nil:
				outcomes[i] = models.RowOutcome{Row: i, Text: text, Status: models.RowOK, Result: &result}
				return nil
			case errors.Is(err, sentiment.ErrParse), errors.Is(err, sentiment.ErrValidation):
				outcomes[i] = models.RowOutcome{Row: i, Text: text, Status: models.RowFailed, Reason: err.Error()}
				return nil
			default:
				return fmt.Errorf("row %d: %w", i, err)
			}
		})
	}

	if err := g.Wait(); err != nil {
		metrics.BulkBatchesTotal.WithLabelValues("aborted").Inc()
		slog.Error("[Analyzer] Bulk analysis aborted",
			slog.Int("rows", len(rows)),
			slog.String("error", err.Error()))
		return models.BulkReport{}, err
	}
	if err := ctx.Err(); err != nil {
		metrics.BulkBatchesTotal.WithLabelValues("aborted").Inc()
		return models.BulkReport{}, err
	}

	report := models.NewBulkReport(outcomes)

	metrics.BulkBatchesTotal.WithLabelValues("completed").Inc()
	metrics.BulkBatchDuration.Observe(time.Since(start).Seconds())
	metrics.BulkRowsTotal.WithLabelValues(string(models.RowOK)).Add(float64(len(report.Records)))
	metrics.BulkRowsTotal.WithLabelValues(string(models.RowSkipped)).Add(float64(len(report.Skipped)))
	metrics.BulkRowsTotal.WithLabelValues(string(models.RowFailed)).Add(float64(len(report.Failed)))

	slog.Info("[Analyzer] Bulk analysis complete",
		slog.Int("rows", len(rows)),
		slog.Int("classified", len(report.Records)),
		slog.Int("skipped", len(report.Skipped)),
		slog.Int("failed", len(report.Failed)),
		slog.Duration("elapsed", time.Since(start)))

	return report, nil
}
