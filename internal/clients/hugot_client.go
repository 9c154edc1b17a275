package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelineBackends"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type HugotConfig struct {
	// ModelName is the Hugging Face repository, e.g.
	// nlptown/bert-base-multilingual-uncased-sentiment.
	ModelName    string
	ModelDir     string
	OnnxFilename string
}

// HugotClassifier runs the sentiment model locally through an ONNX Runtime
// session.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func localModelPath(cfg HugotConfig) string {
	return filepath.Join(cfg.ModelDir, strings.ReplaceAll(cfg.ModelName, "/", "_"))
}

func ensureModel(cfg HugotConfig) (string, error) {
	modelPath := localModelPath(cfg)
	if err := os.MkdirAll(cfg.ModelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	if _, err := os.Stat(filepath.Join(modelPath, cfg.OnnxFilename)); err == nil {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to stat model: %w", err)
	}

	slog.Info("[HugotClassifier] Model not found, downloading...",
		slog.String("model", cfg.ModelName))
	start := time.Now()

	downloaded, err := hugot.DownloadModel(cfg.ModelName, cfg.ModelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", cfg.ModelName, err)
	}

	slog.Info("[HugotClassifier] Model downloaded successfully",
		slog.String("path", downloaded),
		slog.Duration("elapsed", time.Since(start)))
	return downloaded, nil
}

func NewHugotClassifier(ctx context.Context, cfg HugotConfig) (*HugotClassifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	modelPath, err := ensureModel(cfg)
	if err != nil {
		return nil, sentiment.Unavailable(HUGOT_BACKEND, err)
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, sentiment.Unavailable(HUGOT_BACKEND, fmt.Errorf("failed to initialize hugot session: %w", err))
	}

	pipelineConfig := hugot.TextClassificationConfig{
		ModelPath:    modelPath,
		Name:         "starRatingPipeline",
		OnnxFilename: cfg.OnnxFilename,
		Options: []pipelineBackends.PipelineOption[*pipelines.TextClassificationPipeline]{
			pipelines.WithSoftmax(),
		},
	}

	pipeline, err := hugot.NewPipeline(session, pipelineConfig)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("[HugotClassifier] Failed to destroy session",
				slog.String("error", destroyErr.Error()))
		}
		return nil, sentiment.Unavailable(HUGOT_BACKEND, fmt.Errorf("failed to initialize pipeline: %w", err))
	}

	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func (h *HugotClassifier) Name() string { return HUGOT_BACKEND }

func (h *HugotClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return sentiment.Prediction{}, err
	}

	output, err := h.pipeline.RunPipeline([]string{text})
	if err != nil {
		return sentiment.Prediction{}, sentiment.Unavailable(HUGOT_BACKEND, err)
	}
	if len(output.ClassificationOutputs) == 0 {
		return sentiment.Prediction{}, sentiment.Unavailable(HUGOT_BACKEND, errors.New("pipeline returned no output"))
	}

	outputs := output.ClassificationOutputs[0]
	labels := make([]string, len(outputs))
	scores := make([]float64, len(outputs))
	for i, o := range outputs {
		labels[i] = o.Label
		scores[i] = float64(o.Score)
	}

	prediction, ok := topPrediction(labels, scores)
	if !ok {
		return sentiment.Prediction{}, sentiment.Unavailable(HUGOT_BACKEND, errors.New("pipeline returned no labels"))
	}
	return prediction, nil
}

func (h *HugotClassifier) Close() error {
	slog.Info("[HugotClassifier] Destroying session")
	return h.session.Destroy()
}
