package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/sentiment"
)

type HuggingFaceConfig struct {
	BaseURL           string
	Model             string
	Token             string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxRetries        int
	InitialBackoff    time.Duration
}

// HuggingFaceClient classifies text through the hosted inference API.
type HuggingFaceClient struct {
	Client         *http.Client
	endpoint       string
	token          string
	limiter        *rate.Limiter
	maxRetries     int
	initialBackoff time.Duration
}

func NewHuggingFaceClient(cfg HuggingFaceConfig) (*HuggingFaceClient, error) {
	endpoint, err := url.JoinPath(cfg.BaseURL, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("invalid inference url: %w", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = MAX_RETRIES
	}
	backoff := cfg.InitialBackoff
	if backoff <= 0 {
		backoff = INITIAL_BACKOFF
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", cfg.Timeout))

	return &HuggingFaceClient{
		Client:         &http.Client{Timeout: cfg.Timeout},
		endpoint:       endpoint,
		token:          cfg.Token,
		limiter:        rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		maxRetries:     maxRetries,
		initialBackoff: backoff,
	}, nil
}

func (h *HuggingFaceClient) Name() string { return HUGGING_FACE_BACKEND }

// DoWithRetry retries transport errors and 5xx responses with exponential
// backoff. newRequest is called once per attempt so the body is fresh.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, newRequest func() (*http.Request, error)) (*http.Response, error) {
	var resp *http.Response
	var err error
	backoff := h.initialBackoff

	for attempt := 0; attempt < h.maxRetries; attempt++ {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, buildErr := newRequest()
		if buildErr != nil {
			return nil, buildErr
		}

		resp, err = h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}

		// keep the last 5xx response for the caller
		if attempt == h.maxRetries-1 {
			break
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt+1),
			slog.String("error", errMsg(err, resp)))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, MAX_BACKOFF)
	}

	return resp, err
}

func (h *HuggingFaceClient) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	start := time.Now()

	var result models.InferenceResponse
	err := h.postJSON(ctx, models.InferenceRequest{
		Inputs:  text,
		Options: models.InferenceOptions{WaitForModel: true},
	}, &result)
	if err != nil {
		if ctx.Err() != nil {
			return sentiment.Prediction{}, ctx.Err()
		}
		slog.Error("[HuggingFaceClient] Sentiment request failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return sentiment.Prediction{}, sentiment.Unavailable(HUGGING_FACE_BACKEND, err)
	}

	if len(result) == 0 {
		return sentiment.Prediction{}, sentiment.Unavailable(HUGGING_FACE_BACKEND, errors.New("empty inference response"))
	}

	labels := make([]string, len(result[0]))
	scores := make([]float64, len(result[0]))
	for i, ls := range result[0] {
		labels[i] = ls.Label
		scores[i] = ls.Score
	}

	prediction, ok := topPrediction(labels, scores)
	if !ok {
		return sentiment.Prediction{}, sentiment.Unavailable(HUGGING_FACE_BACKEND, errors.New("inference response has no labels"))
	}

	slog.Debug("[HuggingFaceClient] Sentiment request successful",
		slog.String("label", prediction.Label),
		slog.Duration("elapsed", time.Since(start)))
	return prediction, nil
}

// HealthCheck pings the model endpoint. Any status below 500 counts as
// reachable.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return err
	}
	h.setHeaders(req)

	resp, err := h.Client.Do(req)
	if err != nil {
		return sentiment.Unavailable(HUGGING_FACE_BACKEND, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return sentiment.Unavailable(HUGGING_FACE_BACKEND, fmt.Errorf("health check returned status %d", resp.StatusCode))
	}
	return nil
}

func (h *HuggingFaceClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}, output *models.InferenceResponse) error {
	body, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		h.setHeaders(req)
		return req, nil
	})
	if err != nil {
		return fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr models.InferenceError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("inference api returned status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("inference api returned status %d", resp.StatusCode)
	}

	if err := decodeInference(respBody, output); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(respBody),
			slog.Int("raw_response_length", len(respBody)))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// decodeInference accepts both the nested per-input form and the flat form
// some deployments return for a single input.
func decodeInference(body []byte, output *models.InferenceResponse) error {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[[") {
		return json.Unmarshal(body, output)
	}

	var flat []models.InferenceLabelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return err
	}
	*output = models.InferenceResponse{flat}
	return nil
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
