package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/processing"
	"github.com/spacesedan/starsense/internal/sentiment"
)

const MAX_UPLOAD_BYTES = 10 << 20

// TextAnalyzer is the analysis surface the handlers depend on.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (sentiment.SentimentResult, error)
	Aggregate(ctx context.Context, rows []string) (models.BulkReport, error)
}

type Handler struct {
	analyzer TextAnalyzer
	ready    *atomic.Bool
}

func NewHandler(analyzer TextAnalyzer, ready *atomic.Bool) *Handler {
	return &Handler{analyzer: analyzer, ready: ready}
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type AnalyzeResponse struct {
	Text    string                    `json:"text"`
	Meaning string                    `json:"meaning"`
	Result  sentiment.SentimentResult `json:"result"`
}

type BulkResponse struct {
	Report       models.BulkReport `json:"report"`
	SkippedCount int               `json:"skipped_count"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleInvalidRequest(c, "request body must be JSON with a 'text' field")
		return
	}

	result, err := h.analyzer.AnalyzeText(c.Request.Context(), req.Text)
	if err != nil {
		HandleAnalysisError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, AnalyzeResponse{
		Text:    req.Text,
		Meaning: sentiment.StarMeaning(result.StarCount()),
		Result:  result,
	})
}

// AnalyzeBulk accepts either a multipart upload in the "file" field or a raw
// CSV request body.
func (h *Handler) AnalyzeBulk(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MAX_UPLOAD_BYTES)

	body, closeBody, err := csvBody(c)
	if err != nil {
		HandleUploadError(c, err)
		return
	}
	defer closeBody()

	rows, err := processing.ReadTextColumn(body)
	if err != nil {
		HandleAnalysisError(c, err)
		return
	}

	report, err := h.analyzer.Aggregate(c.Request.Context(), rows)
	if err != nil {
		HandleAnalysisError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, BulkResponse{
		Report:       report,
		SkippedCount: report.SkippedCount(),
	})
}

func csvBody(c *gin.Context) (io.Reader, func(), error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "multipart/") {
		header, err := c.FormFile("file")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, err
		}
		if err != nil {
			return nil, nil, errors.New("multipart upload must include a 'file' field")
		}
		file, err := header.Open()
		if err != nil {
			return nil, nil, errors.New("uploaded file could not be opened")
		}
		return file, func() { file.Close() }, nil
	}
	return c.Request.Body, func() {}, nil
}

func (h *Handler) Health(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Ready(c *gin.Context) {
	if h.ready == nil || !h.ready.Load() {
		respondError(c, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "sentiment model is not ready")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "ready"})
}
