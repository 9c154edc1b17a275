package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type ErrorResponse struct {
	StatusCode int
	Code       string
	Message    string
}

// MapAnalysisError maps the sentiment error taxonomy onto HTTP responses.
func MapAnalysisError(err error) ErrorResponse {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return ErrorResponse{StatusCode: http.StatusRequestEntityTooLarge, Code: "PAYLOAD_TOO_LARGE", Message: fmt.Sprintf("upload exceeds the %d byte limit", tooLarge.Limit)}
	case errors.Is(err, sentiment.ErrInput):
		return ErrorResponse{StatusCode: http.StatusBadRequest, Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, sentiment.ErrParse), errors.Is(err, sentiment.ErrValidation):
		return ErrorResponse{StatusCode: http.StatusBadGateway, Code: "UNEXPECTED_MODEL_OUTPUT", Message: err.Error()}
	case errors.Is(err, sentiment.ErrModelUnavailable):
		return ErrorResponse{StatusCode: http.StatusServiceUnavailable, Code: "MODEL_UNAVAILABLE", Message: "sentiment model unavailable"}
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorResponse{StatusCode: http.StatusGatewayTimeout, Code: "TIMEOUT", Message: "analysis timed out"}
	default:
		return ErrorResponse{StatusCode: http.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "internal server error"}
	}
}

func HandleAnalysisError(c *gin.Context, err error) {
	errResp := MapAnalysisError(err)
	respondError(c, errResp.StatusCode, errResp.Code, errResp.Message)
}

func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// HandleUploadError answers a failed upload read. Uploads over the size
// limit get 413; anything else is a malformed request.
func HandleUploadError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		HandleAnalysisError(c, err)
		return
	}
	HandleInvalidRequest(c, err.Error())
}
