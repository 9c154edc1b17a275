package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/sentiment"
)

type stubService struct{ closed bool }

func (s *stubService) Classify(_ context.Context, text string) (sentiment.Prediction, error) {
	if strings.Contains(text, "terrible") {
		return sentiment.Prediction{Label: "1 star", Score: 0.9}, nil
	}
	return sentiment.Prediction{Label: "4 stars", Score: 0.812}, nil
}

func (s *stubService) HealthCheck(context.Context) error { return nil }
func (s *stubService) Name() string                        { return "stub" }
func (s *stubService) Close()                              { s.closed = true }

func execute(t *testing.T, stdin string, args ...string) (string, *stubService, error) {
	t.Helper()

	service := &stubService{}
	original := buildClassifier
	buildClassifier = func(context.Context, config.Settings) (classifierService, error) {
		return service, nil
	}
	t.Cleanup(func() {
		buildClassifier = original
		bulkOutput = ""
	})
	t.Setenv("CLASSIFIER_BACKEND", config.BackendVader)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), service, err
}

func TestAnalyzeCommand(t *testing.T) {
	out, service, err := execute(t, "", "analyze", "good", "product")
	require.NoError(t, err)

	assert.Contains(t, out, "⭐⭐⭐⭐ (4/5, Positive)")
	assert.Contains(t, out, "Confidence: 81%")
	assert.Contains(t, out, "Text:       good product")
	assert.True(t, service.closed)
}

func TestAnalyzeCommandReadsStdin(t *testing.T) {
	out, _, err := execute(t, "terrible service\n", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "⭐ (1/5, Very Negative)")
}

func TestAnalyzeCommandRejectsBlankText(t *testing.T) {
	_, _, err := execute(t, "   \n", "analyze")
	assert.ErrorIs(t, err, sentiment.ErrInput)
}

func TestBulkCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "reviews.csv")
	output := filepath.Join(dir, "results.csv")
	require.NoError(t, os.WriteFile(input, []byte("text\ngood product\n\"\"\nterrible\n"), 0o644))

	out, _, err := execute(t, "", "bulk", input, "-o", output)
	require.NoError(t, err)

	assert.Contains(t, out, "Classified: 2  Skipped: 1  Failed: 0")
	assert.Contains(t, out, "  4 Positive      1")
	assert.Contains(t, out, "  3 Neutral       0")
	assert.Contains(t, out, "Results written to "+output)

	written, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(written)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "row,text,stars,confidence,status,reason", lines[0])
	assert.Equal(t, "0,good product,⭐⭐⭐⭐,81%,ok,", lines[1])
	assert.Equal(t, "1,,,,skipped,empty text", lines[2])
}

func TestBulkCommandMissingColumn(t *testing.T) {
	input := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(input, []byte("review\ngood\n"), 0o644))

	_, _, err := execute(t, "", "bulk", input)
	assert.ErrorIs(t, err, sentiment.ErrInput)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n text"))

	long := strings.Repeat("a", previewWidth+10)
	got := preview(long)
	assert.Len(t, []rune(got), previewWidth)
	assert.True(t, strings.HasSuffix(got, "..."))
}
