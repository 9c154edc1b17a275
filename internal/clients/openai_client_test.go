package clients

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/starsense/internal/sentiment"
)

func TestParseRatingReply(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLabel string
		wantScore float64
	}{
		{"plain", `{"label":"4 stars","score":0.81}`, "4 stars", 0.81},
		{"fenced", "```json\n{\"label\": \"1 star\", \"score\": 0.9}\n```", "1 star", 0.9},
		{"whitespace", "  {\"label\":\"5 stars\",\"score\":1}\n", "5 stars", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prediction, err := parseRatingReply(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, prediction.Label)
			assert.Equal(t, tt.wantScore, prediction.Score)
		})
	}
}

func TestParseRatingReply_Invalid(t *testing.T) {
	for _, content := range []string{"Four stars!", `{"label":"great","score":0.5}`, `{"label":"9 stars","score":0.5}`, ""} {
		_, err := parseRatingReply(content)
		assert.True(t, errors.Is(err, sentiment.ErrParse), "content %q", content)
	}
}

func TestNewOpenAIClassifier_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClassifier(OpenAIConfig{Model: "gpt-4o-mini"})
	assert.Error(t, err)

	classifier, err := NewOpenAIClassifier(OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"})
	require.NoError(t, err)
	assert.Equal(t, OPENAI_BACKEND, classifier.Name())
}
