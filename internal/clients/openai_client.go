package clients

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/spacesedan/starsense/internal/sentiment"
)

const (
	openAIRequestTimeout = 60 * time.Second

	starRatingPrompt = `You rate the sentiment of product reviews and short texts written in English, French, Spanish, German, Italian or Dutch.
Answer with a single JSON object and nothing else: {"label": "<N> stars", "score": <p>}
where N is an integer from 1 (very negative) to 5 (very positive), using "1 star" for N=1,
and p is your probability for that rating between 0 and 1.`
)

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIClassifier asks a chat model for a star rating in the same label
// format as the multilingual classification model.
type OpenAIClassifier struct {
	Client *openai.Client
	model  string
}

func NewOpenAIClassifier(cfg OpenAIConfig) (*OpenAIClassifier, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing OpenAI api key")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(&http.Client{Timeout: openAIRequestTimeout}),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	slog.Info("[OpenAIClient] OpenAI client initialized",
		slog.String("model", cfg.Model),
		slog.Duration("timeout", openAIRequestTimeout))

	return &OpenAIClassifier{
		Client: openai.NewClient(opts...),
		model:  cfg.Model,
	}, nil
}

func (o *OpenAIClassifier) Name() string { return OPENAI_BACKEND }

func (o *OpenAIClassifier) Classify(ctx context.Context, text string) (sentiment.Prediction, error) {
	completion, err := o.Client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(starRatingPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(o.model)),
		Temperature: openai.F(0.0),
	})
	if err != nil {
		if ctx.Err() != nil {
			return sentiment.Prediction{}, ctx.Err()
		}
		return sentiment.Prediction{}, sentiment.Unavailable(OPENAI_BACKEND, err)
	}

	if len(completion.Choices) == 0 {
		return sentiment.Prediction{}, sentiment.Unavailable(OPENAI_BACKEND, errors.New("completion has no choices"))
	}

	return parseRatingReply(completion.Choices[0].Message.Content)
}

// parseRatingReply reads the JSON object the model was asked for. Code
// fences around the object are tolerated; anything else is a ParseError.
func parseRatingReply(content string) (sentiment.Prediction, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var reply sentiment.Prediction
	if err := json.Unmarshal([]byte(trimmed), &reply); err != nil {
		return sentiment.Prediction{}, &sentiment.ParseError{Label: content}
	}
	if _, err := sentiment.ParseStars(reply.Label); err != nil {
		return sentiment.Prediction{}, err
	}
	return reply, nil
}
