package sentiment

import (
	"context"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

const VaderBackend = "vader"

var (
	markdownLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern          = regexp.MustCompile(`https?://\S+|www\.\S+`)
	htmlTagPattern      = regexp.MustCompile(`<[^>]+>`)
)

// compound score upper bounds for 1..4 stars; anything above is 5 stars
var vaderStarBounds = [4]float64{-0.60, -0.20, 0.20, 0.60}

func RemoveLinks(input string) string {
	input = markdownLinkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := htmlTagPattern.ReplaceAllString(string(output), " ")
	plainText = strings.Join(strings.Fields(plainText), " ")

	return RemoveLinks(plainText)
}

// VaderClassifier rates text with the VADER lexicon. It only understands
// English and is meant as an offline stand-in for the multilingual model.
type VaderClassifier struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderClassifier() *VaderClassifier {
	return &VaderClassifier{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderClassifier) Name() string { return VaderBackend }

func (v *VaderClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if err := ctx.Err(); err != nil {
		return Prediction{}, err
	}

	// ConvertMarkdownToText drops links; fall back to the raw text if nothing is left
	plain := ConvertMarkdownToText(text)
	if strings.TrimSpace(plain) == "" {
		plain = text
	}

	polarity := v.analyzer.PolarityScores(plain)
	stars := vaderStars(polarity.Compound)

	var score float64
	switch {
	case stars < 3:
		score = polarity.Negative
	case stars > 3:
		score = polarity.Positive
	default:
		score = polarity.Neutral
	}

	return Prediction{Label: StarLabel(stars), Score: clamp01(score)}, nil
}

func vaderStars(compound float64) int {
	for i, bound := range vaderStarBounds {
		if compound <= bound {
			return i + 1
		}
	}
	return MaxStars
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
