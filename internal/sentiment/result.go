package sentiment

import (
	"encoding/json"
	"strings"
)

const (
	StarGlyph = "⭐"
	MinStars  = 1
	MaxStars  = 5
)

// Prediction is the raw output of a classifier: the model's label, e.g.
// "4 stars", and its probability for that label.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SentimentResult is a normalized rating. It has no setters; build one with
// Normalize.
type SentimentResult struct {
	starCount         int
	starGlyphs        string
	confidencePercent int
}

func newResult(stars, percent int) SentimentResult {
	return SentimentResult{
		starCount:         stars,
		starGlyphs:        strings.Repeat(StarGlyph, stars),
		confidencePercent: percent,
	}
}

func (r SentimentResult) StarCount() int         { return r.starCount }
func (r SentimentResult) StarGlyphs() string     { return r.starGlyphs }
func (r SentimentResult) ConfidencePercent() int { return r.confidencePercent }
func (r SentimentResult) IsZero() bool           { return r.starCount == 0 }

type resultJSON struct {
	StarCount         int    `json:"star_count"`
	StarGlyphs        string `json:"star_glyphs"`
	ConfidencePercent int    `json:"confidence_percent"`
}

func (r SentimentResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultJSON{
		StarCount:         r.starCount,
		StarGlyphs:        r.starGlyphs,
		ConfidencePercent: r.confidencePercent,
	})
}

// UnmarshalJSON rebuilds a result from its wire form. The glyph string is
// derived from star_count and the ranges are checked again.
func (r *SentimentResult) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.StarCount < MinStars || raw.StarCount > MaxStars {
		return &ValidationError{Field: "star_count", Value: raw.StarCount}
	}
	if raw.ConfidencePercent < 0 || raw.ConfidencePercent > 100 {
		return &ValidationError{Field: "confidence_percent", Value: raw.ConfidencePercent}
	}
	*r = newResult(raw.StarCount, raw.ConfidencePercent)
	return nil
}

// StarMeaning is the legend shown next to ratings.
func StarMeaning(stars int) string {
	switch stars {
	case 1:
		return "Very Negative"
	case 2:
		return "Negative"
	case 3:
		return "Neutral"
	case 4:
		return "Positive"
	case 5:
		return "Very Positive"
	default:
		return "Unknown"
	}
}
