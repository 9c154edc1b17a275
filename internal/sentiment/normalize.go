package sentiment

import (
	"math"
	"strconv"
	"strings"
)

// Normalize converts a model label and score into a SentimentResult.
//
// The star count is the leading whitespace-delimited token of label and must
// be an integer in [1,5]. The confidence is round(score*100); score must be
// a finite value in [0,1].
func Normalize(label string, score float64) (SentimentResult, error) {
	stars, err := ParseStars(label)
	if err != nil {
		return SentimentResult{}, err
	}

	if math.IsNaN(score) || score < 0 || score > 1 {
		return SentimentResult{}, &ValidationError{Field: "score", Value: score}
	}

	return newResult(stars, int(math.Round(score*100))), nil
}

func NormalizePrediction(p Prediction) (SentimentResult, error) {
	return Normalize(p.Label, p.Score)
}

// ParseStars reads the star count from a model label. The leading token must
// be exactly one digit in [1,5]; signs, padding zeros and decimals are
// rejected.
func ParseStars(label string) (int, error) {
	fields := strings.Fields(label)
	if len(fields) == 0 || len(fields[0]) != 1 {
		return 0, &ParseError{Label: label}
	}

	stars := int(fields[0][0]) - '0'
	if stars < MinStars || stars > MaxStars {
		return 0, &ParseError{Label: label}
	}
	return stars, nil
}

// StarLabel formats a star count the way the multilingual model labels its
// classes: "1 star", "2 stars", ...
func StarLabel(stars int) string {
	if stars == 1 {
		return "1 star"
	}
	return strconv.Itoa(stars) + " stars"
}
