package processing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/sentiment"
)

const TEXT_COLUMN = "text"

const utf8BOM = "\ufeff"

// ReadTextColumn returns the text column of a CSV file, one entry per data
// row. The header match is case-sensitive. Rows too short to reach the
// column yield "" and are skipped downstream.
func ReadTextColumn(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, sentiment.InputError("CSV file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("%w: CSV header could not be read: %w", sentiment.ErrInput, err)
	}

	column := -1
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		if name == TEXT_COLUMN {
			column = i
			break
		}
	}
	if column < 0 {
		return nil, sentiment.InputError("CSV must have a column named 'text'")
	}

	var rows []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: CSV row %d could not be read: %w", sentiment.ErrInput, len(rows)+1, err)
		}

		if column < len(record) {
			rows = append(rows, record[column])
		} else {
			rows = append(rows, "")
		}
	}

	return rows, nil
}

// WriteReportCSV writes one line per input row with the star display and
// the confidence as a percentage.
func WriteReportCSV(w io.Writer, report models.BulkReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"row", "text", "stars", "confidence", "status", "reason"}); err != nil {
		return err
	}

	for _, outcome := range report.Outcomes {
		var stars, confidence string
		if outcome.Result != nil {
			stars = outcome.Result.StarGlyphs()
			confidence = FormatConfidence(*outcome.Result)
		}

		record := []string{
			strconv.Itoa(outcome.Row),
			outcome.Text,
			stars,
			confidence,
			string(outcome.Status),
			outcome.Reason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func FormatConfidence(result sentiment.SentimentResult) string {
	return strconv.Itoa(result.ConfidencePercent()) + "%"
}
