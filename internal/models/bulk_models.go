package models

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/spacesedan/starsense/internal/sentiment"
)

type RowStatus string

const (
	RowOK      RowStatus = "ok"
	RowSkipped RowStatus = "skipped"
	RowFailed  RowStatus = "failed"
)

// BulkRecord is one successfully classified input row.
type BulkRecord struct {
	Row    int                       `json:"row"`
	Text   string                    `json:"text"`
	Result sentiment.SentimentResult `json:"result"`
}

// RowOutcome is the tagged result for a single bulk input row. Result is set
// only when Status is RowOK; Reason only when it is not.
type RowOutcome struct {
	Row    int                        `json:"row"`
	Text   string                     `json:"text"`
	Status RowStatus                  `json:"status"`
	Result *sentiment.SentimentResult `json:"result,omitempty"`
	Reason string                     `json:"reason,omitempty"`
}

// DistributionTable counts classified rows per star rating. Keys 1 through 5
// are always present.
type DistributionTable map[int]int

func NewDistributionTable() DistributionTable {
	table := make(DistributionTable, sentiment.MaxStars)
	for stars := sentiment.MinStars; stars <= sentiment.MaxStars; stars++ {
		table[stars] = 0
	}
	return table
}

func (d DistributionTable) Add(stars int) {
	if stars < sentiment.MinStars || stars > sentiment.MaxStars {
		return
	}
	d[stars]++
}

func (d DistributionTable) Count(stars int) int { return d[stars] }

func (d DistributionTable) Total() int {
	total := 0
	for _, n := range d {
		total += n
	}
	return total
}

// Keys returns the chart axis 1..5 in order.
func (d DistributionTable) Keys() []int {
	keys := make([]int, 0, sentiment.MaxStars)
	for stars := sentiment.MinStars; stars <= sentiment.MaxStars; stars++ {
		keys = append(keys, stars)
	}
	return keys
}

// UnmarshalJSON zero-fills missing ratings so a decoded table keeps its keys.
func (d *DistributionTable) UnmarshalJSON(data []byte) error {
	var raw map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	table := NewDistributionTable()
	for key, count := range raw {
		stars, err := strconv.Atoi(key)
		if err != nil || stars < sentiment.MinStars || stars > sentiment.MaxStars {
			return &sentiment.ValidationError{Field: "distribution", Value: key}
		}
		table[stars] = count
	}
	*d = table
	return nil
}

type BulkReport struct {
	Outcomes     []RowOutcome      `json:"outcomes"`
	Records      []BulkRecord      `json:"records"`
	Skipped      []RowOutcome      `json:"skipped"`
	Failed       []RowOutcome      `json:"failed"`
	Distribution DistributionTable `json:"distribution"`
}

// NewBulkReport derives records, skip/fail lists and the distribution from
// outcomes. Outcomes are sorted by row first.
func NewBulkReport(outcomes []RowOutcome) BulkReport {
	sort.SliceStable(outcomes, func(i, j int) bool { return outcomes[i].Row < outcomes[j].Row })

	report := BulkReport{
		Outcomes:     outcomes,
		Records:      []BulkRecord{},
		Skipped:      []RowOutcome{},
		Failed:       []RowOutcome{},
		Distribution: NewDistributionTable(),
	}

	for _, outcome := range outcomes {
		switch outcome.Status {
		case RowOK:
			report.Records = append(report.Records, BulkRecord{
				Row:    outcome.Row,
				Text:   outcome.Text,
				Result: *outcome.Result,
			})
			report.Distribution.Add(outcome.Result.StarCount())
		case RowSkipped:
			report.Skipped = append(report.Skipped, outcome)
		case RowFailed:
			report.Failed = append(report.Failed, outcome)
		}
	}

	return report
}

func (r BulkReport) SkippedCount() int { return len(r.Skipped) }
