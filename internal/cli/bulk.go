package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/starsense/internal/models"
	"github.com/spacesedan/starsense/internal/processing"
	"github.com/spacesedan/starsense/internal/sentiment"
)

const previewWidth = 60

var bulkOutput string

var bulkCmd = &cobra.Command{
	Use:   "bulk <file.csv>",
	Short: "Rate every row of a CSV file",
	Long: `Rate every value of the "text" column of a CSV file. Blank rows are
skipped and counted. Use --output to also write the results as CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer file.Close()

		rows, err := processing.ReadTextColumn(file)
		if err != nil {
			return err
		}

		analyzer, stack, err := newAnalyzer(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		report, err := analyzer.Aggregate(cmd.Context(), rows)
		if err != nil {
			return err
		}

		renderReport(cmd.OutOrStdout(), report)

		if bulkOutput != "" {
			out, err := os.Create(bulkOutput)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", bulkOutput, err)
			}
			defer out.Close()

			if err := processing.WriteReportCSV(out, report); err != nil {
				return fmt.Errorf("failed to write %s: %w", bulkOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nResults written to %s\n", bulkOutput)
		}
		return nil
	},
}

func renderReport(w io.Writer, report models.BulkReport) {
	fmt.Fprintln(w, "Results:")
	fmt.Fprintln(w, "--------")
	for _, record := range report.Records {
		fmt.Fprintf(w, "%4d  %-15s %4s  %s\n",
			record.Row,
			record.Result.StarGlyphs(),
			processing.FormatConfidence(record.Result),
			preview(record.Text))
	}
	for _, failed := range report.Failed {
		fmt.Fprintf(w, "%4d  failed: %s\n", failed.Row, failed.Reason)
	}

	fmt.Fprintln(w, "\nDistribution:")
	for _, stars := range report.Distribution.Keys() {
		fmt.Fprintf(w, "  %d %-13s %d\n", stars, sentiment.StarMeaning(stars), report.Distribution.Count(stars))
	}

	fmt.Fprintf(w, "\nClassified: %d  Skipped: %d  Failed: %d\n",
		len(report.Records), report.SkippedCount(), len(report.Failed))
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= previewWidth {
		return text
	}
	return string(runes[:previewWidth-3]) + "..."
}

func init() {
	bulkCmd.Flags().StringVarP(&bulkOutput, "output", "o", "", "Write results to this CSV file")
	rootCmd.AddCommand(bulkCmd)
}
