package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spacesedan/starsense/internal/processing"
	"github.com/spacesedan/starsense/internal/sentiment"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text...]",
	Short: "Rate a single text",
	Long:  `Rate one text. The arguments are joined with spaces; with no arguments the text is read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			text = string(data)
		}

		analyzer, stack, err := newAnalyzer(cmd.Context())
		if err != nil {
			return err
		}
		defer stack.Close()

		result, err := analyzer.AnalyzeText(cmd.Context(), text)
		if err != nil {
			return err
		}

		renderResult(cmd.OutOrStdout(), strings.TrimSpace(text), result)
		return nil
	},
}

func renderResult(w io.Writer, text string, result sentiment.SentimentResult) {
	fmt.Fprintf(w, "Rating:     %s (%d/%d, %s)\n",
		result.StarGlyphs(), result.StarCount(), sentiment.MaxStars, sentiment.StarMeaning(result.StarCount()))
	fmt.Fprintf(w, "Confidence: %s\n", processing.FormatConfidence(result))
	fmt.Fprintf(w, "Text:       %s\n", text)
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}
