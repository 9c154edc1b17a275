package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/spacesedan/starsense/config"
	"github.com/spacesedan/starsense/internal/clients"
	"github.com/spacesedan/starsense/internal/processing"
)

var settings config.Settings

type classifierService interface {
	clients.Classifier
	clients.HealthChecker
	Name() string
	Close()
}

// buildClassifier is replaced in tests.
var buildClassifier = func(ctx context.Context, s config.Settings) (classifierService, error) {
	return clients.NewClassifierStack(ctx, s)
}

var rootCmd = &cobra.Command{
	Use:   "starsense",
	Short: "Star-rating sentiment analysis",
	Long: `Classify text into a 1 to 5 star rating with a confidence percentage,
one text at a time or in bulk from a CSV file with a "text" column.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			return err
		}
		settings = s
		return nil
	},
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func newAnalyzer(ctx context.Context) (*processing.Analyzer, classifierService, error) {
	stack, err := buildClassifier(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	return processing.NewAnalyzer(stack, settings.BulkWorkers), stack, nil
}
