package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/pipeline"
)

type runSummary struct {
	pipeline.Stats
	DurationSeconds float64 `json:"duration_seconds"`
}

func newRunCmd() *cobra.Command {
	var (
		input string
		cfg   pipeline.Config
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Runs the full harvesting pipeline over scraped records",
		Long: `Loads company records (a JSON array or one JSON object per line), fills
missing fields from the company website and LinkedIn profile, enriches them,
extracts emails, stores everything and scores each lead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()
			records, err := pipeline.LoadRecords(f)
			if err != nil {
				return err
			}
			if limit := appInstance.Config().Scraper.MaxResults; limit > 0 && len(records) > limit {
				appInstance.Logger().Info("truncating input",
					zap.Int("records", len(records)), zap.Int("max_results", limit))
				records = records[:limit]
			}

			stats, err := appInstance.Pipeline(cfg).Run(cmd.Context(), records)
			if perr := printJSON(cmd.OutOrStdout(), runSummary{Stats: stats, DurationSeconds: stats.Duration().Seconds()}); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("run pipeline: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "path to the scraped company records")
	cmd.Flags().BoolVar(&cfg.SkipEnhance, "skip-enhance", false, "do not fill missing fields from website and LinkedIn")
	cmd.Flags().BoolVar(&cfg.SkipEmails, "skip-emails", false, "do not scrape company websites for emails")
	cmd.Flags().BoolVar(&cfg.SkipEnrichment, "skip-enrichment", false, "do not enrich companies")
	cmd.Flags().BoolVar(&cfg.SkipScoring, "skip-scoring", false, "do not compute quality scores")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}
