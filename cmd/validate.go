package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/lead-harvester/internal/pipeline"
)

func newValidateCmd() *cobra.Command {
	var batchSize int
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validates every stored email over format, DNS and SMTP checks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			processed, valid, err := appInstance.Pipeline(pipeline.Config{BatchSize: batchSize}).ValidateAll(cmd.Context())
			if perr := printJSON(cmd.OutOrStdout(), map[string]int{"processed": processed, "valid": valid}); perr != nil {
				return perr
			}
			if err != nil {
				return fmt.Errorf("validate emails: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "emails per page (default validation.batch_size)")
	return cmd
}

func newScoreCmd() *cobra.Command {
	var companyID int64
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Recomputes the quality score of one company",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			score, err := appInstance.Pipeline(pipeline.Config{}).ScoreCompany(cmd.Context(), companyID)
			if err != nil {
				return fmt.Errorf("score company %d: %w", companyID, err)
			}
			return printJSON(cmd.OutOrStdout(), score)
		},
	}
	cmd.Flags().Int64Var(&companyID, "company", 0, "company id")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
