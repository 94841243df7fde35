package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCleanupCmd() *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Counts, or with --delete removes, emails that failed validation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			n, err := appInstance.Repository().CleanupInvalidEmails(cmd.Context(), remove)
			if err != nil {
				return fmt.Errorf("cleanup invalid emails: %w", err)
			}
			appInstance.Logger().Info("invalid emails", zap.Int64("count", n), zap.Bool("deleted", remove))
			return printJSON(cmd.OutOrStdout(), map[string]any{"invalid": n, "deleted": remove})
		},
	}
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the invalid emails instead of counting them")
	return cmd
}

func newDedupeCmd() *cobra.Command {
	var companyID int64
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Removes duplicate emails, keeping the highest confidence copy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			var scope *int64
			if cmd.Flags().Changed("company") {
				scope = &companyID
			}
			n, err := appInstance.Repository().DeduplicateEmails(cmd.Context(), scope)
			if err != nil {
				return fmt.Errorf("deduplicate emails: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), map[string]int64{"removed": n})
		},
	}
	cmd.Flags().Int64Var(&companyID, "company", 0, "only deduplicate this company's emails")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Applies pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := appInstance.Migrate(); err != nil {
				return err
			}
			appInstance.Logger().Info("migrations applied")
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the read-only lead API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			return appInstance.Serve(cmd.Context())
		},
	}
}
