// Package cmd defines the leadharvester CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/config"
	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/logging"
	"github.com/JakeFAU/lead-harvester/internal/pipeline"
	"github.com/JakeFAU/lead-harvester/internal/server"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is the slice of server.App the commands use. Tests inject their own.
type App interface {
	Config() config.Config
	Logger() *zap.Logger
	Repository() lead.Repository
	Pipeline(cfg pipeline.Config) *pipeline.Pipeline
	Migrate() error
	Serve(ctx context.Context) error
	Close()
}

// AppFactory builds the App once configuration and logging are ready.
type AppFactory func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error)

func defaultFactory(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return server.Build(ctx, cfg, logger)
}

func newRootCmd(factory AppFactory) *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "leadharvester",
		Short: "Harvests, validates and scores business contact leads.",
		Long: `leadharvester turns scraped company records into qualified leads. It
extracts professional emails from company websites, enriches each company with
industry, size, location and decision makers, validates addresses over DNS and
SMTP, scores lead quality and stores everything in Postgres.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)

			appInstance, err := factory(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
				_ = logging.Sync(appInstance.Logger())
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")

	cmd.AddCommand(
		newRunCmd(),
		newValidateCmd(),
		newScoreCmd(),
		newCleanupCmd(),
		newDedupeCmd(),
		newMigrateCmd(),
		newServeCmd(),
	)
	return cmd
}

// Execute runs the CLI with the given arguments.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd(defaultFactory)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("leadharvester: %w", err)
	}
	return nil
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
