// Package server builds the application's dependencies and runs the read API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/api"
	"github.com/JakeFAU/lead-harvester/internal/clock/system"
	"github.com/JakeFAU/lead-harvester/internal/config"
	"github.com/JakeFAU/lead-harvester/internal/database"
	"github.com/JakeFAU/lead-harvester/internal/enrich"
	"github.com/JakeFAU/lead-harvester/internal/extract"
	collyfetcher "github.com/JakeFAU/lead-harvester/internal/fetcher/colly"
	"github.com/JakeFAU/lead-harvester/internal/id/uuid"
	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
	"github.com/JakeFAU/lead-harvester/internal/pipeline"
	"github.com/JakeFAU/lead-harvester/internal/policy/ratelimit"
	"github.com/JakeFAU/lead-harvester/internal/scoring"
	"github.com/JakeFAU/lead-harvester/internal/storage/memory"
	pgstore "github.com/JakeFAU/lead-harvester/internal/storage/postgres"
	"github.com/JakeFAU/lead-harvester/internal/validate"
)

// ErrNoDatabase is returned by operations that need the postgres driver.
var ErrNoDatabase = errors.New("operation requires the postgres storage driver")

// App contains the application's dependencies.
type App struct {
	cfg         config.Config
	logger      *zap.Logger
	repo        lead.Repository
	maintenance *database.PostgresProvider
	clock       lead.Clock
	ids         lead.IDGenerator
}

// Build connects the configured storage backend and, for postgres, applies
// pending migrations when db.migrations is set.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Metrics.Enabled {
		metrics.Init()
	}
	app := &App{
		cfg:    cfg,
		logger: logger,
		clock:  system.New(),
		ids:    uuid.New(),
	}
	if err := setupStorage(ctx, app); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func setupStorage(ctx context.Context, app *App) error {
	switch app.cfg.Storage.Driver {
	case config.DriverMemory:
		app.logger.Warn("using in-memory storage, nothing is persisted")
		app.repo = memory.NewRepository(memory.WithClock(app.clock))
		return nil
	case config.DriverPostgres:
	default:
		return fmt.Errorf("unknown storage driver: %s", app.cfg.Storage.Driver)
	}

	dsn := app.cfg.DSN()
	maint, err := database.NewPostgresProvider(ctx, dsn, app.logger.Named("database"))
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	app.maintenance = maint
	if app.cfg.DB.Migrations {
		if err := maint.Migrate(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}

	repo, err := pgstore.NewRepository(ctx, pgstore.Config{
		DSN:             dsn,
		MaxConns:        app.cfg.DB.MaxConns,
		MinConns:        app.cfg.DB.MinConns,
		MaxConnLifetime: app.cfg.DB.MaxConnLifetime,
	}, app.logger.Named("repository"))
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}
	app.repo = repo
	app.logger.Info("postgres storage ready", zap.Int32("max_conns", app.cfg.DB.MaxConns))
	return nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the root logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Repository returns the configured lead store.
func (a *App) Repository() lead.Repository { return a.repo }

// Stats returns the table statistics provider, or nil for the memory driver.
func (a *App) Stats() database.StatsProvider {
	if a.maintenance == nil {
		return nil
	}
	return a.maintenance
}

// Migrate applies pending schema migrations.
func (a *App) Migrate() error {
	if a.maintenance == nil {
		return ErrNoDatabase
	}
	if err := a.maintenance.Migrate(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Fetcher builds the colly page fetcher, paced by http.delay.
func (a *App) Fetcher() lead.Fetcher {
	return collyfetcher.New(a.cfg.FetcherConfig(),
		collyfetcher.WithPacer(ratelimit.New(ratelimit.Config{Interval: a.cfg.HTTP.Delay})),
		collyfetcher.WithLogger(a.logger.Named("fetcher")),
	)
}

// Pipeline wires every stage over the app's repository. A zero BatchSize
// falls back to validation.batch_size.
func (a *App) Pipeline(pc pipeline.Config) *pipeline.Pipeline {
	fetcher := a.Fetcher()
	stages := pipeline.Components{
		Extractor: extract.New(
			extract.WithMaxPages(a.cfg.Scraper.MaxPages),
			extract.WithLogger(a.logger.Named("extract")),
		),
		Enricher: enrich.New(fetcher,
			enrich.WithPhoneRegion(a.cfg.Scraper.PhoneRegion),
			enrich.WithClock(a.clock),
			enrich.WithLogger(a.logger.Named("enrich")),
		),
		Validator: validate.New(
			validate.WithTimeout(a.cfg.Validation.SMTPTimeout),
			validate.WithDNSTimeout(a.cfg.Validation.DNSTimeout),
			validate.WithHeloDomain(a.cfg.Validation.HeloDomain),
			validate.WithClock(a.clock),
			validate.WithLogger(a.logger.Named("validate")),
		),
		Scorer: scoring.New(
			scoring.WithClock(a.clock),
			scoring.WithLogger(a.logger.Named("scoring")),
		),
	}
	if pc.BatchSize <= 0 {
		pc.BatchSize = a.cfg.Validation.BatchSize
	}
	pacer := ratelimit.New(ratelimit.Config{Interval: a.cfg.Validation.RecordDelay})
	return pipeline.New(a.repo, fetcher, stages, pacer, a.clock, a.ids, pc, a.logger.Named("pipeline"))
}

// Handler returns the read API router.
func (a *App) Handler() http.Handler {
	return api.NewServer(a.repo, a.Stats(), a.cfg, a.logger.Named("api")).Handler()
}

// Serve runs the read API on server.port until ctx is canceled.
func (a *App) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Close releases the storage connections.
func (a *App) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
	if a.maintenance != nil {
		if err := a.maintenance.Close(); err != nil {
			a.logger.Warn("database close failed", zap.Error(err))
		}
	}
	a.logger.Info("shutdown complete")
}
