// Package database manages the lead schema and the maintenance queries that
// run over the whole database.
package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Postgres driver
	"go.uber.org/zap"
)

// TableCounts holds the row count of every lead table.
type TableCounts struct {
	BusinessContacts  int64 `db:"business_contacts" json:"business_contacts"`
	CompanyEmails     int64 `db:"company_emails" json:"company_emails"`
	LeadEnrichment    int64 `db:"lead_enrichment" json:"lead_enrichment"`
	EmailValidation   int64 `db:"email_validation" json:"email_validation"`
	LeadQualityScores int64 `db:"lead_quality_scores" json:"lead_quality_scores"`
	SpamDetection     int64 `db:"spam_detection" json:"spam_detection"`
}

// StatsProvider reports table sizes.
type StatsProvider interface {
	Stats(ctx context.Context) (TableCounts, error)
}

// PostgresProvider runs maintenance queries through sqlx.
type PostgresProvider struct {
	DB     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresProvider connects to dsn and pings it.
func NewPostgresProvider(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		if cerr := db.Close(); cerr != nil {
			logger.Error("Failed to close postgres after ping", zap.Error(cerr))
		}
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return &PostgresProvider{DB: db, logger: logger}, nil
}

const statsQuery = `SELECT
	(SELECT COUNT(*) FROM business_contacts) AS business_contacts,
	(SELECT COUNT(*) FROM company_emails) AS company_emails,
	(SELECT COUNT(*) FROM lead_enrichment) AS lead_enrichment,
	(SELECT COUNT(*) FROM email_validation) AS email_validation,
	(SELECT COUNT(*) FROM lead_quality_scores) AS lead_quality_scores,
	(SELECT COUNT(*) FROM spam_detection) AS spam_detection`

// Stats counts the rows of every lead table in one round trip.
func (p *PostgresProvider) Stats(ctx context.Context) (TableCounts, error) {
	var counts TableCounts
	if err := p.DB.GetContext(ctx, &counts, statsQuery); err != nil {
		return TableCounts{}, fmt.Errorf("failed to count rows: %w", err)
	}
	return counts, nil
}

// Migrate applies pending schema migrations over this connection.
func (p *PostgresProvider) Migrate() error {
	return RunMigrations(p.DB.DB, p.logger)
}

// Close shuts down the connection pool.
func (p *PostgresProvider) Close() error {
	if err := p.DB.Close(); err != nil {
		return fmt.Errorf("failed to close postgres connection: %w", err)
	}
	return nil
}
