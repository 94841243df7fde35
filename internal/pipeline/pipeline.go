// Package pipeline runs raw company records through enhancement, enrichment,
// email extraction, persistence and scoring.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

// DefaultBatchSize is the page size used by ValidateAll.
const DefaultBatchSize = 100

// EmailExtractor scans a company website for candidate addresses.
type EmailExtractor interface {
	Company(ctx context.Context, fetcher lead.Fetcher, website string) ([]lead.EmailCandidate, error)
}

// LeadEnricher fills and profiles raw records.
type LeadEnricher interface {
	Enhance(ctx context.Context, rec lead.RawRecord) lead.RawRecord
	Enrich(ctx context.Context, rec lead.RawRecord) lead.EnrichmentRecord
}

// EmailValidator checks one address.
type EmailValidator interface {
	Validate(ctx context.Context, email string) lead.EmailValidationResult
}

// QualityScorer rates one stored company.
type QualityScorer interface {
	Score(ctx context.Context, c lead.Company, emails []lead.CompanyEmail) lead.LeadQualityScore
}

// Components groups the stage implementations.
type Components struct {
	Extractor EmailExtractor
	Enricher  LeadEnricher
	Validator EmailValidator
	Scorer    QualityScorer
}

// Config toggles stages and sizes batch validation.
type Config struct {
	SkipEnhance    bool
	SkipEmails     bool
	SkipEnrichment bool
	SkipScoring    bool
	BatchSize      int
}

// Stats summarizes one run.
type Stats struct {
	RunID               string    `json:"run_id"`
	TotalCompanies      int       `json:"total_companies"`
	CompaniesSaved      int       `json:"companies_saved"`
	TotalEmailsFound    int       `json:"total_emails_found"`
	EmailsSaved         int       `json:"emails_saved"`
	CompaniesEnriched   int       `json:"companies_enriched"`
	DecisionMakersFound int       `json:"decision_makers_found"`
	QualityScored       int       `json:"quality_scored"`
	Errors              int       `json:"errors"`
	Start               time.Time `json:"start_time"`
	End                 time.Time `json:"end_time"`
}

// Duration is the wall time of the run.
func (s Stats) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Pipeline drives the stages sequentially.
type Pipeline struct {
	repo    lead.Repository
	fetcher lead.Fetcher
	stages  Components
	pacer   lead.Pacer
	clock   lead.Clock
	ids     lead.IDGenerator
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Pipeline. pacer spaces out records during batch
// validation and may be nil.
func New(
	repo lead.Repository,
	fetcher lead.Fetcher,
	stages Components,
	pacer lead.Pacer,
	clock lead.Clock,
	ids lead.IDGenerator,
	cfg Config,
	logger *zap.Logger,
) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Pipeline{
		repo:    repo,
		fetcher: fetcher,
		stages:  stages,
		pacer:   pacer,
		clock:   clock,
		ids:     ids,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run processes every record. Per-record failures are counted and logged;
// only context cancellation stops the run early.
func (p *Pipeline) Run(ctx context.Context, records []lead.RawRecord) (Stats, error) {
	stats := Stats{TotalCompanies: len(records), Start: p.clock.Now()}
	if id, err := p.ids.NewID(); err == nil {
		stats.RunID = id
	} else {
		p.logger.Warn("run id generation failed", zap.Error(err))
	}
	logger := p.logger.With(zap.String("run_id", stats.RunID))
	logger.Info("pipeline started", zap.Int("companies", len(records)))

	var runErr error
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("pipeline interrupted after %d of %d companies: %w", i, len(records), err)
			break
		}
		p.process(ctx, logger, rec, &stats)
	}

	stats.End = p.clock.Now()
	logger.Info("pipeline finished",
		zap.Int("total_companies", stats.TotalCompanies),
		zap.Int("companies_saved", stats.CompaniesSaved),
		zap.Int("total_emails_found", stats.TotalEmailsFound),
		zap.Int("emails_saved", stats.EmailsSaved),
		zap.Int("companies_enriched", stats.CompaniesEnriched),
		zap.Int("decision_makers_found", stats.DecisionMakersFound),
		zap.Int("quality_scored", stats.QualityScored),
		zap.Int("errors", stats.Errors),
		zap.Duration("duration", stats.Duration()),
	)
	return stats, runErr
}

func (p *Pipeline) process(ctx context.Context, logger *zap.Logger, rec lead.RawRecord, stats *Stats) {
	if err := rec.Validate(); err != nil {
		stats.Errors++
		metrics.ObserveCompany("skipped")
		logger.Warn("record skipped", zap.Error(err))
		return
	}
	logger = logger.With(zap.String("company", rec.CompanyName))

	if !p.cfg.SkipEnhance && p.stages.Enricher != nil {
		rec = p.stages.Enricher.Enhance(ctx, rec)
	}

	var enrichment *lead.EnrichmentRecord
	if !p.cfg.SkipEnrichment && p.stages.Enricher != nil {
		e := p.stages.Enricher.Enrich(ctx, rec)
		enrichment = &e
		stats.CompaniesEnriched++
		stats.DecisionMakersFound += len(e.DecisionMakers)
	}

	var emails []lead.EmailCandidate
	if !p.cfg.SkipEmails && p.stages.Extractor != nil && rec.Website != "" {
		found, err := p.stages.Extractor.Company(ctx, p.fetcher, rec.Website)
		if err != nil {
			stats.Errors++
			logger.Warn("email extraction failed", zap.String("website", rec.Website), zap.Error(err))
		}
		emails = found
		stats.TotalEmailsFound += len(found)
	}

	company := rec.Company()
	company.ScrapedAt = p.clock.Now()
	id, err := p.repo.InsertCompany(ctx, company)
	if err != nil {
		stats.Errors++
		metrics.ObserveCompany("error")
		logger.Error("company save failed", zap.Error(err))
		return
	}
	stats.CompaniesSaved++
	metrics.ObserveCompany("saved")
	logger = logger.With(zap.Int64("company_id", id))

	if len(emails) > 0 {
		n, err := p.repo.UpsertEmails(ctx, id, emails)
		if err != nil {
			stats.Errors++
			logger.Error("email save failed", zap.Error(err))
		}
		stats.EmailsSaved += n
	}

	if enrichment != nil {
		enrichment.CompanyID = id
		if err := p.repo.UpsertEnrichment(ctx, *enrichment); err != nil {
			stats.Errors++
			logger.Error("enrichment save failed", zap.Error(err))
		}
	}

	if !p.cfg.SkipScoring && p.stages.Scorer != nil {
		if _, err := p.ScoreCompany(ctx, id); err != nil {
			stats.Errors++
			logger.Error("quality scoring failed", zap.Error(err))
			return
		}
		stats.QualityScored++
	}
	logger.Debug("company processed", zap.Int("emails", len(emails)))
}

// ScoreCompany rescores a stored company from its current emails and
// persists the result.
func (p *Pipeline) ScoreCompany(ctx context.Context, companyID int64) (lead.LeadQualityScore, error) {
	if p.stages.Scorer == nil {
		return lead.LeadQualityScore{}, fmt.Errorf("score company %d: no scorer configured", companyID)
	}
	company, err := p.repo.GetCompany(ctx, companyID)
	if err != nil {
		return lead.LeadQualityScore{}, fmt.Errorf("score company: %w", err)
	}
	emails, err := p.repo.CompanyEmails(ctx, companyID)
	if err != nil {
		return lead.LeadQualityScore{}, fmt.Errorf("score company: %w", err)
	}
	score := p.stages.Scorer.Score(ctx, company, emails)
	score.CompanyID = companyID
	if err := p.repo.UpsertQualityScore(ctx, score); err != nil {
		return lead.LeadQualityScore{}, fmt.Errorf("score company: %w", err)
	}
	return score, nil
}

// ValidateAll validates every stored address in id order, one page at a
// time. Each result is stored, its score becomes the address confidence
// (capped at 1) and valid addresses are marked verified. It returns how
// many addresses were processed and how many were valid.
func (p *Pipeline) ValidateAll(ctx context.Context) (processed, valid int, err error) {
	if p.stages.Validator == nil {
		return 0, 0, fmt.Errorf("validate all: no validator configured")
	}
	for offset := 0; ; offset += p.cfg.BatchSize {
		batch, err := p.repo.ListEmails(ctx, p.cfg.BatchSize, offset)
		if err != nil {
			return processed, valid, fmt.Errorf("validate all: %w", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, email := range batch {
			if p.pacer != nil {
				if err := p.pacer.Wait(ctx); err != nil {
					return processed, valid, fmt.Errorf("validate all: %w", err)
				}
			}
			ok, err := p.validateOne(ctx, email)
			if err != nil {
				p.logger.Warn("email validation failed", zap.String("email", email.Email), zap.Error(err))
				continue
			}
			processed++
			if ok {
				valid++
			}
		}
		p.logger.Info("validation progress", zap.Int("processed", processed), zap.Int("valid", valid))
		if len(batch) < p.cfg.BatchSize {
			break
		}
	}
	p.logger.Info("email validation completed", zap.Int("processed", processed), zap.Int("valid", valid))
	return processed, valid, nil
}

func (p *Pipeline) validateOne(ctx context.Context, email lead.CompanyEmail) (bool, error) {
	res := p.stages.Validator.Validate(ctx, email.Email)
	res.EmailID = email.ID
	if err := p.repo.UpsertValidation(ctx, res); err != nil {
		return false, err
	}
	if err := p.repo.UpdateEmailConfidence(ctx, email.ID, min(res.Score, 1)); err != nil {
		return false, err
	}
	if !res.Valid {
		return false, nil
	}
	if err := p.repo.MarkEmailVerified(ctx, email.ID); err != nil {
		return false, err
	}
	return true, nil
}
