// Package postgres provides the Postgres-backed lead repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

const (
	defaultListLimit = 100
	notesSeparator   = "; "
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// querier is the subset of pgxpool.Pool the repository uses. pgxmock pools
// satisfy it as well.
type querier interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// Repository implements lead.Repository on Postgres. Each call acquires its
// own pooled connection.
type Repository struct {
	pool   querier
	logger *zap.Logger
}

var _ lead.Repository = (*Repository)(nil)

// NewRepository connects a pool using cfg.
func NewRepository(ctx context.Context, cfg Config, logger *zap.Logger) (*Repository, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewRepositoryWithPool(pool, logger)
}

// NewRepositoryWithPool wraps an existing pool (primarily for testing).
func NewRepositoryWithPool(pool querier, logger *zap.Logger) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (r *Repository) Close() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Close()
}

const companyColumns = `bc.id, bc.company_name, COALESCE(bc.email, ''), COALESCE(bc.website, ''),
	COALESCE(bc.linkedin_profile, ''), COALESCE(bc.phone, ''), COALESCE(bc.address, ''),
	COALESCE(bc.industry, ''), COALESCE(bc.source, ''), COALESCE(bc.raw_data, '{}'::jsonb), bc.scraped_at`

const emailColumns = `ce.id, ce.company_id, ce.email, COALESCE(ce.email_type, ''),
	ce.confidence_score::float8, COALESCE(ce.source_page, ''), ce.is_verified, ce.extracted_at`

const enrichmentColumns = `le.company_id, COALESCE(le.industry_category, ''), le.industry_confidence::float8,
	COALESCE(le.subcategory, ''), COALESCE(le.company_size, ''), COALESCE(le.estimated_company_size, ''),
	COALESCE(le.founded_year, ''), COALESCE(le.headquarters, ''), COALESCE(le.city, ''),
	COALESCE(le.state, ''), COALESCE(le.zip_code, ''), COALESCE(le.country, ''),
	COALESCE(le.company_description, ''), COALESCE(le.specialties, '{}'), COALESCE(le.decision_makers, '[]'::jsonb),
	COALESCE(le.enrichment_source, ''), le.enrichment_score::float8, le.enriched_at`

const scoreColumns = `lqs.company_id, lqs.overall_score::float8, lqs.domain_authority_score::float8,
	lqs.linkedin_presence_score::float8, lqs.email_quality_score::float8,
	lqs.company_info_completeness::float8, lqs.spam_score::float8, lqs.last_updated`

// InsertCompany stores a company and returns its id.
func (r *Repository) InsertCompany(ctx context.Context, c lead.Company) (int64, error) {
	raw := []byte(c.Raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO business_contacts
			(company_name, email, website, linkedin_profile, phone, address, industry, source, raw_data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		c.Name, nullable(c.Email), nullable(c.Website), nullable(c.LinkedInProfile),
		nullable(c.Phone), nullable(c.Address), nullable(c.Industry), nullable(c.Source), raw,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert company %q: %w", c.Name, err)
	}
	return id, nil
}

// GetCompany loads one company.
func (r *Repository) GetCompany(ctx context.Context, id int64) (lead.Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM business_contacts bc WHERE bc.id = $1`, id)
	c, err := scanCompany(row)
	if err != nil {
		return lead.Company{}, notFound(fmt.Sprintf("get company %d", id), err)
	}
	return c, nil
}

// DeleteCompany removes a company; dependent rows cascade.
func (r *Repository) DeleteCompany(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM business_contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete company %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete company %d: %w", id, lead.ErrNotFound)
	}
	return nil
}

// ListCompanies pages through companies, newest first.
func (r *Repository) ListCompanies(ctx context.Context, limit, offset int) ([]lead.Company, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+companyColumns+` FROM business_contacts bc ORDER BY bc.scraped_at DESC, bc.id DESC LIMIT $1 OFFSET $2`,
		orDefault(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return collect(rows, scanCompany)
}

// SearchCompanies matches term against the name and industry, ignoring case.
func (r *Repository) SearchCompanies(ctx context.Context, term string) ([]lead.Company, error) {
	pattern := "%" + term + "%"
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM business_contacts bc
		WHERE bc.company_name ILIKE $1 OR bc.industry ILIKE $1
		ORDER BY bc.scraped_at DESC, bc.id DESC`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search companies: %w", err)
	}
	return collect(rows, scanCompany)
}

// UpsertEmails stores candidates for a company. A repeated address keeps the
// higher confidence. Rows that fail are logged and skipped.
func (r *Repository) UpsertEmails(ctx context.Context, companyID int64, emails []lead.EmailCandidate) (int, error) {
	const query = `
		INSERT INTO company_emails (company_id, email, email_type, confidence_score, source_page, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id, email) DO UPDATE SET
			source_page = CASE WHEN EXCLUDED.confidence_score > company_emails.confidence_score
				THEN EXCLUDED.source_page ELSE company_emails.source_page END,
			confidence_score = GREATEST(company_emails.confidence_score, EXCLUDED.confidence_score),
			is_verified = company_emails.is_verified OR EXCLUDED.is_verified`
	saved := 0
	for _, e := range emails {
		if err := ctx.Err(); err != nil {
			return saved, fmt.Errorf("upsert emails: %w", err)
		}
		_, err := r.pool.Exec(ctx, query,
			companyID, e.Email, nullable(string(e.Type)), e.Confidence, nullable(e.SourcePage), e.Verified)
		if err != nil {
			r.logger.Warn("email upsert failed",
				zap.Int64("company_id", companyID), zap.String("email", e.Email), zap.Error(err))
			continue
		}
		saved++
	}
	return saved, nil
}

// CompanyEmails lists a company's addresses, most confident first.
func (r *Repository) CompanyEmails(ctx context.Context, companyID int64) ([]lead.CompanyEmail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+emailColumns+` FROM company_emails ce
		WHERE ce.company_id = $1
		ORDER BY ce.confidence_score DESC, ce.extracted_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("company emails %d: %w", companyID, err)
	}
	return collect(rows, scanEmail)
}

// EmailsByDomain lists addresses ending in @domain with their company name.
func (r *Repository) EmailsByDomain(ctx context.Context, domain string) ([]lead.DomainEmail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+emailColumns+`, bc.company_name
		FROM company_emails ce
		JOIN business_contacts bc ON bc.id = ce.company_id
		WHERE ce.email LIKE $1
		ORDER BY ce.confidence_score DESC, ce.id`, "%@"+strings.ToLower(domain))
	if err != nil {
		return nil, fmt.Errorf("emails by domain %q: %w", domain, err)
	}
	return collect(rows, func(row pgx.Row) (lead.DomainEmail, error) {
		var d lead.DomainEmail
		err := row.Scan(emailDest(&d.CompanyEmail, &d.CompanyName)...)
		return d, err
	})
}

// ListEmails pages through every stored address in id order.
func (r *Repository) ListEmails(ctx context.Context, limit, offset int) ([]lead.CompanyEmail, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+emailColumns+` FROM company_emails ce
		ORDER BY ce.id LIMIT $1 OFFSET $2`, orDefault(limit), max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}
	return collect(rows, scanEmail)
}

// UpdateEmailConfidence overwrites an address's confidence.
func (r *Repository) UpdateEmailConfidence(ctx context.Context, emailID int64, score float64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE company_emails SET confidence_score = $1 WHERE id = $2`, score, emailID)
	if err != nil {
		return fmt.Errorf("update email confidence %d: %w", emailID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update email confidence %d: %w", emailID, lead.ErrNotFound)
	}
	return nil
}

// MarkEmailVerified flags an address as verified.
func (r *Repository) MarkEmailVerified(ctx context.Context, emailID int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE company_emails SET is_verified = TRUE WHERE id = $1`, emailID)
	if err != nil {
		return fmt.Errorf("mark email verified %d: %w", emailID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark email verified %d: %w", emailID, lead.ErrNotFound)
	}
	return nil
}

// DeduplicateEmails keeps the most confident, most recent row per company
// and case-folded address. A nil companyID covers every company.
func (r *Repository) DeduplicateEmails(ctx context.Context, companyID *int64) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if companyID == nil {
		tag, err = r.pool.Exec(ctx, `
			DELETE FROM company_emails WHERE id NOT IN (
				SELECT DISTINCT ON (company_id, lower(email)) id FROM company_emails
				ORDER BY company_id, lower(email), confidence_score DESC, extracted_at DESC, id
			)`)
	} else {
		tag, err = r.pool.Exec(ctx, `
			DELETE FROM company_emails WHERE company_id = $1 AND id NOT IN (
				SELECT DISTINCT ON (lower(email)) id FROM company_emails
				WHERE company_id = $1
				ORDER BY lower(email), confidence_score DESC, extracted_at DESC, id
			)`, *companyID)
	}
	if err != nil {
		return 0, fmt.Errorf("deduplicate emails: %w", err)
	}
	return tag.RowsAffected(), nil
}

const invalidEmails = `FROM company_emails ce
	JOIN email_validation ev ON ce.id = ev.email_id
	WHERE ev.is_valid = FALSE AND ev.validation_score < 0.3`

// CleanupInvalidEmails counts, or with remove deletes, addresses whose
// validation failed with a score under 0.3.
func (r *Repository) CleanupInvalidEmails(ctx context.Context, remove bool) (int64, error) {
	if !remove {
		var n int64
		if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+invalidEmails).Scan(&n); err != nil {
			return 0, fmt.Errorf("count invalid emails: %w", err)
		}
		return n, nil
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM company_emails WHERE id IN (SELECT ce.id `+invalidEmails+`)`)
	if err != nil {
		return 0, fmt.Errorf("delete invalid emails: %w", err)
	}
	return tag.RowsAffected(), nil
}

// UpsertEnrichment overwrites the enrichment row for the company.
func (r *Repository) UpsertEnrichment(ctx context.Context, rec lead.EnrichmentRecord) error {
	makers, err := json.Marshal(nonNil(rec.DecisionMakers))
	if err != nil {
		return fmt.Errorf("encode decision makers: %w", err)
	}
	enrichedAt := rec.EnrichedAt
	if enrichedAt.IsZero() {
		enrichedAt = time.Now().UTC()
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO lead_enrichment (
			company_id, industry_category, industry_confidence, subcategory, company_size,
			estimated_company_size, founded_year, headquarters, city, state, zip_code, country,
			company_description, specialties, decision_makers, enrichment_source, enrichment_score, enriched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (company_id) DO UPDATE SET
			industry_category = EXCLUDED.industry_category,
			industry_confidence = EXCLUDED.industry_confidence,
			subcategory = EXCLUDED.subcategory,
			company_size = EXCLUDED.company_size,
			estimated_company_size = EXCLUDED.estimated_company_size,
			founded_year = EXCLUDED.founded_year,
			headquarters = EXCLUDED.headquarters,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			zip_code = EXCLUDED.zip_code,
			country = EXCLUDED.country,
			company_description = EXCLUDED.company_description,
			specialties = EXCLUDED.specialties,
			decision_makers = EXCLUDED.decision_makers,
			enrichment_source = EXCLUDED.enrichment_source,
			enrichment_score = EXCLUDED.enrichment_score,
			enriched_at = EXCLUDED.enriched_at`,
		rec.CompanyID, nullable(string(rec.IndustryCategory)), rec.IndustryConfidence, nullable(rec.Subcategory),
		nullable(rec.CompanySize), nullable(rec.EstimatedCompanySize), nullable(rec.FoundedYear),
		nullable(rec.Headquarters), nullable(rec.City), nullable(rec.State), nullable(rec.ZipCode),
		nullable(rec.Country), nullable(rec.Description), nonNil(rec.Specialties), makers,
		nullable(rec.Source), rec.Score, enrichedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert enrichment %d: %w", rec.CompanyID, err)
	}
	return nil
}

// GetEnrichment loads the enrichment row for a company.
func (r *Repository) GetEnrichment(ctx context.Context, companyID int64) (lead.EnrichmentRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+enrichmentColumns+` FROM lead_enrichment le WHERE le.company_id = $1`, companyID)
	rec, err := scanEnrichment(row)
	if err != nil {
		return lead.EnrichmentRecord{}, notFound(fmt.Sprintf("get enrichment %d", companyID), err)
	}
	return rec, nil
}

// SearchEnriched joins companies with their enrichment and applies the
// non-empty filters as case-insensitive substring matches.
func (r *Repository) SearchEnriched(ctx context.Context, f lead.EnrichedFilter) ([]lead.EnrichedLead, error) {
	var (
		where []string
		args  []any
	)
	param := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.Industry != "" {
		where = append(where, "le.industry_category ILIKE "+param("%"+f.Industry+"%"))
	}
	if f.CompanySize != "" {
		where = append(where, "le.estimated_company_size ILIKE "+param("%"+f.CompanySize+"%"))
	}
	if f.Location != "" {
		p := param("%" + f.Location + "%")
		where = append(where, "(le.city ILIKE "+p+" OR le.state ILIKE "+p+" OR le.headquarters ILIKE "+p+")")
	}
	var b strings.Builder
	b.WriteString(`SELECT ` + companyColumns + `, ` + enrichmentColumns + `
		FROM business_contacts bc
		JOIN lead_enrichment le ON bc.id = le.company_id`)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY le.enrichment_score DESC, bc.scraped_at DESC LIMIT " + param(orDefault(f.Limit)))

	rows, err := r.pool.Query(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search enriched: %w", err)
	}
	return collect(rows, func(row pgx.Row) (lead.EnrichedLead, error) {
		var (
			l      lead.EnrichedLead
			makers []byte
		)
		dest := append(companyDest(&l.Company), enrichmentDest(&l.Enrichment, &makers)...)
		if err := row.Scan(dest...); err != nil {
			return l, err
		}
		return l, decodeMakers(makers, &l.Enrichment)
	})
}

// UpsertValidation stores the latest validation outcome for an address.
func (r *Repository) UpsertValidation(ctx context.Context, res lead.EmailValidationResult) error {
	checked := res.LastChecked
	if checked.IsZero() {
		checked = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_validation (
			email_id, is_valid, validation_method, smtp_response, dns_check, mx_record_exists,
			validation_score, last_checked, next_check_date, validation_notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email_id) DO UPDATE SET
			is_valid = EXCLUDED.is_valid,
			validation_method = EXCLUDED.validation_method,
			smtp_response = EXCLUDED.smtp_response,
			dns_check = EXCLUDED.dns_check,
			mx_record_exists = EXCLUDED.mx_record_exists,
			validation_score = EXCLUDED.validation_score,
			last_checked = EXCLUDED.last_checked,
			next_check_date = EXCLUDED.next_check_date,
			validation_notes = EXCLUDED.validation_notes`,
		res.EmailID, res.Valid, nullable(res.Method), nullable(res.SMTPResponse), res.DNSCheck,
		res.MXRecordExists, res.Score, checked, res.NextCheckDate,
		nullable(strings.Join(res.Notes, notesSeparator)),
	)
	if err != nil {
		return fmt.Errorf("upsert validation for email %d: %w", res.EmailID, err)
	}
	return nil
}

// UpsertQualityScore stores the latest scores for a company.
func (r *Repository) UpsertQualityScore(ctx context.Context, s lead.LeadQualityScore) error {
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO lead_quality_scores (
			company_id, overall_score, domain_authority_score, linkedin_presence_score,
			email_quality_score, company_info_completeness, spam_score, last_updated
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (company_id) DO UPDATE SET
			overall_score = EXCLUDED.overall_score,
			domain_authority_score = EXCLUDED.domain_authority_score,
			linkedin_presence_score = EXCLUDED.linkedin_presence_score,
			email_quality_score = EXCLUDED.email_quality_score,
			company_info_completeness = EXCLUDED.company_info_completeness,
			spam_score = EXCLUDED.spam_score,
			last_updated = EXCLUDED.last_updated`,
		s.CompanyID, s.Overall, s.DomainAuthority, s.LinkedInPresence,
		s.EmailQuality, s.Completeness, s.Spam, updated,
	)
	if err != nil {
		return fmt.Errorf("upsert quality score %d: %w", s.CompanyID, err)
	}
	return nil
}

// HighQualityLeads returns companies whose overall score is at least minScore.
func (r *Repository) HighQualityLeads(ctx context.Context, minScore float64, limit int) ([]lead.ScoredLead, error) {
	return r.scoredLeads(ctx, "lqs.overall_score", minScore, limit)
}

// SpamFlaggedLeads returns companies whose spam score is at least minSpam.
func (r *Repository) SpamFlaggedLeads(ctx context.Context, minSpam float64, limit int) ([]lead.ScoredLead, error) {
	return r.scoredLeads(ctx, "lqs.spam_score", minSpam, limit)
}

func (r *Repository) scoredLeads(ctx context.Context, column string, threshold float64, limit int) ([]lead.ScoredLead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+`, `+scoreColumns+`
		FROM business_contacts bc
		JOIN lead_quality_scores lqs ON bc.id = lqs.company_id
		WHERE `+column+` >= $1
		ORDER BY `+column+` DESC, bc.scraped_at DESC
		LIMIT $2`, threshold, orDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("scored leads by %s: %w", column, err)
	}
	return collect(rows, func(row pgx.Row) (lead.ScoredLead, error) {
		var l lead.ScoredLead
		err := row.Scan(append(companyDest(&l.Company), scoreDest(&l.Score)...)...)
		return l, err
	})
}

func companyDest(c *lead.Company) []any {
	return []any{
		&c.ID, &c.Name, &c.Email, &c.Website, &c.LinkedInProfile, &c.Phone,
		&c.Address, &c.Industry, &c.Source, &c.Raw, &c.ScrapedAt,
	}
}

func scanCompany(row pgx.Row) (lead.Company, error) {
	var c lead.Company
	err := row.Scan(companyDest(&c)...)
	return c, err
}

func emailDest(e *lead.CompanyEmail, extra ...any) []any {
	dest := []any{
		&e.ID, &e.CompanyID, &e.Email, &e.Type, &e.Confidence, &e.SourcePage, &e.Verified, &e.ExtractedAt,
	}
	return append(dest, extra...)
}

func scanEmail(row pgx.Row) (lead.CompanyEmail, error) {
	var e lead.CompanyEmail
	err := row.Scan(emailDest(&e)...)
	return e, err
}

func enrichmentDest(rec *lead.EnrichmentRecord, makers *[]byte) []any {
	return []any{
		&rec.CompanyID, &rec.IndustryCategory, &rec.IndustryConfidence, &rec.Subcategory,
		&rec.CompanySize, &rec.EstimatedCompanySize, &rec.FoundedYear, &rec.Headquarters,
		&rec.City, &rec.State, &rec.ZipCode, &rec.Country, &rec.Description, &rec.Specialties,
		makers, &rec.Source, &rec.Score, &rec.EnrichedAt,
	}
}

func scanEnrichment(row pgx.Row) (lead.EnrichmentRecord, error) {
	var (
		rec    lead.EnrichmentRecord
		makers []byte
	)
	if err := row.Scan(enrichmentDest(&rec, &makers)...); err != nil {
		return rec, err
	}
	return rec, decodeMakers(makers, &rec)
}

func decodeMakers(raw []byte, rec *lead.EnrichmentRecord) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, &rec.DecisionMakers); err != nil {
		return fmt.Errorf("decode decision makers: %w", err)
	}
	return nil
}

func scoreDest(s *lead.LeadQualityScore) []any {
	return []any{
		&s.CompanyID, &s.Overall, &s.DomainAuthority, &s.LinkedInPresence,
		&s.EmailQuality, &s.Completeness, &s.Spam, &s.UpdatedAt,
	}
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func notFound(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, lead.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orDefault(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
