// Package memory provides an in-memory lead repository for development and
// tests. It mirrors the Postgres ordering and upsert rules.
package memory

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/JakeFAU/lead-harvester/internal/clock/system"
	"github.com/JakeFAU/lead-harvester/internal/lead"
)

const defaultListLimit = 100

type emailKey struct {
	companyID int64
	email     string
}

// Repository implements lead.Repository in process memory.
type Repository struct {
	mu    sync.RWMutex
	clock lead.Clock

	nextCompanyID int64
	nextEmailID   int64

	companies   map[int64]lead.Company
	emails      map[int64]lead.CompanyEmail
	emailIndex  map[emailKey]int64
	enrichments map[int64]lead.EnrichmentRecord
	validations map[int64]lead.EmailValidationResult
	scores      map[int64]lead.LeadQualityScore
}

var _ lead.Repository = (*Repository)(nil)

// Option customizes a Repository.
type Option func(*Repository)

// WithClock sets the timestamp source.
func WithClock(c lead.Clock) Option {
	return func(r *Repository) {
		if c != nil {
			r.clock = c
		}
	}
}

// NewRepository creates an empty Repository.
func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		clock:       system.New(),
		companies:   make(map[int64]lead.Company),
		emails:      make(map[int64]lead.CompanyEmail),
		emailIndex:  make(map[emailKey]int64),
		enrichments: make(map[int64]lead.EnrichmentRecord),
		validations: make(map[int64]lead.EmailValidationResult),
		scores:      make(map[int64]lead.LeadQualityScore),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Close is a no-op.
func (r *Repository) Close() {}

// InsertCompany stores a copy of c and returns its id.
func (r *Repository) InsertCompany(_ context.Context, c lead.Company) (int64, error) {
	if strings.TrimSpace(c.Name) == "" {
		return 0, fmt.Errorf("insert company: %w: company_name is required", lead.ErrInvalidRecord)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextCompanyID++
	c.ID = r.nextCompanyID
	if c.ScrapedAt.IsZero() {
		c.ScrapedAt = r.clock.Now()
	}
	if len(c.Raw) == 0 {
		c.Raw = json.RawMessage("{}")
	}
	r.companies[c.ID] = cloneCompany(c)
	return c.ID, nil
}

// GetCompany returns a copy of the stored company.
func (r *Repository) GetCompany(_ context.Context, id int64) (lead.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return lead.Company{}, fmt.Errorf("get company %d: %w", id, lead.ErrNotFound)
	}
	return cloneCompany(c), nil
}

// DeleteCompany removes a company and everything that references it.
func (r *Repository) DeleteCompany(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return fmt.Errorf("delete company %d: %w", id, lead.ErrNotFound)
	}
	delete(r.companies, id)
	delete(r.enrichments, id)
	delete(r.scores, id)
	for emailID, e := range r.emails {
		if e.CompanyID == id {
			r.deleteEmailLocked(emailID)
		}
	}
	return nil
}

// ListCompanies pages through companies, newest first.
func (r *Repository) ListCompanies(_ context.Context, limit, offset int) ([]lead.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedCompaniesLocked(func(lead.Company) bool { return true })
	return page(all, limit, offset), nil
}

// SearchCompanies matches term against the name and industry, ignoring case.
func (r *Repository) SearchCompanies(_ context.Context, term string) ([]lead.Company, error) {
	term = strings.ToLower(term)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedCompaniesLocked(func(c lead.Company) bool {
		return containsFold(c.Name, term) || containsFold(c.Industry, term)
	}), nil
}

func (r *Repository) sortedCompaniesLocked(keep func(lead.Company) bool) []lead.Company {
	var out []lead.Company
	for _, c := range r.companies {
		if keep(c) {
			out = append(out, cloneCompany(c))
		}
	}
	slices.SortFunc(out, func(a, b lead.Company) int {
		if c := b.ScrapedAt.Compare(a.ScrapedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

// UpsertEmails stores candidates for a company. A repeated address keeps the
// higher confidence and the page it was seen on at that confidence.
func (r *Repository) UpsertEmails(ctx context.Context, companyID int64, emails []lead.EmailCandidate) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[companyID]; !ok {
		return 0, fmt.Errorf("upsert emails for company %d: %w", companyID, lead.ErrNotFound)
	}
	saved := 0
	for _, cand := range emails {
		if err := ctx.Err(); err != nil {
			return saved, fmt.Errorf("upsert emails: %w", err)
		}
		if cand.Email == "" {
			continue
		}
		key := emailKey{companyID: companyID, email: cand.Email}
		if id, ok := r.emailIndex[key]; ok {
			existing := r.emails[id]
			if cand.Confidence > existing.Confidence {
				existing.Confidence = cand.Confidence
				existing.SourcePage = cand.SourcePage
			}
			existing.Verified = existing.Verified || cand.Verified
			r.emails[id] = existing
			saved++
			continue
		}
		r.nextEmailID++
		r.emails[r.nextEmailID] = lead.CompanyEmail{
			ID:             r.nextEmailID,
			CompanyID:      companyID,
			EmailCandidate: cand,
			ExtractedAt:    r.clock.Now(),
		}
		r.emailIndex[key] = r.nextEmailID
		saved++
	}
	return saved, nil
}

// CompanyEmails lists a company's addresses, most confident first.
func (r *Repository) CompanyEmails(_ context.Context, companyID int64) ([]lead.CompanyEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []lead.CompanyEmail
	for _, e := range r.emails {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, byConfidence)
	return out, nil
}

// EmailsByDomain lists addresses ending in @domain with their company name.
func (r *Repository) EmailsByDomain(_ context.Context, domain string) ([]lead.DomainEmail, error) {
	suffix := "@" + strings.ToLower(domain)
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []lead.CompanyEmail
	for _, e := range r.emails {
		if strings.HasSuffix(e.Email, suffix) {
			matched = append(matched, e)
		}
	}
	slices.SortFunc(matched, func(a, b lead.CompanyEmail) int {
		if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	out := make([]lead.DomainEmail, 0, len(matched))
	for _, e := range matched {
		out = append(out, lead.DomainEmail{CompanyEmail: e, CompanyName: r.companies[e.CompanyID].Name})
	}
	return out, nil
}

// ListEmails pages through every stored address in id order.
func (r *Repository) ListEmails(_ context.Context, limit, offset int) ([]lead.CompanyEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]lead.CompanyEmail, 0, len(r.emails))
	for _, e := range r.emails {
		all = append(all, e)
	}
	slices.SortFunc(all, func(a, b lead.CompanyEmail) int { return cmp.Compare(a.ID, b.ID) })
	return page(all, limit, offset), nil
}

// UpdateEmailConfidence overwrites an address's confidence.
func (r *Repository) UpdateEmailConfidence(_ context.Context, emailID int64, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[emailID]
	if !ok {
		return fmt.Errorf("update email confidence %d: %w", emailID, lead.ErrNotFound)
	}
	e.Confidence = score
	r.emails[emailID] = e
	return nil
}

// MarkEmailVerified flags an address as verified.
func (r *Repository) MarkEmailVerified(_ context.Context, emailID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emails[emailID]
	if !ok {
		return fmt.Errorf("mark email verified %d: %w", emailID, lead.ErrNotFound)
	}
	e.Verified = true
	r.emails[emailID] = e
	return nil
}

// DeduplicateEmails keeps the most confident, most recent row per company
// and case-folded address. A nil companyID covers every company.
func (r *Repository) DeduplicateEmails(_ context.Context, companyID *int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	best := make(map[emailKey]lead.CompanyEmail)
	for _, e := range r.emails {
		if companyID != nil && e.CompanyID != *companyID {
			continue
		}
		key := emailKey{companyID: e.CompanyID, email: strings.ToLower(e.Email)}
		if cur, ok := best[key]; !ok || byConfidence(e, cur) < 0 {
			best[key] = e
		}
	}
	var removed int64
	for id, e := range r.emails {
		if companyID != nil && e.CompanyID != *companyID {
			continue
		}
		key := emailKey{companyID: e.CompanyID, email: strings.ToLower(e.Email)}
		if best[key].ID != id {
			r.deleteEmailLocked(id)
			removed++
		}
	}
	return removed, nil
}

// CleanupInvalidEmails counts, or with remove deletes, addresses whose
// validation failed with a score under 0.3.
func (r *Repository) CleanupInvalidEmails(_ context.Context, remove bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for emailID, v := range r.validations {
		if v.Valid || v.Score >= 0.3 {
			continue
		}
		if _, ok := r.emails[emailID]; !ok {
			continue
		}
		n++
		if remove {
			r.deleteEmailLocked(emailID)
		}
	}
	return n, nil
}

func (r *Repository) deleteEmailLocked(id int64) {
	e, ok := r.emails[id]
	if !ok {
		return
	}
	delete(r.emails, id)
	delete(r.validations, id)
	key := emailKey{companyID: e.CompanyID, email: e.Email}
	if r.emailIndex[key] == id {
		delete(r.emailIndex, key)
	}
}

// UpsertEnrichment overwrites the enrichment record for the company.
func (r *Repository) UpsertEnrichment(_ context.Context, rec lead.EnrichmentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[rec.CompanyID]; !ok {
		return fmt.Errorf("upsert enrichment %d: %w", rec.CompanyID, lead.ErrNotFound)
	}
	if rec.EnrichedAt.IsZero() {
		rec.EnrichedAt = r.clock.Now()
	}
	r.enrichments[rec.CompanyID] = cloneEnrichment(rec)
	return nil
}

// GetEnrichment returns a copy of the company's enrichment record.
func (r *Repository) GetEnrichment(_ context.Context, companyID int64) (lead.EnrichmentRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.enrichments[companyID]
	if !ok {
		return lead.EnrichmentRecord{}, fmt.Errorf("get enrichment %d: %w", companyID, lead.ErrNotFound)
	}
	return cloneEnrichment(rec), nil
}

// SearchEnriched applies the non-empty filters as case-insensitive
// substring matches.
func (r *Repository) SearchEnriched(_ context.Context, f lead.EnrichedFilter) ([]lead.EnrichedLead, error) {
	industry := strings.ToLower(f.Industry)
	size := strings.ToLower(f.CompanySize)
	location := strings.ToLower(f.Location)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []lead.EnrichedLead
	for id, rec := range r.enrichments {
		c, ok := r.companies[id]
		if !ok {
			continue
		}
		if industry != "" && !containsFold(string(rec.IndustryCategory), industry) {
			continue
		}
		if size != "" && !containsFold(rec.EstimatedCompanySize, size) {
			continue
		}
		if location != "" && !containsFold(rec.City, location) &&
			!containsFold(rec.State, location) && !containsFold(rec.Headquarters, location) {
			continue
		}
		out = append(out, lead.EnrichedLead{Company: cloneCompany(c), Enrichment: cloneEnrichment(rec)})
	}
	slices.SortFunc(out, func(a, b lead.EnrichedLead) int {
		if c := cmp.Compare(b.Enrichment.Score, a.Enrichment.Score); c != 0 {
			return c
		}
		return b.ScrapedAt.Compare(a.ScrapedAt)
	})
	return page(out, f.Limit, 0), nil
}

// UpsertValidation stores the latest validation outcome for an address.
func (r *Repository) UpsertValidation(_ context.Context, res lead.EmailValidationResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.emails[res.EmailID]; !ok {
		return fmt.Errorf("upsert validation for email %d: %w", res.EmailID, lead.ErrNotFound)
	}
	if res.LastChecked.IsZero() {
		res.LastChecked = r.clock.Now()
	}
	res.Notes = slices.Clone(res.Notes)
	r.validations[res.EmailID] = res
	return nil
}

// UpsertQualityScore stores the latest scores for a company.
func (r *Repository) UpsertQualityScore(_ context.Context, s lead.LeadQualityScore) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[s.CompanyID]; !ok {
		return fmt.Errorf("upsert quality score %d: %w", s.CompanyID, lead.ErrNotFound)
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = r.clock.Now()
	}
	r.scores[s.CompanyID] = s
	return nil
}

// HighQualityLeads returns companies whose overall score is at least minScore.
func (r *Repository) HighQualityLeads(_ context.Context, minScore float64, limit int) ([]lead.ScoredLead, error) {
	return r.scoredLeads(func(s lead.LeadQualityScore) float64 { return s.Overall }, minScore, limit), nil
}

// SpamFlaggedLeads returns companies whose spam score is at least minSpam.
func (r *Repository) SpamFlaggedLeads(_ context.Context, minSpam float64, limit int) ([]lead.ScoredLead, error) {
	return r.scoredLeads(func(s lead.LeadQualityScore) float64 { return s.Spam }, minSpam, limit), nil
}

func (r *Repository) scoredLeads(metric func(lead.LeadQualityScore) float64, threshold float64, limit int) []lead.ScoredLead {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []lead.ScoredLead
	for id, s := range r.scores {
		c, ok := r.companies[id]
		if !ok || metric(s) < threshold {
			continue
		}
		out = append(out, lead.ScoredLead{Company: cloneCompany(c), Score: s})
	}
	slices.SortFunc(out, func(a, b lead.ScoredLead) int {
		if c := cmp.Compare(metric(b.Score), metric(a.Score)); c != 0 {
			return c
		}
		return b.ScrapedAt.Compare(a.ScrapedAt)
	})
	return page(out, limit, 0)
}

// byConfidence orders the better row first: higher confidence, then the
// more recent extraction, then the lower id.
func byConfidence(a, b lead.CompanyEmail) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := b.ExtractedAt.Compare(a.ExtractedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func page[T any](all []T, limit, offset int) []T {
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset = max(offset, 0)
	if offset >= len(all) {
		return nil
	}
	return all[offset:min(offset+limit, len(all))]
}

func containsFold(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}

func cloneCompany(c lead.Company) lead.Company {
	c.Raw = append(json.RawMessage(nil), c.Raw...)
	return c
}

func cloneEnrichment(rec lead.EnrichmentRecord) lead.EnrichmentRecord {
	rec.Specialties = slices.Clone(rec.Specialties)
	rec.DecisionMakers = slices.Clone(rec.DecisionMakers)
	if rec.IndustryConfidence != nil {
		v := *rec.IndustryConfidence
		rec.IndustryConfidence = &v
	}
	return rec
}
