package lead

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by the stores and the pipeline.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidRecord = errors.New("invalid record")
)

// Fetcher retrieves the body of a page. Implementations fail closed: after
// exhausting their retries they return an error, never a partial body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Pacer enforces the fixed delay between consecutive outbound requests.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Repository is the persistence facade. There is one implementation per
// storage backend, chosen at construction time.
type Repository interface {
	InsertCompany(ctx context.Context, company Company) (int64, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	ListCompanies(ctx context.Context, limit, offset int) ([]Company, error)
	SearchCompanies(ctx context.Context, term string) ([]Company, error)

	UpsertEmails(ctx context.Context, companyID int64, emails []EmailCandidate) (int, error)
	CompanyEmails(ctx context.Context, companyID int64) ([]CompanyEmail, error)
	EmailsByDomain(ctx context.Context, domain string) ([]DomainEmail, error)
	ListEmails(ctx context.Context, limit, offset int) ([]CompanyEmail, error)
	UpdateEmailConfidence(ctx context.Context, emailID int64, score float64) error
	MarkEmailVerified(ctx context.Context, emailID int64) error
	DeduplicateEmails(ctx context.Context, companyID *int64) (int64, error)
	CleanupInvalidEmails(ctx context.Context, remove bool) (int64, error)

	UpsertEnrichment(ctx context.Context, record EnrichmentRecord) error
	GetEnrichment(ctx context.Context, companyID int64) (EnrichmentRecord, error)
	SearchEnriched(ctx context.Context, filter EnrichedFilter) ([]EnrichedLead, error)

	UpsertValidation(ctx context.Context, result EmailValidationResult) error

	UpsertQualityScore(ctx context.Context, score LeadQualityScore) error
	HighQualityLeads(ctx context.Context, minScore float64, limit int) ([]ScoredLead, error)
	SpamFlaggedLeads(ctx context.Context, minSpam float64, limit int) ([]ScoredLead, error)

	Close()
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces run identifiers.
type IDGenerator interface {
	NewID() (string, error)
}
