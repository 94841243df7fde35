package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

var companyCols = []string{
	"id", "company_name", "email", "website", "linkedin_profile", "phone",
	"address", "industry", "source", "raw_data", "scraped_at",
}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo, err := NewRepositoryWithPool(mock, nil)
	require.NoError(t, err)
	return repo, mock
}

func strPtr(s string) *string { return &s }

func TestNewRepositoryRequiresDSN(t *testing.T) {
	t.Parallel()

	_, err := NewRepository(context.Background(), Config{}, nil)
	require.Error(t, err)

	_, err = NewRepositoryWithPool(nil, nil)
	require.Error(t, err)
}

func TestInsertCompanyMapsEmptyToNull(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	c := lead.Company{
		Name:    "Acme",
		Website: "https://acme.com",
		Source:  "gmaps",
		Raw:     json.RawMessage(`{"company_name":"Acme"}`),
	}
	mock.ExpectQuery("INSERT INTO business_contacts").
		WithArgs("Acme", (*string)(nil), strPtr("https://acme.com"), (*string)(nil),
			(*string)(nil), (*string)(nil), (*string)(nil), strPtr("gmaps"), []byte(`{"company_name":"Acme"}`)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.InsertCompany(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompany(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	scraped := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM business_contacts bc WHERE bc.id").
		WithArgs(int64(3)).
		WillReturnRows(pgxmock.NewRows(companyCols).AddRow(
			int64(3), "Acme", "info@acme.com", "https://acme.com", "", "", "1 Main St",
			"technology", "gmaps", json.RawMessage(`{}`), scraped,
		))

	c, err := repo.GetCompany(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "info@acme.com", c.Email)
	assert.Equal(t, "1 Main St", c.Address)
	assert.Equal(t, scraped, c.ScrapedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCompanyNotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM business_contacts bc WHERE bc.id").
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetCompany(context.Background(), 9)
	require.ErrorIs(t, err, lead.ErrNotFound)
}

func TestDeleteCompanyNotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM business_contacts").
		WithArgs(int64(4)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.DeleteCompany(context.Background(), 4)
	require.ErrorIs(t, err, lead.ErrNotFound)
}

func TestUpsertEmailsSkipsFailedRows(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	emails := []lead.EmailCandidate{
		{Email: "info@acme.com", Type: lead.EmailTypeGeneral, Confidence: 1, SourcePage: "https://acme.com", Verified: true},
		{Email: "sales@acme.com", Type: lead.EmailTypeSales, Confidence: 0.9},
		{Email: "hr@acme.com", Type: lead.EmailTypeHR, Confidence: 0.8},
	}
	mock.ExpectExec("GREATEST").
		WithArgs(int64(1), "info@acme.com", strPtr("general"), 1.0, strPtr("https://acme.com"), true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("GREATEST").
		WithArgs(int64(1), "sales@acme.com", strPtr("sales"), 0.9, (*string)(nil), false).
		WillReturnError(errors.New("constraint"))
	mock.ExpectExec("GREATEST").
		WithArgs(int64(1), "hr@acme.com", strPtr("hr"), 0.8, (*string)(nil), false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n, err := repo.UpsertEmails(context.Background(), 1, emails)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyEmailsOrdering(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "company_id", "email", "email_type", "confidence_score", "source_page", "is_verified", "extracted_at"}
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY ce.confidence_score DESC, ce.extracted_at DESC")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(10), int64(1), "info@acme.com", lead.EmailTypeGeneral, 1.0, "", true, now).
			AddRow(int64(11), int64(1), "jobs@acme.com", lead.EmailTypeHR, 0.6, "", false, now))

	got, err := repo.CompanyEmails(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "info@acme.com", got[0].Email)
	assert.Equal(t, lead.EmailTypeHR, got[1].Type)
	assert.True(t, got[0].Verified)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEmailsByDomainUsesSuffixPattern(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "company_id", "email", "email_type", "confidence_score", "source_page", "is_verified", "extracted_at", "company_name"}
	mock.ExpectQuery("WHERE ce.email LIKE").
		WithArgs("%@acme.com").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(10), int64(1), "info@acme.com", lead.EmailTypeGeneral, 1.0, "", true, now, "Acme"))

	got, err := repo.EmailsByDomain(context.Background(), "ACME.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Acme", got[0].CompanyName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeduplicateEmailsScopedToCompany(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	id := int64(5)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM company_emails WHERE company_id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DISTINCT ON \\(company_id, lower\\(email\\)\\)").
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := repo.DeduplicateEmails(context.Background(), &id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.DeduplicateEmails(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupInvalidEmails(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectExec("DELETE FROM company_emails WHERE id IN").
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.CleanupInvalidEmails(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = repo.CleanupInvalidEmails(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmailConfidenceAndVerify(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE company_emails SET confidence_score").
		WithArgs(0.8, int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE company_emails SET is_verified").
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.UpdateEmailConfidence(context.Background(), 2, 0.8))
	require.ErrorIs(t, repo.MarkEmailVerified(context.Background(), 3), lead.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertValidationJoinsNotes(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	checked := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	res := lead.EmailValidationResult{
		EmailID:      8,
		Valid:        true,
		Method:       "comprehensive",
		SMTPResponse: "SMTP: Email exists",
		DNSCheck:     true,
		Score:        1.3,
		Notes:        []string{"Format: Valid", "DNS MX: Valid"},
		LastChecked:  checked,
	}
	mock.ExpectExec("INSERT INTO email_validation").
		WithArgs(int64(8), true, strPtr("comprehensive"), strPtr("SMTP: Email exists"), true, false,
			1.3, checked, (*time.Time)(nil), strPtr("Format: Valid; DNS MX: Valid")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertValidation(context.Background(), res))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertEnrichmentEncodesDecisionMakers(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	conf := 0.6
	enriched := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := lead.EnrichmentRecord{
		CompanyID:          1,
		IndustryCategory:   lead.IndustryTechnology,
		IndustryConfidence: &conf,
		DecisionMakers:     []lead.DecisionMaker{{Name: "Jane", JobTitle: "CEO", Type: lead.RoleExecutive}},
		Source:             lead.EnrichmentSource,
		Score:              0.5,
		EnrichedAt:         enriched,
	}
	makers, err := json.Marshal(rec.DecisionMakers)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO lead_enrichment").
		WithArgs(int64(1), strPtr("technology"), &conf, (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil),
			(*string)(nil), []string{}, makers, strPtr(lead.EnrichmentSource), 0.5, enriched).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertEnrichment(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEnrichmentNotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("FROM lead_enrichment le WHERE").
		WithArgs(int64(1)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetEnrichment(context.Background(), 1)
	require.ErrorIs(t, err, lead.ErrNotFound)
}

func TestSearchEnrichedBuildsFilters(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("le.industry_category ILIKE $1 AND (le.city ILIKE $2 OR le.state ILIKE $2 OR le.headquarters ILIKE $2)")).
		WithArgs("%tech%", "%CA%", 10).
		WillReturnRows(pgxmock.NewRows(companyCols))

	got, err := repo.SearchEnriched(context.Background(), lead.EnrichedFilter{
		Industry: "tech",
		Location: "CA",
		Limit:    10,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHighQualityLeadsDefaultsLimit(t *testing.T) {
	t.Parallel()
	repo, mock := newMockRepo(t)

	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := append(append([]string{}, companyCols...),
		"company_id", "overall_score", "domain_authority_score", "linkedin_presence_score",
		"email_quality_score", "company_info_completeness", "spam_score", "last_updated")
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY lqs.overall_score DESC")).
		WithArgs(0.7, defaultListLimit).
		WillReturnRows(pgxmock.NewRows(cols).AddRow(
			int64(1), "Acme", "", "", "", "", "", "", "", json.RawMessage(`{}`), now,
			int64(1), 0.9, 0.25, 0.2, 0.25, 0.2, 0.0, now,
		))

	got, err := repo.HighQualityLeads(context.Background(), 0.7, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.InDelta(t, 0.9, got[0].Score.Overall, 1e-9)
	assert.Equal(t, "Acme", got[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}
