package enrich

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

const websitePage = `<html><head><title>Acme Robotics</title>
<meta name="description" content="Robots   for
 everyone"></head>
<body>
<h1>Welcome</h1>
<div class="contact-info"><p>Call (650) 253-0000</p><p>100 Main Street, Austin, TX 78701</p></div>
<p>Write to hello@acme.com</p>
</body></html>`

const linkedinPage = `<html><head><title>Acme Robotics | LinkedIn</title></head><body>
<a href="https://www.linkedin.com/company/acme">Acme</a>
<a href="https://acme.com">Website</a>
<section class="about-us"><p>We build   robots.</p></section>
<div class="org-industry">Robotics Engineering</div>
<div class="company-size">51-200 employees</div>
<div class="org-headquarters">Austin, TX 78701</div>
<div><span>Founded in 2015</span></div>
<span class="specialty">Automation</span><span class="specialty">AI</span>
</body></html>`

const teamPage = `<html><body>
<div class="team-member"><h3>Jane Roe</h3><p class="job-title">Chief Executive Officer</p>
<a href="mailto:Jane@Acme.com?subject=hi">Email</a><a href="https://linkedin.com/in/jane">in</a>
<p class="bio">Jane   founded Acme.</p></div>
<div class="team-member"><p class="job-title">No name</p></div>
<div class="team-member"><h3>Bob Smith</h3><span class="role">VP Sales</span><a href="mailto:bob@gmail.com">b</a></div>
</body></html>`

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (m *mapFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.calls = append(m.calls, url)
	body, ok := m.pages[url]
	if !ok {
		return nil, errors.New("404")
	}
	return []byte(body), nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func parse(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestParseWebsite(t *testing.T) {
	t.Parallel()

	p := ParseWebsite(parse(t, websitePage))
	assert.Equal(t, "Acme Robotics", p.Name)
	assert.Equal(t, "hello@acme.com", p.Email)
	assert.Equal(t, "6502530000", p.Phone)
	assert.Equal(t, "100 Main Street", p.Address)
	assert.Equal(t, "Robots for everyone", p.CompanyDescription)
	assert.Equal(t, "100 Main Street, Austin, TX 78701", p.Headquarters)
}

func TestParseWebsiteAboutSections(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("We make industrial robots. ", 3)
	page := `<html><head><meta name="description" content="meta text"></head><body>
<section class="about">` + long + `</section>
<div class="mission">short</div>
<div class="our-story">` + long + `</div>
<div class="company-values">` + long + `</div>
</body></html>`
	p := ParseWebsite(parse(t, page))
	want := strings.TrimSpace(long) + " " + strings.TrimSpace(long)
	assert.Equal(t, want, p.CompanyDescription, "first two meaningful sections replace the meta description")
}

func TestParseLinkedIn(t *testing.T) {
	t.Parallel()

	p := ParseLinkedIn(parse(t, linkedinPage))
	assert.Equal(t, "Acme Robotics", p.Name)
	assert.Equal(t, "We build robots.", p.Description)
	assert.Equal(t, "Robotics Engineering", p.Industry)
	assert.Equal(t, "51-200 employees", p.CompanySize)
	assert.Equal(t, "Austin, TX 78701", p.Headquarters)
	assert.Equal(t, "https://acme.com", p.Website)
	assert.Equal(t, "2015", p.FoundedYear)
	assert.Equal(t, []string{"Automation"}, p.Specialties)
	assert.Empty(t, p.Email)
}

func TestEnhanceFillsOnlyEmptyFields(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{pages: map[string]string{
		"https://acme.com":                     websitePage,
		"https://www.linkedin.com/company/acme": linkedinPage,
	}}
	e := New(fetcher)
	rec := e.Enhance(context.Background(), lead.RawRecord{
		CompanyName:     "Acme",
		Website:         "https://acme.com",
		LinkedInProfile: "https://www.linkedin.com/company/acme",
		Industry:        "Robots",
	})

	assert.Equal(t, "Acme", rec.CompanyName)
	assert.Equal(t, "Robots", rec.Industry)
	assert.Equal(t, "hello@acme.com", rec.Email)
	assert.Equal(t, "+16502530000", rec.Phone)
	assert.Equal(t, "100 Main Street", rec.Address)
	assert.Equal(t, "Robots for everyone", rec.CompanyDescription, "website wins over linkedin")
	assert.Equal(t, "We build robots.", rec.Description)
	assert.Equal(t, "51-200 employees", rec.CompanySize)
	assert.Equal(t, "100 Main Street, Austin, TX 78701", rec.Headquarters)
	assert.Equal(t, "2015", rec.FoundedYear)
	assert.Equal(t, lead.StringList{"Automation"}, rec.Specialties)
	assert.Len(t, fetcher.calls, 2)
}

func TestEnhanceSurvivesFetchFailure(t *testing.T) {
	t.Parallel()

	in := lead.RawRecord{CompanyName: "Acme", Website: "https://down.example", Phone: "555-1234"}
	got := New(&mapFetcher{}).Enhance(context.Background(), in)
	assert.Equal(t, in.CompanyName, got.CompanyName)
	assert.Equal(t, "555-1234", got.Phone)
}

func TestDecisionMakersStopsAtFirstTeamPage(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{pages: map[string]string{
		"https://acme.com/about/team": teamPage,
		"https://acme.com/leadership": teamPage,
	}}
	got := New(fetcher).DecisionMakers(context.Background(), "https://acme.com")
	require.Len(t, got, 2)

	assert.Equal(t, lead.DecisionMaker{
		Name:            "Jane Roe",
		JobTitle:        "Chief Executive Officer",
		Type:            lead.RoleExecutive,
		Email:           "jane@acme.com",
		LinkedInProfile: "https://linkedin.com/in/jane",
		Bio:             "Jane founded Acme.",
	}, got[0])
	assert.Equal(t, "Bob Smith", got[1].Name)
	assert.Equal(t, lead.RoleSales, got[1].Type)
	assert.Empty(t, got[1].Email, "personal addresses are dropped")
	assert.Equal(t, []string{"https://acme.com/team", "https://acme.com/about/team"}, fetcher.calls)
}

func TestDecisionMakersNoTeamPage(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{}
	assert.Nil(t, New(fetcher).DecisionMakers(context.Background(), "https://acme.com"))
	assert.Len(t, fetcher.calls, len(TeamPaths))
	assert.Nil(t, New(fetcher).DecisionMakers(context.Background(), ""))
}

func TestGenericDecisionMakers(t *testing.T) {
	t.Parallel()

	solo := GenericDecisionMakers("")
	require.Len(t, solo, 1)
	assert.Equal(t, "CEO/Founder", solo[0].Name)
	assert.Empty(t, solo[0].Email)
	assert.True(t, solo[0].Generic)

	both := GenericDecisionMakers("https://www.Acme.com/home")
	require.Len(t, both, 2)
	assert.Equal(t, "ceo@acme.com", both[0].Email)
	assert.Equal(t, "marketing@acme.com", both[1].Email)
	assert.Equal(t, lead.RoleMarketing, both[1].Type)
	assert.True(t, both[1].Generic)
}

func TestEnrich(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	e := New(&mapFetcher{}, WithClock(fixedClock{now}))
	got := e.Enrich(context.Background(), lead.RawRecord{
		CompanyName:  "DeepMind Labs",
		Description:  "machine learning platform for enterprises",
		CompanySize:  "11-50 employees",
		Headquarters: "Austin, TX 78701",
		FoundedYear:  "2019",
	})

	assert.Equal(t, lead.IndustryTechnology, got.IndustryCategory)
	require.NotNil(t, got.IndustryConfidence)
	assert.InDelta(t, 0.2, *got.IndustryConfidence, 1e-9)
	assert.Equal(t, "AI/ML", got.Subcategory)
	assert.Equal(t, lead.Size11to50, got.EstimatedCompanySize)
	assert.Equal(t, "Austin", got.City)
	assert.Equal(t, "TX", got.State)
	assert.Equal(t, "78701", got.ZipCode)
	assert.Equal(t, lead.DefaultCountry, got.Country)
	assert.Equal(t, "machine learning platform for enterprises", got.Description)
	require.Len(t, got.DecisionMakers, 1)
	assert.True(t, got.DecisionMakers[0].Generic)
	assert.Equal(t, lead.EnrichmentSource, got.Source)
	assert.InDelta(t, 1.0, got.Score, 1e-9)
	assert.Equal(t, now, got.EnrichedAt)
}

func TestEnrichSparseRecord(t *testing.T) {
	t.Parallel()

	got := New(&mapFetcher{}).Enrich(context.Background(), lead.RawRecord{CompanyName: "Zzz"})
	assert.Empty(t, got.IndustryCategory)
	assert.Nil(t, got.IndustryConfidence)
	assert.Equal(t, lead.SizeUnknown, got.EstimatedCompanySize)
	assert.InDelta(t, 0.3, got.Score, 1e-9, "the generic decision maker still counts")
}

func TestEnrichDescriptionSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		rec       lead.RawRecord
		wantDesc  string
		wantScore float64
	}{
		{"company description wins", lead.RawRecord{CompanyName: "Zzz", CompanyDescription: "About us", Description: "Listing"}, "About us", 0.4},
		{"listing description fallback", lead.RawRecord{CompanyName: "Zzz", Description: "Listing"}, "Listing", 0.4},
		{"no description", lead.RawRecord{CompanyName: "Zzz"}, "", 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := New(&mapFetcher{}).Enrich(context.Background(), tt.rec)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
		})
	}
}
