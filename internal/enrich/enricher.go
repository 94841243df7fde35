package enrich

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/extract"
	"github.com/JakeFAU/lead-harvester/internal/lead"
)

// TeamPaths are tried in order when looking for a team page.
var TeamPaths = []string{
	"/team", "/about/team", "/leadership", "/about/leadership",
	"/management", "/about/management", "/executives", "/about/executives",
	"/people", "/about/people", "/staff", "/about/staff",
}

var (
	memberClass = regexp.MustCompile(`(?i)team|member|person|employee`)
	titleClass  = regexp.MustCompile(`(?i)title|position|role|job`)
	bioClass    = regexp.MustCompile(`(?i)bio|description|about`)
)

// Enricher fetches profile and team pages and assembles enrichment records.
type Enricher struct {
	fetcher lead.Fetcher
	region  string
	clock   lead.Clock
	logger  *zap.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithPhoneRegion sets the region used to parse local phone numbers.
func WithPhoneRegion(region string) Option {
	return func(e *Enricher) {
		if region != "" {
			e.region = region
		}
	}
}

// WithClock sets the clock stamped on enrichment records.
func WithClock(c lead.Clock) Option {
	return func(e *Enricher) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.logger = l
		}
	}
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

// New builds an Enricher on top of fetcher.
func New(fetcher lead.Fetcher, opts ...Option) *Enricher {
	e := &Enricher{
		fetcher: fetcher,
		region:  DefaultRegion,
		clock:   utcClock{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Enricher) document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	return doc, nil
}

// Enhance fills the empty fields of rec from the company website and its
// LinkedIn page. Values already on the record are never replaced. Fetch
// failures leave the record as it was.
func (e *Enricher) Enhance(ctx context.Context, rec lead.RawRecord) lead.RawRecord {
	if rec.Website != "" {
		if doc, err := e.document(ctx, rec.Website); err != nil {
			e.logger.Debug("website profile unavailable", zap.String("url", rec.Website), zap.Error(err))
		} else {
			rec = merge(rec, ParseWebsite(doc))
		}
	}
	if rec.LinkedInProfile != "" {
		if doc, err := e.document(ctx, rec.LinkedInProfile); err != nil {
			e.logger.Debug("linkedin profile unavailable", zap.String("url", rec.LinkedInProfile), zap.Error(err))
		} else {
			rec = merge(rec, ParseLinkedIn(doc))
		}
	}
	if rec.Phone != "" {
		phone, ok := NormalizePhone(rec.Phone, e.region)
		if !ok {
			e.logger.Debug("phone number looks invalid", zap.String("company", rec.CompanyName), zap.String("phone", rec.Phone))
		}
		rec.Phone = phone
	}
	return rec
}

func merge(rec lead.RawRecord, p Profile) lead.RawRecord {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&rec.CompanyName, p.Name)
	fill(&rec.Email, p.Email)
	fill(&rec.Phone, p.Phone)
	fill(&rec.Address, p.Address)
	fill(&rec.Website, p.Website)
	fill(&rec.Description, p.Description)
	fill(&rec.CompanyDescription, p.CompanyDescription)
	fill(&rec.Industry, p.Industry)
	fill(&rec.CompanySize, p.CompanySize)
	fill(&rec.Headquarters, p.Headquarters)
	fill(&rec.FoundedYear, p.FoundedYear)
	if len(rec.Specialties) == 0 && len(p.Specialties) > 0 {
		rec.Specialties = p.Specialties
	}
	return rec
}

// DecisionMakers scrapes the first team page that lists anyone. It returns
// nil when no page yields a named member.
func (e *Enricher) DecisionMakers(ctx context.Context, website string) []lead.DecisionMaker {
	if website == "" {
		return nil
	}
	base, err := url.Parse(website)
	if err != nil {
		return nil
	}
	for _, p := range TeamPaths {
		if ctx.Err() != nil {
			return nil
		}
		pageURL := base.ResolveReference(&url.URL{Path: p}).String()
		doc, err := e.document(ctx, pageURL)
		if err != nil {
			e.logger.Debug("team page unavailable", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		if members := TeamMembers(doc); len(members) > 0 {
			return members
		}
	}
	return nil
}

// TeamMembers extracts the named people listed on a team page.
func TeamMembers(doc *goquery.Document) []lead.DecisionMaker {
	var out []lead.DecisionMaker
	byClass(doc.Selection, "div, section", memberClass).Each(func(_ int, s *goquery.Selection) {
		if m, ok := teamMember(s); ok {
			out = append(out, m)
		}
	})
	return out
}

func teamMember(s *goquery.Selection) (lead.DecisionMaker, bool) {
	m := lead.DecisionMaker{
		Name:     CleanText(s.Find("h1, h2, h3, h4, h5, h6").First().Text()),
		JobTitle: firstText(s, "p, span, div", titleClass),
		Bio:      firstText(s, "p, div", bioClass),
	}
	if m.Name == "" {
		return m, false
	}
	m.Type = ClassifyTitle(m.JobTitle)

	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
			return true
		}
		email, _, _ := strings.Cut(href[7:], "?")
		if extract.IsValidEmail(email) && !extract.IsPersonal(email) {
			m.Email = strings.ToLower(email)
		}
		return false
	})
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		if strings.Contains(strings.ToLower(href), "linkedin.com") {
			m.LinkedInProfile = href
			return false
		}
		return true
	})
	return m, true
}

// GenericDecisionMakers synthesizes placeholder contacts when no team page
// is available. The marketing contact needs a website for its address.
func GenericDecisionMakers(website string) []lead.DecisionMaker {
	ceo := lead.DecisionMaker{
		Name:     "CEO/Founder",
		JobTitle: "Chief Executive Officer",
		Type:     lead.RoleExecutive,
		Generic:  true,
	}
	if website == "" {
		return []lead.DecisionMaker{ceo}
	}
	domain := extract.CompanyDomain(website)
	ceo.Email = "ceo@" + domain
	return []lead.DecisionMaker{ceo, {
		Name:     "Marketing Contact",
		JobTitle: "Marketing Manager",
		Type:     lead.RoleMarketing,
		Email:    "marketing@" + domain,
		Generic:  true,
	}}
}

// Enrich classifies and profiles one company. It never fails; missing
// inputs just leave fields empty.
func (e *Enricher) Enrich(ctx context.Context, rec lead.RawRecord) lead.EnrichmentRecord {
	out := lead.EnrichmentRecord{
		CompanySize:  rec.CompanySize,
		FoundedYear:  rec.FoundedYear,
		Headquarters: rec.Headquarters,
		Description:  rec.CompanyDescription,
		Specialties:  []string(rec.Specialties),
		Source:       lead.EnrichmentSource,
	}
	if out.Description == "" {
		out.Description = rec.Description
	}

	if c, ok := ClassifyIndustry(ClassificationText(rec), rec.CompanyName); ok {
		conf := c.Confidence
		out.IndustryCategory = c.Industry
		out.IndustryConfidence = &conf
		out.Subcategory = c.Subcategory
	}

	out.DecisionMakers = e.DecisionMakers(ctx, rec.Website)
	if len(out.DecisionMakers) == 0 {
		out.DecisionMakers = GenericDecisionMakers(rec.Website)
	}

	out.EstimatedCompanySize = CompanySize(rec.CompanySize, out.IndustryCategory, rec.CompanyName)

	loc := ParseLocation(rec.Headquarters)
	out.City, out.State, out.ZipCode, out.Country = loc.City, loc.State, loc.ZipCode, loc.Country

	out.Score = Score(out)
	out.EnrichedAt = e.clock.Now()

	e.logger.Debug("company enriched",
		zap.String("company", rec.CompanyName),
		zap.String("industry", string(out.IndustryCategory)),
		zap.Int("decision_makers", len(out.DecisionMakers)),
		zap.Float64("score", out.Score),
	)
	return out
}

// Score rates how much of the enrichment record is filled in.
func Score(r lead.EnrichmentRecord) float64 {
	var s float64
	if r.IndustryCategory != "" {
		s += 0.2
	}
	if r.CompanySize != "" {
		s += 0.2
	}
	if r.Headquarters != "" {
		s += 0.2
	}
	if len(r.DecisionMakers) > 0 {
		s += 0.3
	}
	if r.Description != "" {
		s += 0.1
	}
	return min(s, 1)
}
