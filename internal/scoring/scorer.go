// Package scoring rates how promising a company lead is from its domain,
// LinkedIn presence, email quality, profile completeness and spam signals.
package scoring

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

const defaultProbeTimeout = 10 * time.Second

// Weights of the overall score. They sum to 1.
const (
	WeightDomainAuthority  = 0.25
	WeightLinkedInPresence = 0.20
	WeightEmailQuality     = 0.25
	WeightCompleteness     = 0.20
	WeightNotSpam          = 0.10
)

var (
	businessTLDs  = []string{".com", ".org", ".net", ".co", ".biz", ".info"}
	businessTerms = []string{
		"inc", "llc", "corp", "ltd", "co", "company", "business",
		"solutions", "services", "group", "enterprises", "ventures",
	}
)

// HTTPClient issues the reachability probes. *http.Client satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Scorer computes lead quality scores.
type Scorer struct {
	client HTTPClient
	clock  lead.Clock
	logger *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithHTTPClient replaces the probe client.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Scorer) {
		if c != nil {
			s.client = c
		}
	}
}

// WithClock sets the clock stamped on scores.
func WithClock(c lead.Clock) Option {
	return func(s *Scorer) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

type utcClock struct{}

func (utcClock) Now() time.Time { return time.Now().UTC() }

// New builds a Scorer.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		client: &http.Client{Timeout: defaultProbeTimeout},
		clock:  utcClock{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DomainAuthority scores a bare host name in [0,1] from its reachability
// over http and https, its TLD and its length. An empty domain is never
// requested but still earns the short-name bonus.
func (s *Scorer) DomainAuthority(ctx context.Context, domain string) float64 {
	var score float64
	if domain != "" {
		if s.reachable(ctx, "http://"+domain) {
			score += 0.2
		}
		if s.reachable(ctx, "https://"+domain) {
			score += 0.1
		}
	}
	for _, tld := range businessTLDs {
		if strings.HasSuffix(domain, tld) {
			score += 0.1
			break
		}
	}
	switch {
	case len(domain) <= 20:
		score += 0.1
	case len(domain) <= 30:
		score += 0.05
	}
	return clamp(score)
}

func (s *Scorer) reachable(ctx context.Context, target string) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("domain probe failed", zap.String("url", target), zap.Error(err))
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.StatusCode == http.StatusOK
}

// LinkedInPresence scores a LinkedIn URL by the kind of page it points at.
func LinkedInPresence(profile string) float64 {
	if !strings.Contains(profile, "linkedin.com") {
		return 0
	}
	score := 0.3
	switch {
	case strings.Contains(profile, "/company/"):
		score += 0.4
	case strings.Contains(profile, "/school/"):
		score += 0.3
	case strings.Contains(profile, "/in/"):
		score += 0.2
	}
	return clamp(score)
}

// EmailQuality is the fraction of emails marked verified.
func EmailQuality(emails []lead.CompanyEmail) float64 {
	if len(emails) == 0 {
		return 0
	}
	verified := 0
	for _, e := range emails {
		if e.Verified {
			verified++
		}
	}
	return float64(verified) / float64(len(emails))
}

// Completeness is the fraction of the core contact fields that are filled.
func Completeness(c lead.Company) float64 {
	fields := []string{c.Name, c.Email, c.Website, c.Phone, c.Address, c.Industry}
	filled := 0
	for _, f := range fields {
		if f != "" {
			filled++
		}
	}
	return clamp(float64(filled) / float64(len(fields)))
}

// Spam scores how much a company record looks like junk. A validation
// result, when given, contributes its own spam score.
func Spam(c lead.Company, validation *lead.EmailValidationResult) float64 {
	var score float64
	if validation != nil {
		score += validation.SpamScore
	}

	name := strings.ToLower(c.Name)
	terms := 0
	for _, term := range businessTerms {
		if strings.Contains(name, term) {
			terms++
		}
	}
	if terms > 3 {
		score += 0.2
	}

	digits, symbols := 0, 0
	for _, r := range name {
		switch {
		case unicode.IsDigit(r):
			digits++
		case !unicode.IsLetter(r) && !unicode.IsSpace(r) && r != '_':
			symbols++
		}
	}
	if digits > 2 {
		score += 0.1
	}
	if symbols > 3 {
		score += 0.1
	}

	if c.Website != "" {
		if len(c.Website) > 100 {
			score += 0.2
		}
		if strings.Count(c.Website, ".") > 3 {
			score += 0.1
		}
	}
	return clamp(score)
}

// Overall combines the sub-scores with the fixed weights. Spam counts
// against the lead.
func Overall(q lead.LeadQualityScore) float64 {
	return q.DomainAuthority*WeightDomainAuthority +
		q.LinkedInPresence*WeightLinkedInPresence +
		q.EmailQuality*WeightEmailQuality +
		q.Completeness*WeightCompleteness +
		(1-q.Spam)*WeightNotSpam
}

// Score rates one company given its stored emails.
func (s *Scorer) Score(ctx context.Context, c lead.Company, emails []lead.CompanyEmail) lead.LeadQualityScore {
	q := lead.LeadQualityScore{
		CompanyID:        c.ID,
		DomainAuthority:  s.DomainAuthority(ctx, websiteHost(c.Website)),
		LinkedInPresence: LinkedInPresence(c.LinkedInProfile),
		EmailQuality:     EmailQuality(emails),
		Completeness:     Completeness(c),
		Spam:             Spam(c, nil),
		UpdatedAt:        s.clock.Now(),
	}
	q.Overall = Overall(q)
	metrics.ObserveQualityScore(q.Overall)
	s.logger.Debug("lead scored",
		zap.Int64("company_id", c.ID),
		zap.Float64("overall", q.Overall),
		zap.Float64("spam", q.Spam),
	)
	return q
}

// websiteHost returns the network location of a website URL. A URL without
// a scheme has none.
func websiteHost(website string) string {
	if website == "" {
		return ""
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	return u.Host
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
