// Package extract finds and scores professional email addresses in page
// text and HTML.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

// DefaultMaxPages bounds how many pages of one company site are scanned,
// the main page included.
const DefaultMaxPages = 5

var emailAttributes = []string{"data-email", "data-contact", "data-mail", "title", "alt", "aria-label"}

// Extractor scans text and documents for candidate emails.
type Extractor struct {
	rules    []rule
	maxPages int
	logger   *zap.Logger
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithMaxPages overrides the per-company page budget.
func WithMaxPages(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New builds an Extractor with the default rule set.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		rules:    defaultRules,
		maxPages: DefaultMaxPages,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Text yields candidates found in a blob of text. Each range over the
// returned sequence rescans the text.
func (e *Extractor) Text(text, domainHint, sourcePage string) iter.Seq[lead.EmailCandidate] {
	return func(yield func(lead.EmailCandidate) bool) {
		if text == "" {
			return
		}
		seen := make(map[string]struct{})
		for _, r := range e.rules {
			for _, m := range r.pattern.FindAllStringSubmatch(text, -1) {
				email := strings.ToLower(strings.TrimSpace(m[1]))
				if !IsValidEmail(email) {
					continue
				}
				if _, dup := seen[email]; dup {
					continue
				}
				seen[email] = struct{}{}
				if IsPersonal(email) {
					continue
				}
				if !yield(candidate(email, domainHint, sourcePage, r.base)) {
					return
				}
			}
		}
	}
}

// HTML yields candidates from the visible text, mailto links, and the
// attributes that commonly carry addresses, in that order.
func (e *Extractor) HTML(doc *goquery.Document, domainHint, sourcePage string) iter.Seq[lead.EmailCandidate] {
	return func(yield func(lead.EmailCandidate) bool) {
		if doc == nil {
			return
		}
		for c := range e.Text(PageText(doc), domainHint, sourcePage) {
			if !yield(c) {
				return
			}
		}
		for c := range mailtoCandidates(doc, domainHint, sourcePage) {
			if !yield(c) {
				return
			}
		}
		for _, attr := range emailAttributes {
			values := doc.Find("[" + attr + "]").Map(func(_ int, s *goquery.Selection) string {
				return s.AttrOr(attr, "")
			})
			for _, v := range values {
				if !strings.Contains(v, "@") {
					continue
				}
				for c := range e.Text(v, domainHint, sourcePage) {
					if !yield(c) {
						return
					}
				}
			}
		}
	}
}

// PageText joins every text node with a space so that adjacent elements do
// not glue an address to the following word.
func PageText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return b.String()
}

func mailtoCandidates(doc *goquery.Document, domainHint, sourcePage string) iter.Seq[lead.EmailCandidate] {
	return func(yield func(lead.EmailCandidate) bool) {
		doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			href := strings.TrimSpace(s.AttrOr("href", ""))
			if len(href) < 7 || !strings.EqualFold(href[:7], "mailto:") {
				return true
			}
			email := href[7:]
			if i := strings.IndexAny(email, "?#"); i >= 0 {
				email = email[:i]
			}
			email = strings.TrimSpace(email)
			if !IsValidEmail(email) || IsPersonal(email) {
				return true
			}
			return yield(candidate(strings.ToLower(email), domainHint, sourcePage, mailtoBase))
		})
	}
}

// Page parses one fetched body and returns its candidates plus the parsed
// document for link discovery.
func (e *Extractor) Page(body []byte, domainHint, pageURL string) ([]lead.EmailCandidate, *goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	var out []lead.EmailCandidate
	for c := range e.HTML(doc, domainHint, pageURL) {
		out = append(out, c)
	}
	return out, doc, nil
}

// Company scans a company website: the main page first, then up to
// maxPages-1 same-site pages linked from it. The merged result is
// deduplicated and ordered by confidence. An unreachable main page yields
// no candidates; only cancellation is reported as an error.
func (e *Extractor) Company(ctx context.Context, fetcher lead.Fetcher, website string) ([]lead.EmailCandidate, error) {
	if website == "" {
		return nil, nil
	}
	domain := CompanyDomain(website)
	body, err := fetcher.Fetch(ctx, website)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("fetch main page: %w", ctxErr)
		}
		e.logger.Warn("main page fetch failed", zap.String("url", website), zap.Error(err))
		return nil, nil
	}
	all, doc, err := e.Page(body, domain, website)
	if err != nil {
		e.logger.Warn("main page parse failed", zap.String("url", website), zap.Error(err))
		return nil, nil
	}
	e.logger.Debug("main page scanned", zap.String("url", website), zap.Int("emails", len(all)))

	for _, pageURL := range DiscoverPages(doc, website, e.maxPages-1) {
		if err := ctx.Err(); err != nil {
			return Dedupe(all), err
		}
		pageBody, err := fetcher.Fetch(ctx, pageURL)
		if err != nil {
			e.logger.Debug("sub-page fetch failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		found, _, err := e.Page(pageBody, domain, pageURL)
		if err != nil {
			e.logger.Debug("sub-page parse failed", zap.String("url", pageURL), zap.Error(err))
			continue
		}
		all = append(all, found...)
	}

	unique := Dedupe(all)
	for _, c := range unique {
		metrics.ObserveEmailExtracted(string(c.Type))
	}
	return unique, nil
}
