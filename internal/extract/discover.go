package extract

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/idna"
)

var skipExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {}, ".ppt": {}, ".pptx": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".svg": {}, ".ico": {},
	".css": {}, ".js": {}, ".xml": {}, ".json": {}, ".txt": {}, ".zip": {}, ".rar": {},
}

// CompanyDomain returns the lower-cased host of a website URL without a
// leading "www.". Internationalized hosts are converted to their ASCII form.
// It returns "" when the URL has no host.
func CompanyDomain(website string) string {
	website = strings.TrimSpace(website)
	if website == "" {
		return ""
	}
	if !strings.Contains(website, "://") {
		website = "http://" + website
	}
	u, err := url.Parse(website)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	return strings.TrimPrefix(host, "www.")
}

// DiscoverPages returns up to limit absolute same-site links from doc that
// look like HTML pages. The base page itself is excluded.
func DiscoverPages(doc *goquery.Document, base string, limit int) []string {
	if doc == nil || limit <= 0 {
		return nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}
	baseDomain := CompanyDomain(base)
	if baseDomain == "" {
		return nil
	}
	seen := map[string]struct{}{baseURL.String(): {}}
	var pages []string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := baseURL.ResolveReference(ref).String()
		if !scrapable(abs) || CompanyDomain(abs) != baseDomain {
			return true
		}
		if _, dup := seen[abs]; dup {
			return true
		}
		seen[abs] = struct{}{}
		pages = append(pages, abs)
		return len(pages) < limit
	})
	return pages
}

func scrapable(raw string) bool {
	if strings.Contains(raw, "#") {
		return false
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:") {
		return false
	}
	if !strings.HasPrefix(lower, "http") {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	_, skip := skipExtensions[strings.ToLower(path.Ext(u.Path))]
	return !skip
}
