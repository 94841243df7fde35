package enrich

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/lead-harvester/internal/extract"
)

const (
	minAboutLength     = 50
	maxAboutSections   = 2
	minSpecialtyLength = 3
)

var (
	legacyEmail = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	streetPart  = `\d+\s+[A-Za-z\s]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Place|Pl|Court|Ct)`

	streetAddress = regexp.MustCompile(`(?i)` + streetPart)
	fullAddress   = regexp.MustCompile(`(?i)\b` + streetPart + `[,\s]+[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5}\b`)

	headquartersPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b` + streetPart + `[,\s]+[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5}\b`),
		regexp.MustCompile(`\b[A-Za-z\s]+,\s*[A-Z]{2}\s*\d{5}\b`),
		regexp.MustCompile(`\b[A-Za-z\s]+,\s*[A-Z]{2}\b`),
	}

	aboutClass    = regexp.MustCompile(`(?i)about|company|story|mission`)
	contactClass  = regexp.MustCompile(`(?i)contact|info|details`)
	summaryClass  = regexp.MustCompile(`(?i)about|description|summary`)
	industryClass = regexp.MustCompile(`(?i)industry|business-type|sector`)
	sizeClass     = regexp.MustCompile(`(?i)size|employees|headcount`)
	locationClass = regexp.MustCompile(`(?i)headquarters|location|address`)
	specialtyCls  = regexp.MustCompile(`(?i)specialty|expertise|focus`)
	foundedText   = regexp.MustCompile(`(?i)founded|established|since`)
	yearPattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// Profile is what a company website or LinkedIn page reveals about the
// company. Empty fields were not found.
type Profile struct {
	Name               string
	Email              string
	Phone              string
	Address            string
	Website            string
	Description        string
	CompanyDescription string
	Industry           string
	CompanySize        string
	Headquarters       string
	FoundedYear        string
	Specialties        []string
}

// byClass selects the elements matching tags whose class attribute matches
// pattern, in document order.
func byClass(s *goquery.Selection, tags string, pattern *regexp.Regexp) *goquery.Selection {
	return s.Find(tags).FilterFunction(func(_ int, el *goquery.Selection) bool {
		class, ok := el.Attr("class")
		return ok && pattern.MatchString(class)
	})
}

func firstText(s *goquery.Selection, tags string, pattern *regexp.Regexp) string {
	return CleanText(byClass(s, tags, pattern).First().Text())
}

// ParseWebsite reads a company home page.
func ParseWebsite(doc *goquery.Document) Profile {
	var p Profile
	if doc == nil {
		return p
	}
	p.Name = CleanText(doc.Find("title").First().Text())
	if p.Name == "" {
		p.Name = CleanText(doc.Find("h1").First().Text())
	}

	text := extract.PageText(doc)
	p.Email = legacyEmail.FindString(text)
	p.Address = CleanText(streetAddress.FindString(text))

	if meta, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		p.CompanyDescription = CleanText(meta)
	}
	var about []string
	byClass(doc.Selection, "div, section", aboutClass).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t := CleanText(s.Text()); len(t) > minAboutLength {
			about = append(about, t)
		}
		return len(about) < maxAboutSections
	})
	if len(about) > 0 {
		p.CompanyDescription = strings.Join(about, " ")
	}

	for _, re := range headquartersPatterns {
		if m := re.FindString(text); m != "" {
			p.Headquarters = CleanText(m)
			break
		}
	}

	var contact []string
	byClass(doc.Selection, "div, section", contactClass).Each(func(_ int, s *goquery.Selection) {
		contact = append(contact, s.Text())
	})
	contactText := strings.Join(contact, " ")
	p.Phone = FindPhone(contactText)
	if p.Phone == "" {
		p.Phone = FindPhone(text)
	}
	if p.Headquarters == "" {
		p.Headquarters = CleanText(fullAddress.FindString(contactText))
	}
	return p
}

// ParseLinkedIn reads a public LinkedIn company page.
func ParseLinkedIn(doc *goquery.Document) Profile {
	var p Profile
	if doc == nil {
		return p
	}
	title := doc.Find("title").First().Text()
	if name, _, found := strings.Cut(title, "| LinkedIn"); found {
		p.Name = strings.TrimSpace(name)
	} else {
		p.Name = CleanText(title)
	}

	p.Description = firstText(doc.Selection, "div, section", summaryClass)
	p.CompanyDescription = p.Description
	p.Industry = firstText(doc.Selection, "span, div", industryClass)
	p.CompanySize = firstText(doc.Selection, "span, div", sizeClass)
	p.Headquarters = firstText(doc.Selection, "span, div", locationClass)
	p.Address = p.Headquarters

	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href := s.AttrOr("href", "")
		lower := strings.ToLower(href)
		if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			return true
		}
		if strings.Contains(lower, "linkedin.com") {
			return true
		}
		p.Website = href
		return false
	})

	doc.Find("span, div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 || !foundedText.MatchString(s.Text()) {
			return true
		}
		p.FoundedYear = yearPattern.FindString(s.Text())
		return false
	})

	byClass(doc.Selection, "span, div", specialtyCls).Each(func(_ int, s *goquery.Selection) {
		if t := CleanText(s.Text()); len(t) > minSpecialtyLength {
			p.Specialties = append(p.Specialties, t)
		}
	})

	text := extract.PageText(doc)
	p.Email = legacyEmail.FindString(text)
	p.Phone = FindPhone(text)
	return p
}
