// Package enrich adds secondary metadata to company records: industry,
// decision makers, size, location and profile details scraped from the
// company website or LinkedIn page.
package enrich

import (
	"strings"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

type category struct {
	industry lead.Industry
	keywords []string
}

// industries is ordered; the first declared category wins a tie.
var industries = []category{
	{lead.IndustryTechnology, []string{
		"software", "technology", "tech", "digital", "ai", "artificial intelligence",
		"machine learning", "data science", "cybersecurity", "cloud computing",
		"saas", "fintech", "healthtech", "edtech", "ecommerce", "mobile app",
		"web development", "it services", "consulting", "startup", "scaleup",
	}},
	{lead.IndustryHealthcare, []string{
		"healthcare", "medical", "pharmaceutical", "biotech", "biotechnology",
		"health", "wellness", "fitness", "telemedicine", "medical device",
		"clinical", "research", "hospital", "clinic", "dental", "mental health",
		"rehabilitation", "home care", "nursing", "pharmacy",
	}},
	{lead.IndustryFinance, []string{
		"finance", "financial", "banking", "investment", "insurance",
		"fintech", "wealth management", "asset management", "private equity",
		"venture capital", "accounting", "audit", "tax", "consulting",
		"credit", "lending", "mortgage", "real estate investment",
	}},
	{lead.IndustryManufacturing, []string{
		"manufacturing", "industrial", "factory", "production", "automotive",
		"aerospace", "defense", "chemical", "steel", "aluminum", "plastics",
		"textiles", "food processing", "beverage", "electronics", "semiconductor",
		"machinery", "equipment", "supply chain", "logistics",
	}},
	{lead.IndustryRetail, []string{
		"retail", "ecommerce", "online shopping", "brick and mortar",
		"fashion", "apparel", "clothing", "footwear", "accessories",
		"home goods", "furniture", "electronics", "jewelry", "cosmetics",
		"grocery", "supermarket", "convenience store", "department store",
	}},
	{lead.IndustryEducation, []string{
		"education", "edtech", "learning", "training", "university",
		"college", "school", "academy", "institute", "online learning",
		"e-learning", "distance learning", "professional development",
		"certification", "workshop", "seminar", "tutoring",
	}},
	{lead.IndustryRealEstate, []string{
		"real estate", "property", "realty", "brokerage", "development",
		"construction", "architecture", "engineering", "property management",
		"leasing", "rental", "commercial real estate", "residential",
		"industrial real estate", "land", "investment property",
	}},
	{lead.IndustryMediaEntertainment, []string{
		"media", "entertainment", "film", "television", "music",
		"publishing", "advertising", "marketing", "public relations",
		"journalism", "news", "broadcasting", "streaming", "gaming",
		"sports", "events", "production", "creative", "design",
	}},
	{lead.IndustryConsulting, []string{
		"consulting", "advisory", "strategy", "management consulting",
		"business consulting", "it consulting", "financial advisory",
		"legal consulting", "hr consulting", "marketing consulting",
		"operations consulting", "change management", "process improvement",
	}},
	{lead.IndustryNonProfit, []string{
		"non-profit", "nonprofit", "charity", "foundation", "ngo",
		"social enterprise", "community organization", "volunteer",
		"philanthropy", "social impact", "environmental", "humanitarian",
		"education foundation", "health foundation", "arts organization",
	}},
}

type subcategory struct {
	name  string
	words []string
}

var techSubcategories = []subcategory{
	{"AI/ML", []string{"ai", "artificial intelligence", "machine learning"}},
	{"SaaS/Software", []string{"saas", "software", "platform"}},
	{"FinTech", []string{"fintech", "financial"}},
	{"HealthTech", []string{"healthtech", "healthcare"}},
	{"EdTech", []string{"edtech", "education"}},
}

// Classification is the outcome of keyword industry matching.
type Classification struct {
	Industry    lead.Industry
	Confidence  float64
	Subcategory string
}

// ClassifyIndustry scores every category by keyword presence in text, with
// a bonus for keywords that also appear in the company name. It reports
// false when no keyword matches.
func ClassifyIndustry(text, name string) (Classification, bool) {
	text = strings.ToLower(text)
	name = strings.ToLower(name)

	best, bestScore := -1, 0
	for i, cat := range industries {
		score := 0
		for _, kw := range cat.keywords {
			if !strings.Contains(text, kw) {
				continue
			}
			score++
			if strings.Contains(name, kw) {
				score += 2
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return Classification{}, false
	}

	c := Classification{
		Industry:   industries[best].industry,
		Confidence: min(float64(bestScore)/5, 1),
	}
	if c.Industry == lead.IndustryTechnology {
		c.Subcategory = techSubcategory(text)
	}
	return c, true
}

func techSubcategory(text string) string {
	for _, sub := range techSubcategories {
		for _, w := range sub.words {
			if strings.Contains(text, w) {
				return sub.name
			}
		}
	}
	return ""
}

// ClassificationText joins the record fields the classifier looks at.
func ClassificationText(r lead.RawRecord) string {
	parts := make([]string, 0, 4+len(r.Specialties))
	for _, s := range []string{r.CompanyName, r.Description, r.CompanyDescription, r.Industry} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, s := range r.Specialties {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
