package enrich

import (
	"strings"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

var sizeBrackets = []struct {
	patterns []string
	bracket  string
}{
	{[]string{"1-10", "1 to 10"}, lead.Size1to10},
	{[]string{"11-50", "11 to 50"}, lead.Size11to50},
	{[]string{"51-200", "51 to 200"}, lead.Size51to200},
	{[]string{"201-500", "201 to 500"}, lead.Size201to500},
	{[]string{"501-1000", "501 to 1000"}, lead.Size501to1000},
	{[]string{"1001-5000", "1001 to 5000"}, lead.Size1001to5k},
	{[]string{"5000+"}, lead.Size5kPlus},
}

// NormalizeSize maps free-form size text such as "11-50 employees on
// LinkedIn" onto a standard bracket. It returns "" when nothing matches.
func NormalizeSize(raw string) string {
	raw = strings.ToLower(raw)
	for _, b := range sizeBrackets {
		for _, p := range b.patterns {
			if strings.Contains(raw, p) {
				return b.bracket
			}
		}
	}
	return ""
}

// EstimateSize guesses a size bracket from the industry when no explicit
// size is known.
func EstimateSize(industry lead.Industry, name string) string {
	if industry == "" {
		return lead.SizeUnknown
	}
	switch {
	case strings.Contains(strings.ToLower(name), "startup"):
		return lead.SizeStartup
	case industry == lead.IndustryConsulting, industry == lead.IndustryRealEstate:
		return lead.SizeSmallMid
	case industry == lead.IndustryTechnology, industry == lead.IndustryHealthcare, industry == lead.IndustryFinance:
		return lead.SizeMid
	case industry == lead.IndustryManufacturing, industry == lead.IndustryRetail:
		return lead.SizeLarge
	}
	return lead.SizeUnknown
}

// CompanySize resolves the size bracket for a company: an explicit size
// wins, then the industry estimate.
func CompanySize(explicit string, industry lead.Industry, name string) string {
	if b := NormalizeSize(explicit); b != "" {
		return b
	}
	return EstimateSize(industry, name)
}
