package enrich

import (
	"regexp"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

var (
	statePattern = regexp.MustCompile(`,\s*([A-Z]{2})\s*\d{5}`)
	cityPattern  = regexp.MustCompile(`([A-Za-z\s]+),\s*[A-Z]{2}`)
	zipPattern   = regexp.MustCompile(`\d{5}`)
)

// Location is the structured form of a headquarters string.
type Location struct {
	City    string
	State   string
	ZipCode string
	Country string
}

// ParseLocation pulls a US city, state and ZIP out of a headquarters
// string like "Austin, TX 78701". Country always defaults to the US.
func ParseLocation(hq string) Location {
	loc := Location{Country: lead.DefaultCountry}
	if hq == "" {
		return loc
	}
	if m := statePattern.FindStringSubmatch(hq); m != nil {
		loc.State = m[1]
	}
	if m := cityPattern.FindStringSubmatch(hq); m != nil {
		loc.City = CleanText(m[1])
	}
	loc.ZipCode = zipPattern.FindString(hq)
	return loc
}
