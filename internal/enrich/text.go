package enrich

import "strings"

// CleanText collapses every run of whitespace to a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
