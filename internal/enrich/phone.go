package enrich

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used to parse numbers written without a country code.
const DefaultRegion = "US"

var (
	phonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?\(?([0-9]{3})\)?[-.\s]?([0-9]{3})[-.\s]?([0-9]{4})`)
	nonDigit     = regexp.MustCompile(`\D`)
)

// FindPhone returns the first North American number in text as the
// concatenation of its captured parts, or "".
func FindPhone(text string) string {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.Join(m[1:], "")
}

// ValidPhone reports whether phone has between 7 and 15 digits.
func ValidPhone(phone string) bool {
	n := len(nonDigit.ReplaceAllString(phone, ""))
	return n >= 7 && n <= 15
}

// NormalizePhone formats phone as E.164. When the number cannot be parsed
// as a valid number for region it falls back to the digit-count check and
// returns the trimmed input unchanged; ok is false only for values that fail
// both.
func NormalizePhone(phone, region string) (string, bool) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", false
	}
	if region == "" {
		region = DefaultRegion
	}
	if num, err := phonenumbers.Parse(phone, region); err == nil && phonenumbers.IsValidNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164), true
	}
	return phone, ValidPhone(phone)
}
