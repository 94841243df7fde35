package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/lead-harvester/internal/lead"
)

// rule is one extraction strategy. Rules run in order and the first rule to
// yield an address owns it for the rest of the scan.
type rule struct {
	name    string
	pattern *regexp.Regexp
	base    float64
}

const (
	mailtoBase = 0.9
	verifiedAt = 0.8
	longEmail  = 50
)

// Each pattern captures the address in group 1. The prefixed rules only fire
// when the prefix opens the local part.
var defaultRules = []rule{
	{
		name:    "greeting",
		pattern: regexp.MustCompile(`(?i)(?:^|[^a-z0-9._%+-])((?:info|contact|hello)[a-z0-9._%+-]*@[a-z0-9.-]+\.[a-z]{2,})\b`),
		base:    0.9,
	},
	{
		name: "functional",
		pattern: regexp.MustCompile(`(?i)(?:^|[^a-z0-9._%+-])((?:support|help|sales|marketing|hr|jobs|careers|press|media|pr|` +
			`legal|admin|webmaster|noreply|no-reply)[a-z0-9._%+-]*@[a-z0-9.-]+\.[a-z]{2,})\b`),
		base: 0.8,
	},
	{
		name:    "generic",
		pattern: regexp.MustCompile(`(?i)\b([a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,})\b`),
		base:    0.5,
	},
}

var validEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// personalDomains are consumer mailbox providers; addresses on them are never
// company contacts.
var personalDomains = map[string]struct{}{
	"gmail.com": {}, "yahoo.com": {}, "outlook.com": {}, "hotmail.com": {}, "aol.com": {},
	"icloud.com": {}, "protonmail.com": {}, "mail.com": {}, "live.com": {}, "msn.com": {},
	"yandex.com": {}, "gmx.com": {}, "web.de": {}, "t-online.de": {}, "freenet.de": {},
	"arcor.de": {}, "tiscali.it": {}, "libero.it": {}, "virgilio.it": {}, "alice.it": {},
	"orange.fr": {}, "laposte.net": {}, "free.fr": {}, "wanadoo.fr": {}, "sfr.fr": {},
	"neuf.fr": {}, "club-internet.fr": {}, "numericable.fr": {}, "bbox.fr": {},
}

var (
	greetingPrefixes   = []string{"info", "contact", "hello"}
	functionalPrefixes = []string{"support", "sales", "marketing", "hr"}
)

// typeTable maps mailbox prefixes to types; checked in order.
var typeTable = []struct {
	kind     lead.EmailType
	prefixes []string
}{
	{lead.EmailTypeGeneral, []string{"info", "hello", "contact"}},
	{lead.EmailTypeSupport, []string{"support", "help"}},
	{lead.EmailTypeSales, []string{"sales", "business"}},
	{lead.EmailTypeMarketing, []string{"marketing", "pr", "press"}},
	{lead.EmailTypeHR, []string{"hr", "jobs", "careers"}},
	{lead.EmailTypeLegal, []string{"legal", "compliance"}},
	{lead.EmailTypeAdmin, []string{"admin", "webmaster"}},
	{lead.EmailTypeNoReply, []string{"noreply", "no-reply"}},
}

// IsValidEmail reports whether s is a syntactically valid address.
func IsValidEmail(s string) bool {
	return s != "" && validEmail.MatchString(s)
}

// IsPersonal reports whether the address is hosted on a consumer provider.
func IsPersonal(email string) bool {
	i := strings.LastIndexByte(email, '@')
	if i < 0 {
		return false
	}
	_, ok := personalDomains[strings.ToLower(email[i+1:])]
	return ok
}

// Confidence applies the score adjustments to a base weight and clamps the
// result to [0, 1].
func Confidence(email, domainHint string, base float64) float64 {
	email = strings.ToLower(email)
	score := base
	if domainHint != "" && strings.Contains(email, domainHint) {
		score += 0.2
	}
	if hasMailbox(email, greetingPrefixes) {
		score += 0.1
	}
	if hasMailbox(email, functionalPrefixes) {
		score += 0.1
	}
	if len(email) > longEmail {
		score -= 0.1
	}
	return clamp(score)
}

// Classify returns the email type for an address, defaulting to general.
func Classify(email string) lead.EmailType {
	email = strings.ToLower(email)
	for _, entry := range typeTable {
		if hasMailbox(email, entry.prefixes) {
			return entry.kind
		}
	}
	return lead.EmailTypeGeneral
}

// hasMailbox reports whether any "<prefix>@" occurs in the address.
func hasMailbox(email string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.Contains(email, p+"@") {
			return true
		}
	}
	return false
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

func candidate(email, domainHint, sourcePage string, base float64) lead.EmailCandidate {
	conf := Confidence(email, domainHint, base)
	return lead.EmailCandidate{
		Email:      email,
		Type:       Classify(email),
		Confidence: conf,
		SourcePage: sourcePage,
		Verified:   conf >= verifiedAt,
	}
}
