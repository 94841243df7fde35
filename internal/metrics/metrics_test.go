package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://acme.com/contact", "acme.com"},
		{"standard https", "https://Acme.com/team", "acme.com"},
		{"no scheme", "acme.com/about", "acme.com"},
		{"host with port", "acme.com:8080", "acme.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObserversInitializeLazily(t *testing.T) {
	ObserveCompany("saved")
	ObserveCompany("saved")
	ObserveEmailExtracted("general")
	ObserveEmailValidation(true)
	ObserveEmailValidation(false)
	ObservePageFetch("https://observe.example/contact", "ok")
	ObserveQualityScore(0.75)
	ObserveRateLimitDelay(150 * time.Millisecond)

	if val := testutil.ToFloat64(companiesTotal.WithLabelValues("saved")); val < 2 {
		t.Errorf("expected companies saved >= 2, got %f", val)
	}
	if val := testutil.ToFloat64(pagesFetchedTotal.WithLabelValues("observe.example", "ok")); val != 1 {
		t.Errorf("expected one fetch for observe.example, got %f", val)
	}
	if val := testutil.ToFloat64(emailValidationsTotal.WithLabelValues("invalid")); val < 1 {
		t.Errorf("expected an invalid validation, got %f", val)
	}
	if n := testutil.CollectAndCount(qualityScore); n != 1 {
		t.Errorf("expected quality histogram to be collected, got %d", n)
	}
}

func FuzzSanitizeSite(f *testing.F) {
	for _, tc := range []string{"http://acme.com", "https://example.org", "ftp://example.com"} {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		if SanitizeSite(orig) == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
