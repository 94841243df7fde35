// Package metrics exposes Prometheus collectors for the lead harvester.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	companiesTotal             *prometheus.CounterVec
	emailsExtractedTotal       *prometheus.CounterVec
	emailValidationsTotal      *prometheus.CounterVec
	pagesFetchedTotal          *prometheus.CounterVec
	qualityScore               prometheus.Histogram
	rateLimitDelaySeconds      prometheus.Histogram
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		companiesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_companies_total",
				Help: "Companies processed by the pipeline, labeled by outcome.",
			},
			[]string{"status"},
		)

		emailsExtractedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_emails_extracted_total",
				Help: "Unique professional emails extracted per company, labeled by email type.",
			},
			[]string{"type"},
		)

		emailValidationsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_email_validations_total",
				Help: "Email validations performed, labeled by result.",
			},
			[]string{"result"},
		)

		pagesFetchedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_pages_fetched_total",
				Help: "Pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		qualityScore = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leads_quality_score",
				Help:    "Distribution of overall lead quality scores.",
				Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		)

		rateLimitDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "leads_rate_limit_delay_seconds",
				Help:    "Time spent waiting on the inter-request delay.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
			},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCompany counts a company outcome (saved, skipped, error).
func ObserveCompany(status string) {
	Init()
	companiesTotal.WithLabelValues(status).Inc()
}

// ObserveEmailExtracted counts one extracted email of the given type.
func ObserveEmailExtracted(emailType string) {
	Init()
	emailsExtractedTotal.WithLabelValues(emailType).Inc()
}

// ObserveEmailValidation counts a validation outcome.
func ObserveEmailValidation(valid bool) {
	Init()
	result := "invalid"
	if valid {
		result = "valid"
	}
	emailValidationsTotal.WithLabelValues(result).Inc()
}

// ObservePageFetch counts a page fetch for the site of rawURL.
func ObservePageFetch(rawURL string, status string) {
	Init()
	pagesFetchedTotal.WithLabelValues(SanitizeSite(rawURL), status).Inc()
}

// ObserveQualityScore records an overall lead score.
func ObserveQualityScore(score float64) {
	Init()
	qualityScore.Observe(score)
}

// ObserveRateLimitDelay records the duration of a pacer wait.
func ObserveRateLimitDelay(duration time.Duration) {
	Init()
	rateLimitDelaySeconds.Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
