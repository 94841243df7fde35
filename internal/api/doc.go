// Package api hosts the read-only HTTP server over stored leads.
// Notable routes:
//   - GET /healthz for liveness probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/companies/... for companies with their emails and enrichment.
//   - GET /v1/leads/... for the high-quality, spam and enriched reports.
//   - GET /v1/db/stats for row counts per table.
package api
