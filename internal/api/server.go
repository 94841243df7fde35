package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JakeFAU/lead-harvester/internal/config"
	"github.com/JakeFAU/lead-harvester/internal/database"
	"github.com/JakeFAU/lead-harvester/internal/lead"
	"github.com/JakeFAU/lead-harvester/internal/metrics"
)

const defaultPageSize = 100

// Server wires HTTP handlers to the lead repository.
type Server struct {
	router chi.Router
	repo   lead.Repository
	stats  database.StatsProvider
	cfg    config.Config
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes. stats may be nil
// when the backend has no table statistics.
func NewServer(repo lead.Repository, stats database.StatsProvider, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		repo:   repo,
		stats:  stats,
		cfg:    cfg,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	if cfg.Metrics.Enabled {
		r.Use(metrics.Middleware)
	}
	r.Use(timeoutMiddleware(60 * time.Second))

	r.Get("/healthz", s.healthz)
	if cfg.Metrics.Enabled {
		r.Handle("/metrics", metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/companies", func(r chi.Router) {
			r.Get("/", s.listCompanies)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getCompany)
				r.Get("/emails", s.companyEmails)
				r.Get("/enrichment", s.companyEnrichment)
			})
		})
		r.Get("/emails", s.emailsByDomain)
		r.Route("/leads", func(r chi.Router) {
			r.Get("/high-quality", s.highQuality)
			r.Get("/spam", s.spam)
			r.Get("/enriched", s.enriched)
		})
		r.Get("/db/stats", s.dbStats)
	})

	s.router = r
	return s
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listCompanies(w http.ResponseWriter, r *http.Request) {
	if term := strings.TrimSpace(r.URL.Query().Get("q")); term != "" {
		companies, err := s.repo.SearchCompanies(r.Context(), term)
		if err != nil {
			s.fail(w, "search companies", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"companies": companies, "count": len(companies)})
		return
	}
	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	companies, err := s.repo.ListCompanies(r.Context(), limit, offset)
	if err != nil {
		s.fail(w, "list companies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies, "count": len(companies)})
}

func (s *Server) getCompany(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	company, err := s.repo.GetCompany(r.Context(), id)
	if err != nil {
		s.fail(w, "get company", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company": company})
}

func (s *Server) companyEmails(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	if _, err := s.repo.GetCompany(r.Context(), id); err != nil {
		s.fail(w, "get company", err)
		return
	}
	emails, err := s.repo.CompanyEmails(r.Context(), id)
	if err != nil {
		s.fail(w, "company emails", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"company_id": id, "emails": emails})
}

func (s *Server) companyEnrichment(w http.ResponseWriter, r *http.Request) {
	id, ok := companyID(w, r)
	if !ok {
		return
	}
	enrichment, err := s.repo.GetEnrichment(r.Context(), id)
	if err != nil {
		s.fail(w, "get enrichment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"enrichment": enrichment})
}

func (s *Server) emailsByDomain(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(r.URL.Query().Get("domain"))
	if domain == "" {
		writeError(w, http.StatusBadRequest, "domain required")
		return
	}
	emails, err := s.repo.EmailsByDomain(r.Context(), domain)
	if err != nil {
		s.fail(w, "emails by domain", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"domain": domain, "emails": emails})
}

func (s *Server) highQuality(w http.ResponseWriter, r *http.Request) {
	s.scored(w, r, s.cfg.Quality.HighMin, s.repo.HighQualityLeads)
}

func (s *Server) spam(w http.ResponseWriter, r *http.Request) {
	s.scored(w, r, s.cfg.Quality.SpamMin, s.repo.SpamFlaggedLeads)
}

type scoredQuery func(ctx context.Context, threshold float64, limit int) ([]lead.ScoredLead, error)

func (s *Server) scored(w http.ResponseWriter, r *http.Request, def float64, query scoredQuery) {
	threshold, err := floatParam(r, "min", def)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	leads, err := query(r.Context(), threshold, limit)
	if err != nil {
		s.fail(w, "scored leads", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"min": threshold, "leads": leads, "count": len(leads)})
}

func (s *Server) enriched(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	leads, err := s.repo.SearchEnriched(r.Context(), lead.EnrichedFilter{
		Industry:    q.Get("industry"),
		CompanySize: q.Get("size"),
		Location:    q.Get("location"),
		Limit:       limit,
	})
	if err != nil {
		s.fail(w, "search enriched", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": leads, "count": len(leads)})
}

func (s *Server) dbStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		writeError(w, http.StatusServiceUnavailable, "table statistics unavailable for this storage driver")
		return
	}
	counts, err := s.stats.Stats(r.Context())
	if err != nil {
		s.fail(w, "db stats", err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// fail maps repository errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, lead.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusRequestTimeout, "request timed out")
	default:
		s.logger.Error("request failed", zap.String("op", op), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func companyID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid company id")
		return 0, false
	}
	return id, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return v, nil
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			reqID, _ := r.Context().Value(requestIDKey{}).(string)
			logger.Info("request completed",
				zap.String("request_id", reqID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec), zap.String("path", r.URL.Path))
					writeError(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (rw *statusWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("write JSON failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
