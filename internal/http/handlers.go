package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"budget/internal/core"
	"budget/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	})
}

// handleReady reports whether the database answers and templates loaded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if len(s.templates) == len(pages) {
		checks["templates"] = "ok"
	} else {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}

	if err := s.service.Ping(ctx); err != nil {
		checks["database"] = fmt.Sprintf("failed: %v", err)
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	stats := s.service.Cache().Stats()
	checks["cache"] = map[string]any{"overview_entries": stats.Size, "status": "ok"}
	checks["rate_limiter"] = map[string]any{"active_clients": s.rateLimiter.ActiveClients(), "status": "ok"}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()
	cacheStats := s.service.Cache().Stats()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_client_errors_total", "counter", "Responses with a 4xx status", traceMetrics.ClientErrors)
	metric("http_server_errors_total", "counter", "Responses with a 5xx status", traceMetrics.ServerErrors)
	metric("cache_hits_total", "counter", "Overview cache hits", cacheStats.Hits)
	metric("cache_misses_total", "counter", "Overview cache misses", cacheStats.Misses)
	metric("cache_entries", "gauge", "Cached overviews", cacheStats.Size)
	metric("rate_limit_rejections_total", "counter", "Requests rejected by the rate limiter", rateMetrics.Rejected)
	metric("active_rate_limit_clients", "gauge", "Currently tracked rate limit clients", rateMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Suspicious requests detected", securityMetrics.SuspiciousRequests)
	metric("uptime_seconds", "gauge", "Application uptime in seconds", fmt.Sprintf("%.0f", time.Since(s.appMetrics.uptime).Seconds()))
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/budget", http.StatusFound)
}

// handleOverview renders the budget page for the current month.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	p := s.service.CurrentPeriod()
	ov, err := s.service.Overview(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "Failed to load budget overview", log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, pageBudget, view{Title: "Monthly Budget", Data: ov})
}

type entriesPage struct {
	Entries []core.Entry
	Period  *core.Period
	Year    int
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	current := s.service.CurrentPeriod()
	p := parseMonthFilter(r, current.Year, s.logger)

	entries, err := s.service.Entries(r.Context(), p)
	if err != nil {
		s.serverError(w, r, "Failed to list entries", log.OpList, err)
		return
	}

	data := entriesPage{Entries: entries, Period: p, Year: current.Year}
	if p != nil {
		data.Year = p.Year
	}
	s.render(w, r, http.StatusOK, pageEntries, view{Title: "All Expenses", Data: data})
}
