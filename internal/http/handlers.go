package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"budgetlens/internal/core"
	"budgetlens/internal/ledger"
	"budgetlens/internal/log"
	"budgetlens/internal/services"
)

// readyTimeout bounds the ledger probe behind /readyz.
const readyTimeout = 5 * time.Second

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": s.clock().UTC().Format(time.RFC3339),
		"uptime":    s.clock().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady reports ready when the ledger answers a plan listing.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}
	if ids, err := s.reports.PlanIDs(ctx); err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["ledger"] = fmt.Sprintf("failed: %v", err)
	} else {
		checks["ledger"] = map[string]any{"status": "ok", "plans": len(ids)}
	}
	checks["rate_limiter"] = map[string]any{"status": "ok", "active_clients": s.limiter.ActiveClients()}

	writeJSON(w, r, code, map[string]any{
		"status":    status,
		"timestamp": s.clock().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides counters in Prometheus text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.tracer.GetMetrics()
	limitMetrics := s.limiter.GetMetrics()
	securityMetrics := s.detector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	metric := func(name, kind, help string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "counter", "Total number of HTTP requests", traceMetrics.TotalRequests)
	metric("http_server_errors_total", "counter", "Requests answered with a 5xx status", traceMetrics.ServerErrors)
	metric("http_response_time_avg_microseconds", "gauge", "Average response time", traceMetrics.AverageResponseTime)
	metric("reports_generated_total", "counter", "Reports served over HTTP", atomic.LoadInt64(&s.reportsServed))
	metric("transactions_posted_total", "counter", "Transactions recorded over HTTP", atomic.LoadInt64(&s.transactionsPosted))
	metric("rate_limit_hits_total", "counter", "Requests rejected by the rate limiter", limitMetrics.TotalHits)
	metric("rate_limit_clients", "gauge", "Currently tracked rate limit clients", limitMetrics.ClientCount)
	metric("suspicious_requests_total", "counter", "Requests flagged as probes", securityMetrics.SuspiciousRequests)
	if s.planCache != nil {
		stats := s.planCache.Stats()
		metric("plan_cache_entries", "gauge", "Plans held in the cache", stats.Size)
		metric("plan_cache_hits_total", "counter", "Plan cache hits", stats.Hits)
		metric("plan_cache_misses_total", "counter", "Plan cache misses", stats.Misses)
	}
	metric("uptime_seconds", "gauge", "Application uptime in seconds", int64(s.clock().Sub(s.started).Seconds()))
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	ids, err := s.reports.PlanIDs(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, r, http.StatusOK, map[string][]string{"plans": ids})
}

// handleReport evaluates a plan as of the optional as_of date.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	planID := strings.TrimSpace(r.PathValue("id"))
	asOf, err := ParseAsOf(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	rep, err := s.reports.Generate(r.Context(), planID, asOf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.countReport()
	writeJSON(w, r, http.StatusOK, NewReportResponse(rep))
}

// handlePostTransaction records a transaction against a plan category.
func (s *Server) handlePostTransaction(w http.ResponseWriter, r *http.Request) {
	planID := strings.TrimSpace(r.PathValue("id"))
	tx, err := DecodeTransaction(r, planID, s.clock())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.reports.PostTransaction(r.Context(), tx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.countTransaction()

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldPlanID, planID,
		log.FieldCategoryID, tx.CategoryID,
		log.FieldAmountCents, tx.Amount.Cents)

	w.Header().Set("Location", "/api/plans/"+planID+"/report")
	writeJSON(w, r, http.StatusCreated, TransactionResponse{ID: id, PlanID: planID})
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrPlanNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidTransaction), errors.Is(err, core.ErrUnknownCategory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// operationFor names the operation a request performs, for error logs.
func operationFor(r *http.Request) string {
	switch {
	case r.Method == http.MethodPost:
		return log.OpCreate
	case r.URL.Path == "/api/plans":
		return log.OpList
	default:
		return log.OpRead
	}
}

// fail writes the error response. Internal errors are logged and their
// text is not sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		fields := log.NewFields()
		fields[log.FieldPath] = r.URL.Path
		if id := r.PathValue("id"); id != "" {
			fields.WithPlan(id)
		}
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, operationFor(r), fields)
		msg = http.StatusText(status)
	}
	writeError(w, r, status, msg)
}
