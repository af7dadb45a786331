package http

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"budgetlens/internal/cache"
	"budgetlens/internal/core"
	"budgetlens/internal/log"
	"budgetlens/internal/middleware/ratelimit"
	"budgetlens/internal/middleware/security"
	"budgetlens/internal/middleware/trace"
	"budgetlens/internal/report"
)

// ReportAPI is the part of services.ReportService the server exposes.
type ReportAPI interface {
	Generate(ctx context.Context, planID string, asOf time.Time) (*report.AnalysisReport, error)
	PostTransaction(ctx context.Context, tx core.Transaction) (string, error)
	PlanIDs(ctx context.Context) ([]string, error)
}

// StatsReporter exposes cache counters on /metrics.
type StatsReporter interface {
	Stats() cache.Stats
}

// Options tunes the server. Zero values pick defaults.
type Options struct {
	Logger *log.Logger
	// RequestsPerMinute limits transaction posts per client IP.
	RequestsPerMinute int
	// PlanCache, when set, is reported on /metrics.
	PlanCache StatsReporter
	Clock     func() time.Time
}

type Server struct {
	http.Server
	reports   ReportAPI
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	planCache StatsReporter
	clock     func() time.Time
	started   time.Time

	reportsServed      int64
	transactionsPosted int64

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
// Call Shutdown to stop the rate limiter along with the listener.
func NewServer(addr string, reports ReportAPI, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	detector := security.NewDetector()
	s := &Server{
		reports:   reports,
		logger:    logger,
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		detector:  detector,
		tracer:    trace.NewMiddleware(detector.ExtractClientIP),
		planCache: opts.PlanCache,
		clock:     clock,
		started:   clock(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/plans", s.handleListPlans)
	mux.HandleFunc("GET /api/plans/{id}/report", s.handleReport)
	mux.Handle("POST /api/plans/{id}/transactions",
		s.limiter.Middleware(detector.ExtractClientIP, s.onRateLimit)(http.HandlerFunc(s.handlePostTransaction)))

	var handler http.Handler = mux
	handler = s.inspect(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = log.RequestIDMiddleware(trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(logger)(handler)

	s.Server = http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// inspect logs requests that look like probes. They are still served.
func (s *Server) inspect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, retry later")
}

// Shutdown stops the rate limiter and gracefully shuts down the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) countReport()      { atomic.AddInt64(&s.reportsServed, 1) }
func (s *Server) countTransaction() { atomic.AddInt64(&s.transactionsPosted, 1) }

func requestID(r *http.Request) string {
	return trace.GetRequestID(r.Context())
}
