package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/star/tlekit/internal/auth"
	"github.com/star/tlekit/internal/health"
	"github.com/star/tlekit/internal/httputil"
	"github.com/star/tlekit/internal/metrics"
	"github.com/star/tlekit/internal/tle"
)

// Config holds HTTP server configuration.
type Config struct {
	Addr string
	// TrustProxy enables X-Forwarded-For / X-Real-IP client IP extraction.
	TrustProxy bool
	// MaxConcurrentPerIP caps in-flight requests per client IP.
	MaxConcurrentPerIP int
}

// Server exposes the parser over HTTP. Handlers only call the parser's
// entry points; no parsing logic lives here.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	store      *tle.Store
	validate   *validator.Validate
	limiter    *requestLimiter
	trustProxy bool
}

// NewServer creates a configured HTTP server.
func NewServer(cfg Config, logger *slog.Logger, authCfg auth.Config, store *tle.Store) *Server {
	if cfg.MaxConcurrentPerIP <= 0 {
		cfg.MaxConcurrentPerIP = 10
	}

	s := &Server{
		logger:     logger,
		store:      store,
		validate:   validator.New(),
		limiter:    newRequestLimiter(cfg.MaxConcurrentPerIP),
		trustProxy: cfg.TrustProxy,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("POST /api/v1/parse", s.handleParse)
	mux.HandleFunc("POST /api/v1/validate", s.handleValidate)
	mux.HandleFunc("POST /api/v1/recover", s.handleRecover)
	mux.HandleFunc("POST /api/v1/checksum", s.handleChecksum)
	mux.HandleFunc("GET /api/v1/catalog/metadata", s.handleMetadata)

	// Build middleware chain: metrics -> logging -> limiter -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = s.limitMiddleware(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// optionsPayload mirrors tle.Options for the wire. Unset fields keep the
// defaults from tle.DefaultOptions.
type optionsPayload struct {
	Mode                  string `json:"mode,omitempty" validate:"omitempty,oneof=strict permissive"`
	Validate              *bool  `json:"validate,omitempty"`
	StrictChecksums       *bool  `json:"strict_checksums,omitempty"`
	ValidateRanges        *bool  `json:"validate_ranges,omitempty"`
	IncludeWarnings       *bool  `json:"include_warnings,omitempty"`
	IncludeComments       *bool  `json:"include_comments,omitempty"`
	IncludePartialResults *bool  `json:"include_partial_results,omitempty"`
}

func (o optionsPayload) toOptions() tle.Options {
	opts := tle.DefaultOptions()
	if o.Mode != "" {
		opts.Mode = tle.Mode(o.Mode)
	}
	if o.Validate != nil {
		opts.Validate = *o.Validate
	}
	if o.StrictChecksums != nil {
		opts.StrictChecksums = *o.StrictChecksums
	}
	if o.ValidateRanges != nil {
		opts.ValidateRanges = *o.ValidateRanges
	}
	if o.IncludeWarnings != nil {
		opts.IncludeWarnings = *o.IncludeWarnings
	}
	if o.IncludeComments != nil {
		opts.IncludeComments = *o.IncludeComments
	}
	if o.IncludePartialResults != nil {
		opts.IncludePartialResults = *o.IncludePartialResults
	}
	return opts
}

type tleRequest struct {
	Text    string         `json:"text" validate:"required"`
	Options optionsPayload `json:"options"`
}

type checksumRequest struct {
	Line string `json:"line" validate:"required"`
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req tleRequest
	if !s.decode(w, r, &req) {
		return
	}

	record, err := tle.Parse(req.Text, req.Options.toOptions())
	if err != nil {
		var verr *tle.ValidationError
		if errors.As(err, &verr) {
			metrics.IncParse("parse", "rejected")
			countIssues(verr.Errors, verr.Warnings)
			writeJSON(w, http.StatusUnprocessableEntity, verr)
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	metrics.IncParse("parse", "ok")
	countIssues(nil, record.Warnings)
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req tleRequest
	if !s.decode(w, r, &req) {
		return
	}

	res := tle.Validate(req.Text, req.Options.toOptions())
	outcome := "ok"
	if !res.IsValid {
		outcome = "rejected"
	}
	metrics.IncParse("validate", outcome)
	countIssues(res.Errors, res.Warnings)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req tleRequest
	if !s.decode(w, r, &req) {
		return
	}

	res := tle.ParseWithRecovery(req.Text, req.Options.toOptions())
	outcome := "ok"
	if !res.Success {
		outcome = "rejected"
	}
	metrics.IncParse("recover", outcome)
	countIssues(res.Errors, res.Warnings)
	for _, a := range res.RecoveryActions {
		metrics.IncRecoveryAction(string(a.Action))
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleChecksum(w http.ResponseWriter, r *http.Request) {
	var req checksumRequest
	if !s.decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, tle.ValidateChecksum(req.Line))
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	ds := s.store.Get()
	if ds == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no catalog loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":      ds.Source,
		"fetched_at":  ds.FetchedAt,
		"age_seconds": time.Since(ds.FetchedAt).Seconds(),
		"satellites":  len(ds.Satellites),
		"epoch_range": ds.EpochRange,
	})
}

func countIssues(errs, warns []tle.Issue) {
	for _, i := range errs {
		metrics.IncIssue(string(i.Code), string(i.Severity))
	}
	for _, i := range warns {
		metrics.IncIssue(string(i.Code), string(i.Severity))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) limitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probePath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		ip := httputil.ClientIP(r, s.trustProxy)
		if !s.limiter.acquire(ip) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many concurrent requests"})
			return
		}
		defer s.limiter.release(ip)
		next.ServeHTTP(w, r)
	})
}

// probePath returns true for health/readiness probe paths that should not
// log at INFO or count against limits.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(sr, r)

			duration := time.Since(start)
			level := slog.LevelInfo
			if probePath(r.URL.Path) {
				level = slog.LevelDebug
			}

			logger.Log(r.Context(), level, "request",
				"component", "api",
				"method", r.Method,
				"path", r.URL.Path,
				"status", strconv.Itoa(sr.statusCode),
				"duration_ms", duration.Milliseconds(),
				"remote_ip", r.RemoteAddr,
			)
		})
	}
}
