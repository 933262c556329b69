// Package api provides the HTTP API server for the forecast service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/db/clickhouse"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/db/postgres"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/metrics"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
	contract "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
	apperrors "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/errors"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

const serviceName = "energy-forecast"

// Config holds server configuration
type Config struct {
	Port            string
	Version         string
	APIKey          string
	CORSOrigins     []string
	RateLimitRPS    float64
	RateLimitBurst  int
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	MaxRequestSize  int64
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Port:            "8080",
		Version:         "dev",
		CORSOrigins:     []string{"*"},
		RateLimitRPS:    20,
		RateLimitBurst:  40,
		RequestTimeout:  60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
		MaxRequestSize:  1 << 20,
	}
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// RunArchive looks up archived forecasts by run ID. A missing run is
// reported as (nil, nil).
type RunArchive interface {
	GetRun(ctx context.Context, id uuid.UUID) (*postgres.StoredRun, error)
}

// StateSummarizer aggregates archived forecasts per state.
type StateSummarizer interface {
	SummarizeStates(ctx context.Context, since time.Time) ([]clickhouse.StateSummary, error)
}

// DefaultSummaryWindow is used when /summary/states has no since parameter.
const DefaultSummaryWindow = 30 * 24 * time.Hour

// Server is the HTTP API server
type Server struct {
	svc        *service.Service
	cfg        Config
	logger     zerolog.Logger
	limiter    *rate.Limiter
	checks     map[string]ReadinessCheck
	runs       RunArchive
	summaries  StateSummarizer
	startTime  time.Time
	httpServer *http.Server
}

func NewServer(svc *service.Service, cfg Config, logger zerolog.Logger) *Server {
	if cfg.MaxRequestSize <= 0 {
		cfg.MaxRequestSize = DefaultConfig().MaxRequestSize
	}
	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return &Server{
		svc:       svc,
		cfg:       cfg,
		logger:    logger,
		limiter:   limiter,
		checks:    map[string]ReadinessCheck{},
		startTime: time.Now(),
	}
}

// AddReadinessCheck registers a dependency probed by /health/ready.
func (s *Server) AddReadinessCheck(name string, check ReadinessCheck) {
	s.checks[name] = check
}

// SetRunArchive enables GET /api/v1/runs/{id}.
func (s *Server) SetRunArchive(a RunArchive) {
	s.runs = a
}

// SetStateSummarizer enables GET /api/v1/summary/states.
func (s *Server) SetStateSummarizer(a StateSummarizer) {
	s.summaries = a
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)
	if s.cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	}
	r.Use(s.cors)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(platform.APIKeyMiddleware(s.cfg.APIKey))
		r.Use(s.rateLimit)

		r.Post("/predict", s.handlePredict)
		r.Post("/shap", s.handleExplain)
		r.Get("/states", s.handleListStates)
		r.Get("/states/{state}", s.handleGetState)
		r.Get("/appliances", s.handleAppliances)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Get("/summary/states", s.handleStateSummary)
	})

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", s.cfg.Port).Str("version", s.cfg.Version).Msg("Starting energy forecast API server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.cfg.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			s.jsonError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// HEALTH ENDPOINTS
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": serviceName,
		"version": s.cfg.Version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
			"checks": failures,
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"version": s.cfg.Version,
		"service": serviceName,
	})
}

// =============================================================================
// FORECAST ENDPOINTS
// =============================================================================

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req contract.PredictionRequest
	if !s.decode(w, r, &req) {
		return
	}

	run, err := s.svc.Predict(r.Context(), req, metrics.SourceHTTP)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, run.Response())
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var req contract.PredictionRequest
	if !s.decode(w, r, &req) {
		return
	}

	factors, err := s.svc.Explain(r.Context(), req)
	if err != nil {
		s.serviceError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, service.ExplainResponse(factors))
}

func (s *Server) handleListStates(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.svc.Engine().Registry().Names())
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "state")
	profile, ok := s.svc.Engine().Registry().Get(name)
	if !ok {
		s.jsonError(w, http.StatusNotFound, "state not found: "+name)
		return
	}
	s.jsonResponse(w, http.StatusOK, service.StateDetails(profile))
}

func (s *Server) handleAppliances(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, service.ApplianceTemplates())
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "run archive not configured")
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid run id")
		return
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Str("run_id", id.String()).Msg("run lookup failed")
		s.jsonError(w, http.StatusInternalServerError, "run lookup failed")
		return
	}
	if run == nil {
		s.jsonError(w, http.StatusNotFound, "run not found: "+id.String())
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

func (s *Server) handleStateSummary(w http.ResponseWriter, r *http.Request) {
	if s.summaries == nil {
		s.jsonError(w, http.StatusServiceUnavailable, "summary archive not configured")
		return
	}
	window := DefaultSummaryWindow
	if v := r.URL.Query().Get("since"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			s.jsonError(w, http.StatusBadRequest, "since must be a positive duration such as 720h")
			return
		}
		window = d
	}

	summaries, err := s.summaries.SummarizeStates(r.Context(), time.Now().Add(-window))
	if err != nil {
		s.logger.Error().Err(err).Msg("state summary failed")
		s.jsonError(w, http.StatusInternalServerError, "state summary failed")
		return
	}
	if summaries == nil {
		summaries = []clickhouse.StateSummary{}
	}
	s.jsonResponse(w, http.StatusOK, summaries)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.jsonError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		s.jsonError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) serviceError(w http.ResponseWriter, err error) {
	var e *apperrors.EnergyError
	switch {
	case apperrors.IsInvalidInput(err) && errors.As(err, &e):
		s.jsonResponse(w, http.StatusBadRequest, contract.ErrorResponse{
			Success: false,
			Error:   e.Message,
			Code:    e.Code,
			Field:   e.Field,
		})
	case apperrors.IsInvariant(err):
		s.logger.Error().Err(err).Msg("forecast invariant violated")
		s.jsonResponse(w, http.StatusInternalServerError, contract.ErrorResponse{
			Success: false,
			Error:   "internal forecast error",
			Code:    apperrors.ErrCodeInvariantViolation,
		})
	default:
		s.logger.Error().Err(err).Msg("forecast failed")
		s.jsonError(w, http.StatusInternalServerError, strings.TrimSpace(err.Error()))
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, contract.ErrorResponse{Success: false, Error: message})
}
