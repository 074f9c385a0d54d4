// Package api provides the HTTP server for pulsewatch.
//
// It exposes the analysis endpoints, report downloads, health and metrics,
// and a WebSocket stream of analysis events.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seenimoa/pulsewatch/internal/config"
	"github.com/seenimoa/pulsewatch/internal/events"
	"github.com/seenimoa/pulsewatch/internal/metrics"
	"github.com/seenimoa/pulsewatch/pkg/models"
)

// Analyzer runs the analysis pipeline. *pipeline.Pipeline satisfies it.
type Analyzer interface {
	Aggregate(ctx context.Context, queries []string, socialOnly bool) *models.AnalysisReport
}

// Deps are the collaborators a Server needs.
type Deps struct {
	Analyzer  Analyzer
	Hub       *events.Hub      // created when nil
	Publisher events.Publisher // extra sink such as NATS; may be nil
	Logger    *slog.Logger
	Version   string
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	cfg        *config.Config
	analyzer   Analyzer
	hub        *events.Hub
	publisher  events.Publisher
	reportsDir string
	logger     *slog.Logger
	version    string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	pub := events.Multi{deps.Hub}
	if deps.Publisher != nil {
		pub = append(pub, deps.Publisher)
	}

	srv := &Server{
		cfg:        cfg,
		analyzer:   deps.Analyzer,
		hub:        deps.Hub,
		publisher:  pub,
		reportsDir: cfg.Report.Dir,
		logger:     deps.Logger,
		version:    deps.Version,
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket event hub.
func (s *Server) Hub() *events.Hub {
	return s.hub
}

// ListenAndServe starts the HTTP server and the event hub, and shuts both
// down gracefully on SIGINT or SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.cfg.API.RequestTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.hub.Run(hubCtx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-done:
	}

	s.logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	if s.cfg.API.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.cfg.API.RequestTimeout))
	}

	r.Use(cors.Handler(corsOptions(s.cfg.API.CORSOrigins)))

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Analysis
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/analyze_social", s.handleAnalyzeSocial)
	r.Get("/download/{filename}", s.handleDownload)

	// Events
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	return r
}

// corsOptions allows credentials only for an explicit origin list. With no
// origins configured any origin is accepted, but without credentials.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(origins) == 0 {
		opts.AllowedOrigins = []string{"*"}
		opts.AllowCredentials = false
	}
	return opts
}

// instrument logs each request and records Prometheus metrics keyed by the
// matched route pattern.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Companies []string `json:"companies"`
}

// AnalyzeSocialRequest is the body of POST /analyze_social.
type AnalyzeSocialRequest struct {
	Handles []string `json:"handles"`
}

// AnalyzeResponse is returned by POST /analyze.
type AnalyzeResponse struct {
	Summary        string                        `json:"summary"`
	ComparisonData map[string]models.QueryResult `json:"comparison_data"`
	ReportURL      *string                       `json:"report_url"`
}

// AnalyzeSocialResponse is returned by POST /analyze_social.
type AnalyzeSocialResponse struct {
	Summary      string                        `json:"summary"`
	AnalysisData map[string]models.QueryResult `json:"analysis_data"`
	ReportURL    *string                       `json:"report_url"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    s.version,
			"ws_clients": s.hub.ClientCount(),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	// An unreadable body is treated like an empty one.
	_ = json.NewDecoder(r.Body).Decode(&req)
	if len(req.Companies) == 0 {
		writeError(w, http.StatusBadRequest, "Company names are required")
		return
	}

	rep := s.analyzer.Aggregate(r.Context(), req.Companies, false)
	events.Notify(r.Context(), s.publisher, events.AnalysisComplete(rep, false), s.logger)

	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Summary:        rep.Summary,
		ComparisonData: rep.Results,
		ReportURL:      rep.ReportURL,
	})
}

func (s *Server) handleAnalyzeSocial(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeSocialRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	if len(req.Handles) == 0 {
		writeError(w, http.StatusBadRequest, "Social handles are required")
		return
	}

	rep := s.analyzer.Aggregate(r.Context(), req.Handles, true)
	events.Notify(r.Context(), s.publisher, events.AnalysisComplete(rep, true), s.logger)

	writeJSON(w, http.StatusOK, AnalyzeSocialResponse{
		Summary:      rep.Summary,
		AnalysisData: rep.Results,
		ReportURL:    rep.ReportURL,
	})
}

// handleDownload serves a report as an attachment. Only the base name of
// the requested path is used.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "filename"))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	path := filepath.Join(s.reportsDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if filepath.Ext(name) == ".pdf" {
		w.Header().Set("Content-Type", "application/pdf")
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
