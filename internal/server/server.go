// Package server is the HTTP + WebSocket API surface over the analysis
// application.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"privyscope/internal/app"
	"privyscope/internal/interfaces"
	"privyscope/internal/logging"
	"privyscope/internal/model"
	"privyscope/internal/store"
)

type Server struct {
	cfg          Config
	app          *app.Application
	orchestrator *app.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       interfaces.Logger
}

// NewServer creates a Server with its own Application and Orchestrator.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	a, err := app.NewApplication(cfg.AppConfig, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		app:          a,
		orchestrator: app.NewOrchestrator(a),
		router:       chi.NewRouter(),
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Application returns the underlying application for advanced use (tests, etc.).
func (s *Server) Application() *app.Application {
	return s.app
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/analyze", s.optionsHandler("POST"))
	r.Options("/analyze/url", s.optionsHandler("POST"))
	r.Options("/sites", s.optionsHandler("GET"))
	r.Options("/sites/{domain}/analyses", s.optionsHandler("GET"))
	r.Options("/baselines", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))
	r.Options("/ws/analyze", s.optionsHandler("GET"))

	// Analyses
	r.Post("/analyze", s.handleAnalyzeSnapshot)
	r.Post("/analyze/url", s.handleAnalyzeURL)

	// History
	r.Get("/sites", s.handleListSites)
	r.Get("/sites/{domain}/analyses", s.handleListAnalyses)

	// Reference data
	r.Get("/baselines", s.handleBaselines)
	r.Get("/healthz", s.handleHealthz)

	// Jobs over REST
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket for streamed analyses
	r.Get("/ws/analyze", s.handleAnalyzeWS)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []interfaces.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, interfaces.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			fields = append(fields, interfaces.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the application and its resources.
func (s *Server) Close() {
	if s.app != nil {
		s.app.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// Analyses

func (s *Server) handleAnalyzeSnapshot(w http.ResponseWriter, r *http.Request) {
	var in model.AnalysisInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	res, err := s.app.AnalyzeSnapshot(r.Context(), in)
	if err != nil {
		s.logger.Warn("analyzing snapshot", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Info("analyzed snapshot",
		interfaces.Field{Key: "page_url", Value: res.PageURL},
		interfaces.Field{Key: "level", Value: res.Score.Level})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeURLRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	res, err := s.app.AnalyzeURL(r.Context(), body.URL, body.SiteCategory)
	if err != nil {
		s.logger.Warn("analyzing url",
			interfaces.Field{Key: "url", Value: body.URL},
			interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.logger.Info("analyzed url",
		interfaces.Field{Key: "url", Value: body.URL},
		interfaces.Field{Key: "level", Value: res.Score.Level})
	writeJSON(w, http.StatusOK, res)
}

// History

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.app.Store().ListSites(r.Context())
	if err != nil {
		s.logger.Warn("listing sites", interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("listed sites", interfaces.Field{Key: "count", Value: len(sites)})
	writeJSON(w, http.StatusOK, sites)
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	records, err := s.app.Store().ListAnalyses(r.Context(), domain)
	if err != nil {
		if errors.Is(err, store.ErrSiteNotFound) {
			writeError(w, http.StatusNotFound, "site not found")
			return
		}
		s.logger.Warn("listing analyses",
			interfaces.Field{Key: "domain", Value: domain},
			interfaces.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("listed analyses",
		interfaces.Field{Key: "domain", Value: domain},
		interfaces.Field{Key: "count", Value: len(records)})
	writeJSON(w, http.StatusOK, records)
}

// Reference data

func (s *Server) handleBaselines(w http.ResponseWriter, r *http.Request) {
	baselines := s.app.Baselines()
	if cat := r.URL.Query().Get("category"); cat != "" {
		writeJSON(w, http.StatusOK, baselines.ForCategory(model.NormalizeCategory(cat)))
		return
	}
	writeJSON(w, http.StatusOK, baselines)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Jobs (REST)

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	s.logger.Info("listed jobs", interfaces.Field{Key: "count", Value: len(jobs)})
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", interfaces.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// WebSocket

// handleAnalyzeWS accepts a single WSAnalyzeRequest message, starts the job
// and streams its events until the channel closes or the client goes away.
func (s *Server) handleAnalyzeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", interfaces.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	var req WSAnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(ErrorResponse{Error: "invalid JSON"})
		return
	}
	if req.PageURL == "" {
		_ = conn.WriteJSON(ErrorResponse{Error: "missing pageUrl"})
		return
	}

	job := s.orchestrator.StartAnalyzeJob(r.Context(), req.AnalysisInput, req.Acquire)
	s.logger.Info("started analyze job",
		interfaces.Field{Key: "job_id", Value: job.ID},
		interfaces.Field{Key: "page_url", Value: req.PageURL},
		interfaces.Field{Key: "acquire", Value: req.Acquire})
	// Encode a snapshot; the job goroutine mutates the original concurrently.
	_ = conn.WriteJSON(s.orchestrator.GetJob(job.ID))

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel job
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}
