package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/config"
	"github.com/dgallion1/agridoc/internal/history"
	"github.com/dgallion1/agridoc/internal/metrics"
	"github.com/dgallion1/agridoc/internal/pipeline"
)

// Server is the HTTP API server for agridoc.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	history      *history.Store
	stats        *assistant.LLMStats
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. orch is nil when
// generation is not configured; the ask endpoints then answer 503.
func NewServer(orch *pipeline.Orchestrator, hist *history.Store, stats *assistant.LLMStats, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		history:      hist,
		stats:        stats,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log, s.metrics))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.AgridocAPIKey, s.log))
		if s.cfg.RateLimitRPS > 0 {
			r.Use(RateLimit(rate.NewLimiter(rate.Limit(s.cfg.RateLimitRPS), s.cfg.RateLimitBurst)))
		}

		r.Post("/api/render", s.handleRender)
		r.Post("/api/render/fields", s.handleRenderFields)
		r.Post("/api/render/upload", s.handleRenderUpload)

		r.Post("/api/ask", s.handleAsk)
		r.Get("/api/ask/{jobID}", s.handleAskStatus)

		r.Get("/api/history", s.handleListHistory)
		r.Get("/api/history/{id}", s.handleGetHistory)
		r.Delete("/api/history", s.handleClearHistory)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
