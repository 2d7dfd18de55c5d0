package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/clients/yahoo"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/modules/risk"
	"github.com/quantfolio/riskd/internal/modules/scenario"
	"github.com/quantfolio/riskd/internal/modules/simulation"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Config      *config.Config
	YahooClient *yahoo.Client
	PriceCache  *yahoo.PriceCache

	RiskHandlers       *risk.Handlers
	SimulationHandlers *simulation.Handlers
	ScenarioHandlers   *scenario.Handlers
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	riskHandlers       *risk.Handlers
	simulationHandlers *simulation.Handlers
	scenarioHandlers   *scenario.Handlers
	systemHandlers     *SystemHandlers
	portfolioHandlers  *PortfolioHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:             chi.NewRouter(),
		log:                cfg.Log.With().Str("component", "server").Logger(),
		cfg:                cfg.Config,
		riskHandlers:       cfg.RiskHandlers,
		simulationHandlers: cfg.SimulationHandlers,
		scenarioHandlers:   cfg.ScenarioHandlers,
		systemHandlers:     NewSystemHandlers(cfg.Log, cfg.PriceCache),
		portfolioHandlers:  NewPortfolioHandlers(cfg.Log, cfg.YahooClient),
	}

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout; Monte Carlo runs can be slow on small machines
	s.router.Use(middleware.Timeout(120 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.systemHandlers.HandleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		s.riskHandlers.RegisterRoutes(r)
		s.simulationHandlers.RegisterRoutes(r)
		s.scenarioHandlers.RegisterRoutes(r)
		s.portfolioHandlers.RegisterRoutes(r)
		s.systemHandlers.RegisterRoutes(r)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
