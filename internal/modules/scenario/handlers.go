package scenario

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
)

// Handlers provides HTTP handlers for the scenario endpoints.
type Handlers struct {
	engine *Engine
	period string
	log    zerolog.Logger
}

// NewHandlers creates a new scenario handlers instance. period is the
// configured default applied when a request omits it.
func NewHandlers(engine *Engine, period string, log zerolog.Logger) *Handlers {
	return &Handlers{
		engine: engine,
		period: period,
		log:    log.With().Str("module", "scenario_handlers").Logger(),
	}
}

// RegisterRoutes registers all scenario routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/scenario", func(r chi.Router) {
		r.Post("/shock", h.Shock)
		r.Post("/stress-test", h.StressTest)
		r.Get("/list", h.List)
	})
}

// ShockRequest is the request body for the shock analysis endpoint.
type ShockRequest struct {
	Holdings         []domain.Holding   `json:"holdings"`
	Shocks           map[string]float64 `json:"shocks"`
	Period           string             `json:"period"`
	Confidence       float64            `json:"confidence"`
	InvestmentAmount float64            `json:"investment_amount"`
}

// StressTestRequest is the request body for the stress test endpoint.
type StressTestRequest struct {
	Holdings         []domain.Holding `json:"holdings"`
	Scenario         string           `json:"scenario"`
	Period           string           `json:"period"`
	Confidence       float64          `json:"confidence"`
	InvestmentAmount float64          `json:"investment_amount"`
}

func (h *Handlers) applyDefaults(period *string, confidence, investment *float64) {
	if *period == "" {
		*period = h.period
	}
	if *confidence == 0 {
		*confidence = config.DefaultConfidence
	}
	if *investment == 0 {
		*investment = 100000
	}
}

// Shock applies custom per-ticker shocks to the portfolio.
func (h *Handlers) Shock(w http.ResponseWriter, r *http.Request) {
	var req ShockRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	h.applyDefaults(&req.Period, &req.Confidence, &req.InvestmentAmount)

	result, err := h.engine.ShockAnalysis(req.Holdings, req.Shocks, req.Period, req.Confidence, req.InvestmentAmount)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, result)
}

// StressTest runs a named historical or hypothetical stress scenario.
func (h *Handlers) StressTest(w http.ResponseWriter, r *http.Request) {
	var req StressTestRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	h.applyDefaults(&req.Period, &req.Confidence, &req.InvestmentAmount)

	result, err := h.engine.StressTest(req.Holdings, req.Scenario, req.Period, req.Confidence, req.InvestmentAmount)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, result)
}

// List returns the catalog of available stress scenarios.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"scenarios": h.engine.registry.All(),
	})
}
