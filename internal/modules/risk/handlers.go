package risk

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
)

// Handlers provides HTTP handlers for the risk analytics endpoints.
type Handlers struct {
	service      *Service
	riskFreeRate float64
	period       string
	log          zerolog.Logger
}

// NewHandlers creates a new risk handlers instance. riskFreeRate and period
// are the configured defaults applied when a request omits them.
func NewHandlers(service *Service, riskFreeRate float64, period string, log zerolog.Logger) *Handlers {
	return &Handlers{
		service:      service,
		riskFreeRate: riskFreeRate,
		period:       period,
		log:          log.With().Str("module", "risk_handlers").Logger(),
	}
}

// RegisterRoutes registers all risk routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/risk", func(r chi.Router) {
		r.Post("/metrics", h.Metrics)
		r.Post("/correlation", h.Correlation)
		r.Post("/individual", h.Individual)
	})
}

// MetricsRequest is the request body for the dashboard and individual
// breakdown endpoints.
type MetricsRequest struct {
	Holdings         []domain.Holding `json:"holdings"`
	Period           string           `json:"period"`
	Confidence       float64          `json:"confidence"`
	RiskFreeRate     *float64         `json:"risk_free_rate"`
	InvestmentAmount float64          `json:"investment_amount"`
}

func (req *MetricsRequest) applyDefaults(h *Handlers) {
	if req.Period == "" {
		req.Period = h.period
	}
	if req.Confidence == 0 {
		req.Confidence = config.DefaultConfidence
	}
	if req.RiskFreeRate == nil {
		rate := h.riskFreeRate
		req.RiskFreeRate = &rate
	}
	if req.InvestmentAmount == 0 {
		req.InvestmentAmount = 100000
	}
}

// Metrics computes the full risk dashboard.
func (h *Handlers) Metrics(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	req.applyDefaults(h)

	dashboard, err := h.service.ComputeDashboard(req.Holdings, req.Period, req.Confidence, *req.RiskFreeRate, req.InvestmentAmount)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, dashboard)
}

// CorrelationRequest is the request body for the correlation endpoint.
type CorrelationRequest struct {
	Holdings []domain.Holding `json:"holdings"`
	Period   string           `json:"period"`
}

// Correlation computes the correlation and annualized covariance matrices.
func (h *Handlers) Correlation(w http.ResponseWriter, r *http.Request) {
	var req CorrelationRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	if req.Period == "" {
		req.Period = h.period
	}

	result, err := h.service.Matrices(req.Holdings, req.Period)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, result)
}

// Individual computes the per-asset risk breakdown.
func (h *Handlers) Individual(w http.ResponseWriter, r *http.Request) {
	var req MetricsRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	req.applyDefaults(h)

	results, err := h.service.IndividualRisk(req.Holdings, req.Period, req.Confidence, *req.RiskFreeRate)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"assets": results,
	})
}
