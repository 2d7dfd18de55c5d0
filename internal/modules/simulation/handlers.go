package simulation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
)

// Handlers provides HTTP handlers for the Monte Carlo endpoints.
type Handlers struct {
	service *Service
	period  string
	log     zerolog.Logger
}

// NewHandlers creates a new simulation handlers instance.
func NewHandlers(service *Service, period string, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		period:  period,
		log:     log.With().Str("module", "simulation_handlers").Logger(),
	}
}

// RegisterRoutes registers all simulation routes.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/simulation", func(r chi.Router) {
		r.Post("/monte-carlo", h.MonteCarlo)
	})
}

// MonteCarloRequest is the request body for a simulation run.
type MonteCarloRequest struct {
	Holdings         []domain.Holding `json:"holdings"`
	Period           string           `json:"period"`
	NumSimulations   int              `json:"num_simulations"`
	NumDays          int              `json:"num_days"`
	InvestmentAmount float64          `json:"investment_amount"`
	Confidence       float64          `json:"confidence"`
}

// MonteCarlo runs a correlated Monte Carlo simulation. Simulation count and
// horizon are clamped here, before the simulator is invoked, since raw cost
// is O(simulations × days × assets²).
func (h *Handlers) MonteCarlo(w http.ResponseWriter, r *http.Request) {
	var req MonteCarloRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	if req.Period == "" {
		req.Period = h.period
	}
	if req.NumSimulations <= 0 {
		req.NumSimulations = config.DefaultNumSimulations
	}
	if req.NumSimulations > config.MaxNumSimulations {
		h.log.Warn().Int("requested", req.NumSimulations).Int("max", config.MaxNumSimulations).Msg("Clamping simulation count")
		req.NumSimulations = config.MaxNumSimulations
	}
	if req.NumDays <= 0 {
		req.NumDays = config.DefaultHorizonDays
	}
	if req.NumDays > config.MaxHorizonDays {
		h.log.Warn().Int("requested", req.NumDays).Int("max", config.MaxHorizonDays).Msg("Clamping simulation horizon")
		req.NumDays = config.MaxHorizonDays
	}
	if req.InvestmentAmount == 0 {
		req.InvestmentAmount = 100000
	}
	if req.Confidence == 0 {
		req.Confidence = config.DefaultConfidence
	}

	result, err := h.service.Run(Request{
		Holdings:         req.Holdings,
		Period:           req.Period,
		NumSimulations:   req.NumSimulations,
		HorizonDays:      req.NumDays,
		InvestmentAmount: req.InvestmentAmount,
		Confidence:       req.Confidence,
	})
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteJSON(w, h.log, http.StatusOK, result)
}
