package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/clients/yahoo"
	"github.com/quantfolio/riskd/internal/domain"
)

// PortfolioHandlers provides ticker validation and live quote endpoints.
type PortfolioHandlers struct {
	log    zerolog.Logger
	client *yahoo.Client
}

// NewPortfolioHandlers creates a new portfolio handlers instance.
func NewPortfolioHandlers(log zerolog.Logger, client *yahoo.Client) *PortfolioHandlers {
	return &PortfolioHandlers{
		log:    log.With().Str("component", "portfolio").Logger(),
		client: client,
	}
}

// RegisterRoutes registers the portfolio routes under /api.
func (h *PortfolioHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Post("/validate-tickers", h.HandleValidateTickers)
		r.Post("/live-prices", h.HandleLivePrices)
	})
}

// TickersRequest is the request body shared by the portfolio endpoints.
type TickersRequest struct {
	Tickers []string `json:"tickers"`
}

func (req *TickersRequest) normalize() error {
	if len(req.Tickers) == 0 {
		return domain.NewValidationError("tickers list is empty")
	}
	for i, t := range req.Tickers {
		req.Tickers[i] = strings.ToUpper(strings.TrimSpace(t))
	}
	return nil
}

// HandleValidateTickers probes each ticker for recent price history.
// POST /api/portfolio/validate-tickers
func (h *PortfolioHandlers) HandleValidateTickers(w http.ResponseWriter, r *http.Request) {
	var req TickersRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	if err := req.normalize(); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	valid, invalid := h.client.ValidateTickers(req.Tickers)
	api.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"valid":   valid,
		"invalid": invalid,
	})
}

// HandleLivePrices returns the latest close and day change per ticker.
// POST /api/portfolio/live-prices
func (h *PortfolioHandlers) HandleLivePrices(w http.ResponseWriter, r *http.Request) {
	var req TickersRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.WriteError(w, h.log, err)
		return
	}
	if err := req.normalize(); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	prices := h.client.FetchLivePrices(req.Tickers)
	api.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"prices": prices,
	})
}
