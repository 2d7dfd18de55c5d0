package simulation

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/internal/modules/returns"
	"github.com/quantfolio/riskd/pkg/formulas"
)

// MarketData is the slice of the market-data provider this module consumes.
type MarketData interface {
	FetchPrices(tickers []string, period string) (domain.Table, error)
}

// Service estimates market parameters from history and runs the Monte Carlo
// simulator on them.
type Service struct {
	marketData MarketData
	engine     *returns.Engine
	simulator  *Simulator
	log        zerolog.Logger
}

// NewService creates a new simulation service.
func NewService(marketData MarketData, engine *returns.Engine, simulator *Simulator, log zerolog.Logger) *Service {
	return &Service{
		marketData: marketData,
		engine:     engine,
		simulator:  simulator,
		log:        log.With().Str("module", "simulation_service").Logger(),
	}
}

// Request holds the validated, clamped settings for a simulation run.
type Request struct {
	Holdings         []domain.Holding
	Period           string
	NumSimulations   int
	HorizonDays      int
	InvestmentAmount float64
	Confidence       float64
}

// Run fetches history for the holdings, estimates the daily mean vector and
// covariance matrix, and produces the aggregated simulation result.
func (s *Service) Run(req Request) (*Result, error) {
	holdings, err := domain.NormalizeHoldings(req.Holdings)
	if err != nil {
		return nil, err
	}
	if !config.IsValidPeriod(req.Period) {
		return nil, domain.NewValidationError("invalid period %q", req.Period)
	}
	if err := domain.ValidateConfidence(req.Confidence); err != nil {
		return nil, err
	}

	tickers := domain.Tickers(holdings)
	prices, err := s.marketData.FetchPrices(tickers, req.Period)
	if err != nil {
		return nil, err
	}

	rets := s.engine.DailyReturns(prices)
	if rets.Len() < 2 {
		return nil, domain.NewInsufficientDataError("need at least 2 return observations to estimate covariance, got %d", rets.Len())
	}

	means := make([]float64, len(tickers))
	for i, t := range tickers {
		means[i] = formulas.Mean(rets.Columns[t])
	}

	out, err := s.simulator.Run(Inputs{
		MeanDaily:      means,
		Covariance:     s.engine.Covariance(rets, false),
		Weights:        domain.Weights(holdings),
		NumSimulations: req.NumSimulations,
		HorizonDays:    req.HorizonDays,
		Investment:     req.InvestmentAmount,
		Confidence:     req.Confidence,
	})
	if err != nil {
		return nil, err
	}

	return s.buildResult(req, holdings, out), nil
}

func (s *Service) buildResult(req Request, holdings []domain.Holding, out *RunOutput) *Result {
	days := make([]int, req.HorizonDays+1)
	for i := range days {
		days[i] = i
	}

	for _, path := range out.PercentilePaths {
		for i, v := range path {
			path[i] = api.Round(v, 2)
		}
	}
	for i := range out.SampledPaths {
		for j, v := range out.SampledPaths[i] {
			out.SampledPaths[i][j] = api.Round(v, 2)
		}
	}

	return &Result{
		SimulationID: uuid.New().String(),
		SimulationParams: Params{
			NumSimulations:   req.NumSimulations,
			NumDays:          req.HorizonDays,
			InvestmentAmount: req.InvestmentAmount,
			ConfidenceLevel:  req.Confidence,
			Tickers:          domain.Tickers(holdings),
			Weights:          domain.Weights(holdings),
		},
		PercentilePaths: out.PercentilePaths,
		TerminalValueStats: TerminalStats{
			Mean:   api.Round(out.TerminalStats.Mean, 2),
			Median: api.Round(out.TerminalStats.Median, 2),
			Std:    api.Round(out.TerminalStats.Std, 2),
			Min:    api.Round(out.TerminalStats.Min, 2),
			Max:    api.Round(out.TerminalStats.Max, 2),
			P5:     api.Round(out.TerminalStats.P5, 2),
			P25:    api.Round(out.TerminalStats.P25, 2),
			P75:    api.Round(out.TerminalStats.P75, 2),
			P95:    api.Round(out.TerminalStats.P95, 2),
		},
		MonteCarloVaR: VaRBlock{
			VaR1D:       api.Round(out.VaR1D, 6),
			VaR1DPct:    api.Round(out.VaR1D*100, 4),
			VaR1DDollar: api.Round(out.VaR1D*req.InvestmentAmount, 2),
		},
		ProbabilityOfLoss:    api.Round(out.ProbabilityLoss, 4),
		ProbabilityOfLossPct: api.Round(out.ProbabilityLoss*100, 2),
		SampledPaths:         out.SampledPaths,
		Days:                 days,
	}
}
