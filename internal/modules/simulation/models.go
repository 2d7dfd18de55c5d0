package simulation

import "github.com/quantfolio/riskd/internal/config"

const sampledPathLimit = config.SampledPathLimit

// Params echoes the effective (clamped) settings of a simulation run.
type Params struct {
	NumSimulations   int       `json:"num_simulations"`
	NumDays          int       `json:"num_days"`
	InvestmentAmount float64   `json:"investment_amount"`
	ConfidenceLevel  float64   `json:"confidence_level"`
	Tickers          []string  `json:"tickers"`
	Weights          []float64 `json:"weights"`
}

// TerminalStats summarizes the distribution of final-day portfolio values.
type TerminalStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	P5     float64 `json:"p5"`
	P25    float64 `json:"p25"`
	P75    float64 `json:"p75"`
	P95    float64 `json:"p95"`
}

// VaRBlock is the simulation-derived one-day Value at Risk.
type VaRBlock struct {
	VaR1D       float64 `json:"var_1d"`
	VaR1DPct    float64 `json:"var_1d_pct"`
	VaR1DDollar float64 `json:"var_1d_dollar"`
}

// Result is the full simulation response.
type Result struct {
	SimulationID         string               `json:"simulation_id"`
	SimulationParams     Params               `json:"simulation_params"`
	PercentilePaths      map[string][]float64 `json:"percentile_paths"`
	TerminalValueStats   TerminalStats        `json:"terminal_value_stats"`
	MonteCarloVaR        VaRBlock             `json:"monte_carlo_var"`
	ProbabilityOfLoss    float64              `json:"probability_of_loss"`
	ProbabilityOfLossPct float64              `json:"probability_of_loss_pct"`
	SampledPaths         [][]float64          `json:"sampled_paths"`
	Days                 []int                `json:"days"`
}
