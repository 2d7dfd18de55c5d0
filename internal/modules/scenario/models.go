package scenario

import "github.com/quantfolio/riskd/internal/api"

// ShockDetail is the per-ticker breakdown of an applied shock.
type ShockDetail struct {
	Ticker             string  `json:"ticker"`
	ShockPct           float64 `json:"shock_pct"`
	Weight             float64 `json:"weight"`
	DollarImpact       float64 `json:"dollar_impact"`
	ContributionToLoss float64 `json:"contribution_to_loss_pct"`
}

// MetricsSnapshot is the before/after metric set of a shock analysis.
type MetricsSnapshot struct {
	PortfolioValue          float64   `json:"portfolio_value"`
	PortfolioChangePct      *float64  `json:"portfolio_change_pct,omitempty"`
	PortfolioChangeDollar   *float64  `json:"portfolio_change_dollar,omitempty"`
	AnnualizedReturnPct     float64   `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64   `json:"annualized_volatility_pct"`
	HistoricalVaR1DPct      float64   `json:"historical_var_1d_pct"`
	SharpeRatio             api.Ratio `json:"sharpe_ratio"`
	Beta                    *float64  `json:"beta,omitempty"`
	MaxDrawdownPct          float64   `json:"max_drawdown_pct"`
}

// ShockResult is the response of a shock analysis.
type ShockResult struct {
	ShocksApplied []ShockDetail   `json:"shocks_applied"`
	Before        MetricsSnapshot `json:"before"`
	After         MetricsSnapshot `json:"after"`
}

// ScenarioInfo echoes the applied stress scenario.
type ScenarioInfo struct {
	Key           string  `json:"key"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	MarketDropPct float64 `json:"market_drop_pct"`
}

// AssetImpact is the per-holding impact of a stress scenario.
type AssetImpact struct {
	Ticker            string  `json:"ticker"`
	Weight            float64 `json:"weight"`
	Beta              float64 `json:"beta"`
	SectorMultiplier  float64 `json:"sector_multiplier"`
	EstimatedShockPct float64 `json:"estimated_shock_pct"`
	DollarImpact      float64 `json:"dollar_impact"`
}

// PortfolioImpact is the aggregate effect of a stress scenario.
type PortfolioImpact struct {
	OriginalValue   float64 `json:"original_value"`
	StressedValue   float64 `json:"stressed_value"`
	TotalLossDollar float64 `json:"total_loss_dollar"`
	TotalLossPct    float64 `json:"total_loss_pct"`
}

// StressResult is the response of a stress test.
type StressResult struct {
	Scenario           ScenarioInfo    `json:"scenario"`
	AssetImpacts       []AssetImpact   `json:"asset_impacts"`
	PortfolioImpact    PortfolioImpact `json:"portfolio_impact"`
	AvailableScenarios []string        `json:"available_scenarios"`
}
