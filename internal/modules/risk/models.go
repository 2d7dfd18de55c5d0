package risk

import "github.com/quantfolio/riskd/internal/api"

// PortfolioSummary echoes the analyzed portfolio and lookback window.
type PortfolioSummary struct {
	Tickers          []string  `json:"tickers"`
	Weights          []float64 `json:"weights"`
	Period           string    `json:"period"`
	InvestmentAmount float64   `json:"investment_amount"`
	TradingDays      int       `json:"trading_days"`
}

// ReturnMetrics holds realized return figures, as fractions and percents.
type ReturnMetrics struct {
	AnnualizedReturn    float64 `json:"annualized_return"`
	AnnualizedReturnPct float64 `json:"annualized_return_pct"`
	TotalReturn         float64 `json:"total_return"`
	TotalReturnPct      float64 `json:"total_return_pct"`
}

// VolatilityMetrics holds realized risk figures.
type VolatilityMetrics struct {
	AnnualizedVolatility    float64 `json:"annualized_volatility"`
	AnnualizedVolatilityPct float64 `json:"annualized_volatility_pct"`
	MaxDrawdown             float64 `json:"max_drawdown"`
	MaxDrawdownPct          float64 `json:"max_drawdown_pct"`
}

// VaRMetrics holds one-day Value at Risk figures at the requested confidence.
type VaRMetrics struct {
	ConfidenceLevel        float64 `json:"confidence_level"`
	HistoricalVaR1D        float64 `json:"historical_var_1d"`
	HistoricalVaR1DPct     float64 `json:"historical_var_1d_pct"`
	HistoricalVaR1DDollar  float64 `json:"historical_var_1d_dollar"`
	ParametricVaR1D        float64 `json:"parametric_var_1d"`
	ParametricVaR1DPct     float64 `json:"parametric_var_1d_pct"`
	HistoricalCVaR1D       float64 `json:"historical_cvar_1d"`
	HistoricalCVaR1DPct    float64 `json:"historical_cvar_1d_pct"`
	ParametricCVaR1D       float64 `json:"parametric_cvar_1d"`
	ParametricCVaR1DPct    float64 `json:"parametric_cvar_1d_pct"`
}

// PerformanceRatios holds risk-adjusted performance ratios.
type PerformanceRatios struct {
	SharpeRatio  api.Ratio `json:"sharpe_ratio"`
	SortinoRatio api.Ratio `json:"sortino_ratio"`
}

// BenchmarkMetrics holds the benchmark-relative figures.
type BenchmarkMetrics struct {
	Benchmark string  `json:"benchmark"`
	Beta      float64 `json:"beta"`
	Alpha     float64 `json:"alpha"`
	AlphaPct  float64 `json:"alpha_pct"`
}

// HistoricalPerformance holds the equity curves for charting: cumulative
// portfolio and benchmark wealth plus a 20-day SMA overlay of the portfolio
// curve.
type HistoricalPerformance struct {
	Dates          []string  `json:"dates"`
	Portfolio      []float64 `json:"portfolio"`
	Benchmark      []float64 `json:"benchmark"`
	PortfolioSMA20 []float64 `json:"portfolio_sma20"`
}

// Dashboard is the full risk dashboard for a portfolio.
type Dashboard struct {
	PortfolioSummary      PortfolioSummary      `json:"portfolio_summary"`
	ReturnMetrics         ReturnMetrics         `json:"return_metrics"`
	RiskMetrics           VolatilityMetrics     `json:"risk_metrics"`
	VaRMetrics            VaRMetrics            `json:"var_metrics"`
	PerformanceRatios     PerformanceRatios     `json:"performance_ratios"`
	BenchmarkMetrics      BenchmarkMetrics      `json:"benchmark_metrics"`
	HistoricalPerformance HistoricalPerformance `json:"historical_performance"`
}

// MatrixResult holds the correlation and annualized covariance matrices,
// both ordered by the input ticker order.
type MatrixResult struct {
	Tickers           []string    `json:"tickers"`
	CorrelationMatrix [][]float64 `json:"correlation_matrix"`
	CovarianceMatrix  [][]float64 `json:"covariance_matrix"`
}

// AssetRisk is the per-asset breakdown of the core risk metrics.
type AssetRisk struct {
	Ticker                  string    `json:"ticker"`
	Weight                  float64   `json:"weight"`
	AnnualizedReturnPct     float64   `json:"annualized_return_pct"`
	AnnualizedVolatilityPct float64   `json:"annualized_volatility_pct"`
	HistoricalVaR1DPct      float64   `json:"historical_var_1d_pct"`
	SharpeRatio             api.Ratio `json:"sharpe_ratio"`
	Beta                    float64   `json:"beta"`
	MaxDrawdownPct          float64   `json:"max_drawdown_pct"`
}
