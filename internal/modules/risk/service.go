package risk

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/internal/modules/returns"
	"github.com/quantfolio/riskd/pkg/formulas"
)

// equityCurveSMAPeriod is the smoothing window for the charted portfolio curve.
const equityCurveSMAPeriod = 20

// MarketData is the slice of the market-data provider this module consumes.
type MarketData interface {
	FetchPrices(tickers []string, period string) (domain.Table, error)
	FetchPricesWithBenchmark(tickers []string, period string) (domain.Table, domain.Series, error)
}

// Service computes portfolio-level and per-asset risk metrics.
type Service struct {
	marketData MarketData
	engine     *returns.Engine
	benchmark  string
	log        zerolog.Logger
}

// NewService creates a new risk metrics service.
func NewService(marketData MarketData, engine *returns.Engine, benchmark string, log zerolog.Logger) *Service {
	return &Service{
		marketData: marketData,
		engine:     engine,
		benchmark:  benchmark,
		log:        log.With().Str("module", "risk").Logger(),
	}
}

// ComputeDashboard computes the full risk dashboard for the given holdings.
func (s *Service) ComputeDashboard(
	holdings []domain.Holding,
	period string,
	confidence float64,
	riskFreeRate float64,
	investmentAmount float64,
) (*Dashboard, error) {
	holdings, err := validateRequest(holdings, period, confidence)
	if err != nil {
		return nil, err
	}

	tickers := domain.Tickers(holdings)
	s.log.Info().
		Strs("tickers", tickers).
		Str("period", period).
		Float64("confidence", confidence).
		Msg("Computing risk dashboard")

	portRet, benchRet, err := s.alignedPortfolioReturns(holdings, period)
	if err != nil {
		return nil, err
	}

	histVaR := formulas.HistoricalVaR(portRet.Values, confidence)
	annReturn := formulas.AnnualizedReturn(portRet.Values)
	totalReturn := formulas.TotalReturn(portRet.Values)
	vol := formulas.AnnualizedVolatility(portRet.Values)
	mdd := formulas.MaxDrawdown(portRet.Values)
	alpha := formulas.Alpha(portRet.Values, benchRet.Values, riskFreeRate)

	dashboard := &Dashboard{
		PortfolioSummary: PortfolioSummary{
			Tickers:          tickers,
			Weights:          domain.Weights(holdings),
			Period:           period,
			InvestmentAmount: investmentAmount,
			TradingDays:      portRet.Len(),
		},
		ReturnMetrics: ReturnMetrics{
			AnnualizedReturn:    api.Round(annReturn, 6),
			AnnualizedReturnPct: api.Round(annReturn*100, 2),
			TotalReturn:         api.Round(totalReturn, 6),
			TotalReturnPct:      api.Round(totalReturn*100, 2),
		},
		RiskMetrics: VolatilityMetrics{
			AnnualizedVolatility:    api.Round(vol, 6),
			AnnualizedVolatilityPct: api.Round(vol*100, 2),
			MaxDrawdown:             api.Round(mdd, 6),
			MaxDrawdownPct:          api.Round(mdd*100, 2),
		},
		VaRMetrics: VaRMetrics{
			ConfidenceLevel:       confidence,
			HistoricalVaR1D:       api.Round(histVaR, 6),
			HistoricalVaR1DPct:    api.Round(histVaR*100, 4),
			HistoricalVaR1DDollar: api.Round(histVaR*investmentAmount, 2),
			ParametricVaR1D:       api.Round(formulas.ParametricVaR(portRet.Values, confidence), 6),
			ParametricVaR1DPct:    api.Round(formulas.ParametricVaR(portRet.Values, confidence)*100, 4),
			HistoricalCVaR1D:      api.Round(formulas.HistoricalCVaR(portRet.Values, confidence), 6),
			HistoricalCVaR1DPct:   api.Round(formulas.HistoricalCVaR(portRet.Values, confidence)*100, 4),
			ParametricCVaR1D:      api.Round(formulas.ParametricCVaR(portRet.Values, confidence), 6),
			ParametricCVaR1DPct:   api.Round(formulas.ParametricCVaR(portRet.Values, confidence)*100, 4),
		},
		PerformanceRatios: PerformanceRatios{
			SharpeRatio:  api.Ratio(api.Round(formulas.SharpeRatio(portRet.Values, riskFreeRate), 4)),
			SortinoRatio: roundRatio(formulas.SortinoRatio(portRet.Values, riskFreeRate), 4),
		},
		BenchmarkMetrics: BenchmarkMetrics{
			Benchmark: s.benchmark,
			Beta:      api.Round(formulas.Beta(portRet.Values, benchRet.Values), 4),
			Alpha:     api.Round(alpha, 6),
			AlphaPct:  api.Round(alpha*100, 2),
		},
		HistoricalPerformance: buildHistoricalPerformance(portRet, benchRet),
	}

	return dashboard, nil
}

// Matrices computes the correlation matrix and the annualized covariance
// matrix for the holdings, ordered by input ticker order.
func (s *Service) Matrices(holdings []domain.Holding, period string) (*MatrixResult, error) {
	holdings, err := validateRequest(holdings, period, config.DefaultConfidence)
	if err != nil {
		return nil, err
	}

	tickers := domain.Tickers(holdings)
	prices, err := s.marketData.FetchPrices(tickers, period)
	if err != nil {
		return nil, err
	}

	rets := s.engine.DailyReturns(prices)
	if rets.Len() < 2 {
		return nil, domain.NewInsufficientDataError("need at least 2 return observations, got %d", rets.Len())
	}

	corr := s.engine.Correlation(rets)
	cov := s.engine.Covariance(rets, true)
	for i := range corr {
		for j := range corr[i] {
			corr[i][j] = api.Round(corr[i][j], 4)
			cov[i][j] = api.Round(cov[i][j], 8)
		}
	}

	return &MatrixResult{
		Tickers:           tickers,
		CorrelationMatrix: corr,
		CovarianceMatrix:  cov,
	}, nil
}

// IndividualRisk computes the per-asset metric breakdown.
func (s *Service) IndividualRisk(
	holdings []domain.Holding,
	period string,
	confidence float64,
	riskFreeRate float64,
) ([]AssetRisk, error) {
	holdings, err := validateRequest(holdings, period, confidence)
	if err != nil {
		return nil, err
	}

	tickers := domain.Tickers(holdings)
	assets, benchmark, err := s.marketData.FetchPricesWithBenchmark(tickers, period)
	if err != nil {
		return nil, err
	}

	assetRets := s.engine.DailyReturns(assets)
	benchRets := s.engine.SeriesReturns(benchmark)

	results := make([]AssetRisk, 0, len(holdings))
	for _, h := range holdings {
		col, _ := assetRets.Column(h.Ticker)
		assetSeries := domain.Series{Dates: assetRets.Dates, Values: col}

		alignedAsset, alignedBench, err := returns.Align(assetSeries, benchRets)
		if err != nil {
			return nil, err
		}

		results = append(results, AssetRisk{
			Ticker:                  h.Ticker,
			Weight:                  h.Weight,
			AnnualizedReturnPct:     api.Round(formulas.AnnualizedReturn(col)*100, 2),
			AnnualizedVolatilityPct: api.Round(formulas.AnnualizedVolatility(col)*100, 2),
			HistoricalVaR1DPct:      api.Round(formulas.HistoricalVaR(col, confidence)*100, 4),
			SharpeRatio:             api.Ratio(api.Round(formulas.SharpeRatio(col, riskFreeRate), 4)),
			Beta:                    api.Round(formulas.Beta(alignedAsset.Values, alignedBench.Values), 4),
			MaxDrawdownPct:          api.Round(formulas.MaxDrawdown(col)*100, 2),
		})
	}

	return results, nil
}

// alignedPortfolioReturns fetches history, builds the weighted portfolio
// return series, and aligns it with the benchmark return series.
func (s *Service) alignedPortfolioReturns(holdings []domain.Holding, period string) (domain.Series, domain.Series, error) {
	assets, benchmark, err := s.marketData.FetchPricesWithBenchmark(domain.Tickers(holdings), period)
	if err != nil {
		return domain.Series{}, domain.Series{}, err
	}

	assetRets := s.engine.DailyReturns(assets)
	benchRets := s.engine.SeriesReturns(benchmark)

	portRet, err := s.engine.PortfolioReturns(holdings, assetRets)
	if err != nil {
		return domain.Series{}, domain.Series{}, err
	}

	alignedPort, alignedBench, err := returns.Align(portRet, benchRets)
	if err != nil {
		return domain.Series{}, domain.Series{}, err
	}
	if alignedPort.Len() < 2 {
		return domain.Series{}, domain.Series{}, domain.NewInsufficientDataError(
			"need at least 2 overlapping observations with benchmark, got %d", alignedPort.Len())
	}

	return alignedPort, alignedBench, nil
}

func buildHistoricalPerformance(portRet, benchRet domain.Series) HistoricalPerformance {
	perf := HistoricalPerformance{
		Dates:     make([]string, portRet.Len()),
		Portfolio: make([]float64, portRet.Len()),
		Benchmark: make([]float64, benchRet.Len()),
	}

	portWealth := formulas.CumulativeWealth(portRet.Values)
	benchWealth := formulas.CumulativeWealth(benchRet.Values)
	for i := range portWealth {
		perf.Dates[i] = portRet.Dates[i].Format("2006-01-02")
		perf.Portfolio[i] = api.Round(portWealth[i], 4)
		perf.Benchmark[i] = api.Round(benchWealth[i], 4)
	}

	if len(portWealth) >= equityCurveSMAPeriod {
		sma := talib.Sma(portWealth, equityCurveSMAPeriod)
		perf.PortfolioSMA20 = make([]float64, len(sma))
		for i, v := range sma {
			perf.PortfolioSMA20[i] = api.Round(v, 4)
		}
	}

	return perf
}

func validateRequest(holdings []domain.Holding, period string, confidence float64) ([]domain.Holding, error) {
	normalized, err := domain.NormalizeHoldings(holdings)
	if err != nil {
		return nil, err
	}
	if !config.IsValidPeriod(period) {
		return nil, domain.NewValidationError("invalid period %q", period)
	}
	if err := domain.ValidateConfidence(confidence); err != nil {
		return nil, err
	}
	return normalized, nil
}

func roundRatio(v float64, decimals int) api.Ratio {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return api.Ratio(v)
	}
	return api.Ratio(api.Round(v, decimals))
}
