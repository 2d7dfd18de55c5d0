package scenario

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/internal/modules/returns"
	"github.com/quantfolio/riskd/pkg/formulas"
)

// MarketData is the slice of the market-data provider this module consumes.
type MarketData interface {
	FetchPricesWithBenchmark(tickers []string, period string) (domain.Table, domain.Series, error)
}

// Engine evaluates shocks and stress scenarios against a portfolio.
type Engine struct {
	marketData   MarketData
	engine       *returns.Engine
	registry     *Registry
	riskFreeRate float64
	log          zerolog.Logger
}

// NewEngine creates a new scenario engine.
func NewEngine(marketData MarketData, engine *returns.Engine, registry *Registry, riskFreeRate float64, log zerolog.Logger) *Engine {
	return &Engine{
		marketData:   marketData,
		engine:       engine,
		registry:     registry,
		riskFreeRate: riskFreeRate,
		log:          log.With().Str("module", "scenario").Logger(),
	}
}

// ShockAnalysis applies a map of ticker → signed fractional shock to the
// portfolio. The point-in-time dollar impact uses weight × shock; the
// stressed risk metrics distribute each shock uniformly across all
// historical trading days as a per-day mean shift.
func (e *Engine) ShockAnalysis(
	holdings []domain.Holding,
	shocks map[string]float64,
	period string,
	confidence float64,
	investmentAmount float64,
) (*ShockResult, error) {
	holdings, err := validateRequest(holdings, period, confidence)
	if err != nil {
		return nil, err
	}
	if len(shocks) == 0 {
		return nil, domain.NewValidationError("shocks map is empty")
	}

	normalizedShocks := make(map[string]float64, len(shocks))
	for ticker, shock := range shocks {
		normalizedShocks[strings.ToUpper(strings.TrimSpace(ticker))] = shock
	}

	e.log.Info().
		Int("num_holdings", len(holdings)).
		Int("num_shocks", len(normalizedShocks)).
		Str("period", period).
		Msg("Running shock analysis")

	assets, benchmark, err := e.marketData.FetchPricesWithBenchmark(domain.Tickers(holdings), period)
	if err != nil {
		return nil, err
	}

	assetRets := e.engine.DailyReturns(assets)
	benchRets := e.engine.SeriesReturns(benchmark)

	portRet, err := e.engine.PortfolioReturns(holdings, assetRets)
	if err != nil {
		return nil, err
	}
	alignedPort, alignedBench, err := returns.Align(portRet, benchRets)
	if err != nil {
		return nil, err
	}

	weightByTicker := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		weightByTicker[h.Ticker] = h.Weight
	}

	// Per-shock dollar impact; unshocked holdings contribute zero.
	shockedTickers := make([]string, 0, len(normalizedShocks))
	for ticker := range normalizedShocks {
		shockedTickers = append(shockedTickers, ticker)
	}
	sort.Strings(shockedTickers)

	details := make([]ShockDetail, 0, len(shockedTickers))
	totalImpact := 0.0
	for _, ticker := range shockedTickers {
		shock := normalizedShocks[ticker]
		weight := weightByTicker[ticker]
		impact := investmentAmount * weight * shock
		totalImpact += impact
		details = append(details, ShockDetail{
			Ticker:             ticker,
			ShockPct:           api.Round(shock*100, 2),
			Weight:             weight,
			DollarImpact:       api.Round(impact, 2),
			ContributionToLoss: api.Round(weight*shock*100, 4),
		})
	}

	beta := api.Round(formulas.Beta(alignedPort.Values, alignedBench.Values), 4)
	before := e.snapshot(alignedPort.Values, confidence)
	before.PortfolioValue = investmentAmount
	before.Beta = &beta

	// Stressed series: distribute each shock evenly across all days.
	stressed := domain.Table{
		Dates:   assetRets.Dates,
		Tickers: assetRets.Tickers,
		Columns: make(map[string][]float64, len(assetRets.Tickers)),
	}
	for _, ticker := range assetRets.Tickers {
		col := assetRets.Columns[ticker]
		if shock, ok := normalizedShocks[ticker]; ok && len(col) > 0 {
			dailyShift := shock / float64(len(col))
			shifted := make([]float64, len(col))
			for i, r := range col {
				shifted[i] = r + dailyShift
			}
			stressed.Columns[ticker] = shifted
		} else {
			stressed.Columns[ticker] = col
		}
	}

	stressedPort, err := e.engine.PortfolioReturns(holdings, stressed)
	if err != nil {
		return nil, err
	}
	alignedStressed, _, err := returns.Align(stressedPort, benchRets)
	if err != nil {
		return nil, err
	}

	newValue := investmentAmount + totalImpact
	changePct := api.Round(totalImpact/investmentAmount*100, 2)
	changeDollar := api.Round(totalImpact, 2)

	after := e.snapshot(alignedStressed.Values, confidence)
	after.PortfolioValue = api.Round(newValue, 2)
	after.PortfolioChangePct = &changePct
	after.PortfolioChangeDollar = &changeDollar

	return &ShockResult{
		ShocksApplied: details,
		Before:        before,
		After:         after,
	}, nil
}

// StressTest applies a named stress scenario: each holding's shock is
// estimated as marketDrop × beta × sector multiplier. Holdings carry no
// sector, so the scenario's "default" multiplier applies to every asset.
func (e *Engine) StressTest(
	holdings []domain.Holding,
	scenarioKey string,
	period string,
	confidence float64,
	investmentAmount float64,
) (*StressResult, error) {
	holdings, err := validateRequest(holdings, period, confidence)
	if err != nil {
		return nil, err
	}

	sc, err := e.registry.Get(scenarioKey)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("scenario", scenarioKey).
		Int("num_holdings", len(holdings)).
		Str("period", period).
		Msg("Running stress test")

	assets, benchmark, err := e.marketData.FetchPricesWithBenchmark(domain.Tickers(holdings), period)
	if err != nil {
		return nil, err
	}

	assetRets := e.engine.DailyReturns(assets)
	benchRets := e.engine.SeriesReturns(benchmark)

	multiplier := sc.SectorMultipliers["default"]
	impacts := make([]AssetImpact, 0, len(holdings))
	totalImpact := 0.0
	for _, h := range holdings {
		col, _ := assetRets.Column(h.Ticker)
		assetSeries := domain.Series{Dates: assetRets.Dates, Values: col}
		alignedAsset, alignedBench, err := returns.Align(assetSeries, benchRets)
		if err != nil {
			return nil, err
		}

		beta := formulas.Beta(alignedAsset.Values, alignedBench.Values)
		estimatedShock := sc.MarketDrop * beta * multiplier
		impact := investmentAmount * h.Weight * estimatedShock
		totalImpact += impact

		impacts = append(impacts, AssetImpact{
			Ticker:            h.Ticker,
			Weight:            h.Weight,
			Beta:              api.Round(beta, 4),
			SectorMultiplier:  multiplier,
			EstimatedShockPct: api.Round(estimatedShock*100, 2),
			DollarImpact:      api.Round(impact, 2),
		})
	}

	return &StressResult{
		Scenario: ScenarioInfo{
			Key:           sc.Key,
			Name:          sc.Name,
			Description:   sc.Description,
			MarketDropPct: api.Round(sc.MarketDrop*100, 2),
		},
		AssetImpacts: impacts,
		PortfolioImpact: PortfolioImpact{
			OriginalValue:   investmentAmount,
			StressedValue:   api.Round(investmentAmount+totalImpact, 2),
			TotalLossDollar: api.Round(totalImpact, 2),
			TotalLossPct:    api.Round(totalImpact/investmentAmount*100, 2),
		},
		AvailableScenarios: e.registry.Keys(),
	}, nil
}

// snapshot computes the metric set reported before and after a shock.
func (e *Engine) snapshot(portfolioReturns []float64, confidence float64) MetricsSnapshot {
	return MetricsSnapshot{
		AnnualizedReturnPct:     api.Round(formulas.AnnualizedReturn(portfolioReturns)*100, 2),
		AnnualizedVolatilityPct: api.Round(formulas.AnnualizedVolatility(portfolioReturns)*100, 2),
		HistoricalVaR1DPct:      api.Round(formulas.HistoricalVaR(portfolioReturns, confidence)*100, 4),
		SharpeRatio:             api.Ratio(api.Round(formulas.SharpeRatio(portfolioReturns, e.riskFreeRate), 4)),
		MaxDrawdownPct:          api.Round(formulas.MaxDrawdown(portfolioReturns)*100, 2),
	}
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
