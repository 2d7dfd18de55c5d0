package scenario

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/internal/modules/returns"
)

// MockMarketData is a mock market-data provider for testing
type MockMarketData struct {
	mock.Mock
}

func (m *MockMarketData) FetchPricesWithBenchmark(tickers []string, period string) (domain.Table, domain.Series, error) {
	args := m.Called(tickers, period)
	return args.Get(0).(domain.Table), args.Get(1).(domain.Series), args.Error(2)
}

var fixturePrices = map[string][]float64{
	"AAPL": {100, 102, 101, 104, 103, 106, 105, 108, 107, 110, 109, 112},
	"MSFT": {200, 201, 203, 202, 205, 204, 207, 206, 209, 208, 211, 210},
}

var fixtureBenchmark = []float64{4000, 4020, 4010, 4050, 4040, 4080, 4070, 4110, 4100, 4140, 4130, 4170}

func fixtureData() (domain.Table, domain.Series) {
	n := len(fixtureBenchmark)
	dates := make([]time.Time, n)
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	table := domain.Table{
		Dates:   dates,
		Tickers: []string{"AAPL", "MSFT"},
		Columns: map[string][]float64{
			"AAPL": fixturePrices["AAPL"],
			"MSFT": fixturePrices["MSFT"],
		},
	}
	bench := domain.Series{Dates: dates, Values: fixtureBenchmark}
	return table, bench
}

func newTestEngine(t *testing.T) (*Engine, *MockMarketData) {
	t.Helper()

	registry, err := LoadRegistry()
	require.NoError(t, err)

	md := new(MockMarketData)
	engine := NewEngine(md, returns.NewEngine(zerolog.Nop()), registry, 0.0425, zerolog.Nop())
	return engine, md
}

var testHoldings = []domain.Holding{
	{Ticker: "AAPL", Weight: 0.5},
	{Ticker: "MSFT", Weight: 0.5},
}

func TestShockAnalysis_DollarImpact(t *testing.T) {
	engine, md := newTestEngine(t)
	table, bench := fixtureData()
	md.On("FetchPricesWithBenchmark", mock.Anything, "1y").Return(table, bench, nil)

	result, err := engine.ShockAnalysis(testHoldings, map[string]float64{"AAPL": -0.20}, "1y", 0.95, 100000)
	require.NoError(t, err)

	require.Len(t, result.ShocksApplied, 1)
	detail := result.ShocksApplied[0]
	assert.Equal(t, "AAPL", detail.Ticker)
	assert.InDelta(t, -10000.0, detail.DollarImpact, 0.01)
	assert.InDelta(t, -20.0, detail.ShockPct, 0.01)

	assert.InDelta(t, 100000.0, result.Before.PortfolioValue, 0.01)
	assert.InDelta(t, 90000.0, result.After.PortfolioValue, 0.01)
	require.NotNil(t, result.After.PortfolioChangePct)
	assert.InDelta(t, -10.0, *result.After.PortfolioChangePct, 0.01)
	md.AssertExpectations(t)
}

func TestShockAnalysis_ShockNotInPortfolio(t *testing.T) {
	engine, md := newTestEngine(t)
	table, bench := fixtureData()
	md.On("FetchPricesWithBenchmark", mock.Anything, "1y").Return(table, bench, nil)

	result, err := engine.ShockAnalysis(testHoldings, map[string]float64{"TSLA": -0.50}, "1y", 0.95, 100000)
	require.NoError(t, err)

	// Zero weight means zero impact.
	require.Len(t, result.ShocksApplied, 1)
	assert.InDelta(t, 0.0, result.ShocksApplied[0].DollarImpact, 0.01)
	assert.InDelta(t, 100000.0, result.After.PortfolioValue, 0.01)
}

func TestShockAnalysis_NegativeShockLowersReturn(t *testing.T) {
	engine, md := newTestEngine(t)
	table, bench := fixtureData()
	md.On("FetchPricesWithBenchmark", mock.Anything, "1y").Return(table, bench, nil)

	result, err := engine.ShockAnalysis(testHoldings, map[string]float64{"AAPL": -0.30}, "1y", 0.95, 100000)
	require.NoError(t, err)

	assert.Less(t, result.After.AnnualizedReturnPct, result.Before.AnnualizedReturnPct)
}

func TestShockAnalysis_EmptyShocks(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.ShockAnalysis(testHoldings, map[string]float64{}, "1y", 0.95, 100000)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestShockAnalysis_NormalizesShockTickers(t *testing.T) {
	engine, md := newTestEngine(t)
	table, bench := fixtureData()
	md.On("FetchPricesWithBenchmark", mock.Anything, "1y").Return(table, bench, nil)

	result, err := engine.ShockAnalysis(testHoldings, map[string]float64{" aapl ": -0.10}, "1y", 0.95, 100000)
	require.NoError(t, err)

	require.Len(t, result.ShocksApplied, 1)
	assert.Equal(t, "AAPL", result.ShocksApplied[0].Ticker)
	assert.InDelta(t, -5000.0, result.ShocksApplied[0].DollarImpact, 0.01)
}

func TestStressTest_KnownScenario(t *testing.T) {
	engine, md := newTestEngine(t)
	table, bench := fixtureData()
	md.On("FetchPricesWithBenchmark", mock.Anything, "2y").Return(table, bench, nil)

	result, err := engine.StressTest(testHoldings, "2008_crisis", "2y", 0.95, 100000)
	require.NoError(t, err)

	assert.Equal(t, "2008_crisis", result.Scenario.Key)
	assert.InDelta(t, -56.5, result.Scenario.MarketDropPct, 0.01)
	require.Len(t, result.AssetImpacts, 2)

	total := 0.0
	for _, impact := range result.AssetImpacts {
		total += impact.DollarImpact
	}
	assert.InDelta(t, total, result.PortfolioImpact.TotalLossDollar, 0.05)
	assert.InDelta(t,
		result.PortfolioImpact.OriginalValue+result.PortfolioImpact.TotalLossDollar,
		result.PortfolioImpact.StressedValue, 0.05)
	assert.Contains(t, result.AvailableScenarios, "covid_crash")
}

func TestStressTest_UnknownScenario(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, err := engine.StressTest(testHoldings, "dinosaur_impact", "1y", 0.95, 100000)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.ValidKeys, "2008_crisis")
	assert.Contains(t, verr.ValidKeys, "ai_boom")
}

func TestStressTest_InvalidWeights(t *testing.T) {
	engine, _ := newTestEngine(t)

	bad := []domain.Holding{
		{Ticker: "AAPL", Weight: 0.6},
		{Ticker: "MSFT", Weight: 0.6},
	}
	_, err := engine.StressTest(bad, "2008_crisis", "1y", 0.95, 100000)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRegistry_Catalog(t *testing.T) {
	registry, err := LoadRegistry()
	require.NoError(t, err)

	keys := registry.Keys()
	assert.Len(t, keys, 7)
	assert.Contains(t, keys, "2008_crisis")
	assert.Contains(t, keys, "rate_cut_rally")

	sc, err := registry.Get("covid_crash")
	require.NoError(t, err)
	assert.InDelta(t, -0.339, sc.MarketDrop, 1e-9)
	assert.Contains(t, sc.SectorMultipliers, "default")
}
