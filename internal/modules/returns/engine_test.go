package returns

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/pkg/formulas"
)

func dates(n int) []time.Time {
	out := make([]time.Time, n)
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = start.AddDate(0, 0, i)
	}
	return out
}

func testTable() domain.Table {
	return domain.Table{
		Dates:   dates(5),
		Tickers: []string{"AAPL", "MSFT"},
		Columns: map[string][]float64{
			"AAPL": {100, 110, 99, 104, 102},
			"MSFT": {200, 202, 198, 210, 205},
		},
	}
}

func TestDailyReturns(t *testing.T) {
	engine := NewEngine(zerolog.Nop())

	rets := engine.DailyReturns(testTable())

	require.Equal(t, 4, rets.Len())
	assert.Equal(t, []string{"AAPL", "MSFT"}, rets.Tickers)
	assert.InDelta(t, 0.10, rets.Columns["AAPL"][0], 1e-12)
	assert.InDelta(t, -0.10, rets.Columns["AAPL"][1], 1e-12)
	assert.InDelta(t, 0.01, rets.Columns["MSFT"][0], 1e-12)

	// First price date is dropped.
	assert.Equal(t, testTable().Dates[1], rets.Dates[0])
}

func TestPortfolioReturns_WeightedSum(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	rets := engine.DailyReturns(testTable())

	holdings := []domain.Holding{
		{Ticker: "AAPL", Weight: 0.6},
		{Ticker: "MSFT", Weight: 0.4},
	}

	port, err := engine.PortfolioReturns(holdings, rets)
	require.NoError(t, err)
	require.Equal(t, 4, port.Len())

	for i := range port.Values {
		expected := 0.6*rets.Columns["AAPL"][i] + 0.4*rets.Columns["MSFT"][i]
		assert.InDelta(t, expected, port.Values[i], 1e-12)
	}
}

func TestPortfolioReturns_MissingTicker(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	rets := engine.DailyReturns(testTable())

	_, err := engine.PortfolioReturns([]domain.Holding{{Ticker: "GOOG", Weight: 1.0}}, rets)
	require.Error(t, err)

	var noData *domain.NoDataError
	assert.ErrorAs(t, err, &noData)
}

func TestCovariance_SymmetricAndAnnualized(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	rets := engine.DailyReturns(testTable())

	daily := engine.Covariance(rets, false)
	annual := engine.Covariance(rets, true)

	require.Len(t, daily, 2)
	assert.Equal(t, daily[0][1], daily[1][0])
	assert.InDelta(t, formulas.Variance(rets.Columns["AAPL"]), daily[0][0], 1e-12)

	for i := range daily {
		for j := range daily[i] {
			assert.InDelta(t, daily[i][j]*formulas.TradingDaysPerYear, annual[i][j], 1e-12)
		}
	}
}

func TestCorrelation_DiagonalAndBounds(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	rets := engine.DailyReturns(testTable())

	corr := engine.Correlation(rets)

	require.Len(t, corr, 2)
	assert.Equal(t, 1.0, corr[0][0])
	assert.Equal(t, 1.0, corr[1][1])
	assert.Equal(t, corr[0][1], corr[1][0])
	assert.LessOrEqual(t, corr[0][1], 1.0)
	assert.GreaterOrEqual(t, corr[0][1], -1.0)
}

func TestCorrelation_PerfectlyCorrelatedAssets(t *testing.T) {
	engine := NewEngine(zerolog.Nop())
	table := domain.Table{
		Dates:   dates(4),
		Tickers: []string{"A", "B"},
		Columns: map[string][]float64{
			"A": {100, 110, 121, 133.1},
			"B": {50, 55, 60.5, 66.55},
		},
	}
	rets := engine.DailyReturns(table)

	corr := engine.Correlation(rets)
	assert.InDelta(t, 1.0, corr[0][1], 1e-9)
}

func TestAlign_InnerJoin(t *testing.T) {
	d := dates(6)
	a := domain.Series{Dates: d[0:4], Values: []float64{1, 2, 3, 4}}
	b := domain.Series{Dates: d[2:6], Values: []float64{30, 40, 50, 60}}

	alignedA, alignedB, err := Align(a, b)
	require.NoError(t, err)

	require.Equal(t, 2, alignedA.Len())
	assert.Equal(t, []float64{3, 4}, alignedA.Values)
	assert.Equal(t, []float64{30, 40}, alignedB.Values)
	assert.Equal(t, alignedA.Dates, alignedB.Dates)
}

func TestAlign_EmptyIntersection(t *testing.T) {
	d := dates(8)
	a := domain.Series{Dates: d[0:3], Values: []float64{1, 2, 3}}
	b := domain.Series{Dates: d[4:7], Values: []float64{4, 5, 6}}

	_, _, err := Align(a, b)
	require.Error(t, err)

	var insufficient *domain.InsufficientDataError
	assert.ErrorAs(t, err, &insufficient)
}
