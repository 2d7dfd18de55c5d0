package simulation

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

func (m *MockMarketData) FetchPrices(tickers []string, period string) (domain.Table, error) {
	args := m.Called(tickers, period)
	return args.Get(0).(domain.Table), args.Error(1)
}

func priceTable() domain.Table {
	prices := map[string][]float64{
		"AAPL": {100, 102, 101, 104, 103, 106, 105, 108, 107, 110},
		"MSFT": {200, 201, 203, 202, 205, 204, 207, 206, 209, 208},
	}
	dates := make([]time.Time, 10)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = base.AddDate(0, 0, i)
	}
	return domain.Table{
		Dates:   dates,
		Tickers: []string{"AAPL", "MSFT"},
		Columns: prices,
	}
}

func testRequest() Request {
	return Request{
		Holdings: []domain.Holding{
			{Ticker: "AAPL", Weight: 0.5},
			{Ticker: "MSFT", Weight: 0.5},
		},
		Period:           "1y",
		NumSimulations:   400,
		HorizonDays:      30,
		InvestmentAmount: 50000,
		Confidence:       0.95,
	}
}

func newTestService(md *MockMarketData) *Service {
	return NewService(md, returns.NewEngine(zerolog.Nop()), NewSeededSimulator(17, zerolog.Nop()), zerolog.Nop())
}

func TestServiceRun_FullResult(t *testing.T) {
	md := new(MockMarketData)
	md.On("FetchPrices", []string{"AAPL", "MSFT"}, "1y").Return(priceTable(), nil)

	result, err := newTestService(md).Run(testRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, result.SimulationID)
	assert.Equal(t, 400, result.SimulationParams.NumSimulations)
	assert.Equal(t, 30, result.SimulationParams.NumDays)
	assert.Equal(t, []string{"AAPL", "MSFT"}, result.SimulationParams.Tickers)

	assert.Len(t, result.Days, 31)
	assert.Equal(t, 0, result.Days[0])
	assert.Equal(t, 30, result.Days[30])

	require.Contains(t, result.PercentilePaths, "p50")
	assert.InDelta(t, 50000.0, result.PercentilePaths["p50"][0], 1e-9)

	assert.GreaterOrEqual(t, result.ProbabilityOfLoss, 0.0)
	assert.LessOrEqual(t, result.ProbabilityOfLoss, 1.0)
	assert.InDelta(t, result.ProbabilityOfLoss*100, result.ProbabilityOfLossPct, 0.01)
	assert.Greater(t, result.MonteCarloVaR.VaR1D, 0.0)
	assert.InDelta(t, result.MonteCarloVaR.VaR1D*100, result.MonteCarloVaR.VaR1DPct, 0.01)

	assert.LessOrEqual(t, len(result.SampledPaths), 200)
	md.AssertExpectations(t)
}

func TestServiceRun_InvalidPeriod(t *testing.T) {
	req := testRequest()
	req.Period = "3w"

	_, err := newTestService(new(MockMarketData)).Run(req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestServiceRun_BadWeights(t *testing.T) {
	req := testRequest()
	req.Holdings = []domain.Holding{{Ticker: "AAPL", Weight: 0.7}}

	_, err := newTestService(new(MockMarketData)).Run(req)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestServiceRun_TooFewObservations(t *testing.T) {
	table := priceTable()
	table.Dates = table.Dates[:2]
	table.Columns = map[string][]float64{
		"AAPL": table.Columns["AAPL"][:2],
		"MSFT": table.Columns["MSFT"][:2],
	}
	md := new(MockMarketData)
	md.On("FetchPrices", mock.Anything, "1y").Return(table, nil)

	_, err := newTestService(md).Run(testRequest())

	var ierr *domain.InsufficientDataError
	require.ErrorAs(t, err, &ierr)
}
