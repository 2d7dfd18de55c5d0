// Package returns converts aligned price history into daily return series,
// weighted portfolio return series, and covariance/correlation matrices.
package returns

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/quantfolio/riskd/internal/domain"
	"github.com/quantfolio/riskd/pkg/formulas"
)

// Engine computes return series and return-based matrices.
type Engine struct {
	log zerolog.Logger
}

// NewEngine creates a new returns engine.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("module", "returns").Logger(),
	}
}

// DailyReturns converts a price table to simple daily returns.
// The result has one fewer row: the first date has no prior close.
func (e *Engine) DailyReturns(prices domain.Table) domain.Table {
	result := domain.Table{
		Tickers: append([]string{}, prices.Tickers...),
		Columns: make(map[string][]float64, len(prices.Tickers)),
	}
	if prices.Len() > 1 {
		result.Dates = append([]time.Time{}, prices.Dates[1:]...)
	}
	for _, ticker := range prices.Tickers {
		result.Columns[ticker] = formulas.CalculateReturns(prices.Columns[ticker])
	}
	return result
}

// SeriesReturns converts a single price series to simple daily returns.
func (e *Engine) SeriesReturns(prices domain.Series) domain.Series {
	result := domain.Series{Values: formulas.CalculateReturns(prices.Values)}
	if prices.Len() > 1 {
		result.Dates = append([]time.Time{}, prices.Dates[1:]...)
	}
	return result
}

// PortfolioReturns computes the weighted daily portfolio return series from a
// holdings list and a per-ticker return table. Every holding must have a
// column in the table.
func (e *Engine) PortfolioReturns(holdings []domain.Holding, returns domain.Table) (domain.Series, error) {
	for _, h := range holdings {
		if _, ok := returns.Column(h.Ticker); !ok {
			return domain.Series{}, &domain.NoDataError{Tickers: []string{h.Ticker}}
		}
	}
	if returns.Len() == 0 {
		return domain.Series{}, domain.NewInsufficientDataError("no return observations to weight")
	}

	values := make([]float64, returns.Len())
	for _, h := range holdings {
		col := returns.Columns[h.Ticker]
		for i, r := range col {
			values[i] += h.Weight * r
		}
	}

	return domain.Series{
		Dates:  append([]time.Time{}, returns.Dates...),
		Values: values,
	}, nil
}

// Covariance computes the sample covariance matrix of the return columns,
// ordered by the table's ticker order. When annualize is true every entry is
// scaled by the trading-day count per year.
func (e *Engine) Covariance(returns domain.Table, annualize bool) [][]float64 {
	n := len(returns.Tickers)
	cov := make([][]float64, n)
	for i := range cov {
		cov[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := formulas.Covariance(returns.Columns[returns.Tickers[i]], returns.Columns[returns.Tickers[j]])
			if annualize {
				c *= formulas.TradingDaysPerYear
			}
			cov[i][j] = c
			cov[j][i] = c
		}
	}

	return cov
}

// Correlation computes the Pearson correlation matrix of the return columns.
// The diagonal is exactly 1.0 and the matrix is symmetric by construction.
func (e *Engine) Correlation(returns domain.Table) [][]float64 {
	n := len(returns.Tickers)
	corr := make([][]float64, n)
	for i := range corr {
		corr[i] = make([]float64, n)
		corr[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			c := formulas.Correlation(returns.Columns[returns.Tickers[i]], returns.Columns[returns.Tickers[j]])
			corr[i][j] = c
			corr[j][i] = c
		}
	}

	return corr
}

// Align intersects two series on their common dates (inner join) and returns
// both restricted to the intersection. Fails when the intersection is empty.
func Align(a, b domain.Series) (domain.Series, domain.Series, error) {
	bIndex := make(map[string]int, b.Len())
	for i, d := range b.Dates {
		bIndex[dateKey(d)] = i
	}

	var alignedA, alignedB domain.Series
	for i, d := range a.Dates {
		if j, ok := bIndex[dateKey(d)]; ok {
			alignedA.Dates = append(alignedA.Dates, d)
			alignedA.Values = append(alignedA.Values, a.Values[i])
			alignedB.Dates = append(alignedB.Dates, b.Dates[j])
			alignedB.Values = append(alignedB.Values, b.Values[j])
		}
	}

	if alignedA.Len() == 0 {
		return domain.Series{}, domain.Series{}, domain.NewInsufficientDataError("no overlapping dates between series")
	}

	return alignedA, alignedB, nil
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
