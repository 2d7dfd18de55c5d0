package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the standard trading-day count used for annualization.
const TradingDaysPerYear = 252

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two equal-length series
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient between two series
func Correlation(x, y []float64) float64 {
	if len(x) == 0 || len(x) != len(y) {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

// CalculateReturns converts a price series to simple daily returns.
// One entry shorter than the source: the first date has no prior close.
func CalculateReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
		}
	}

	return returns
}

// AnnualizedReturn calculates the annualized mean return from daily returns.
// Formula: mean daily return × 252
func AnnualizedReturn(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return Mean(dailyReturns) * TradingDaysPerYear
}

// AnnualizedVolatility calculates annualized volatility from daily returns.
// Formula: sample std dev of daily returns × sqrt(252)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	if len(dailyReturns) == 0 {
		return 0
	}
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// TotalReturn calculates the cumulative compound return of a daily return series.
// Formula: (1+r1)(1+r2)...(1+rN) - 1
func TotalReturn(dailyReturns []float64) float64 {
	cumulative := 1.0
	for _, r := range dailyReturns {
		cumulative *= 1 + r
	}
	return cumulative - 1
}

// CumulativeWealth builds the compound wealth curve from a daily return series.
// wealth[i] = (1+r1)...(1+r_{i+1}), so a flat series yields a flat curve at 1.0.
func CumulativeWealth(dailyReturns []float64) []float64 {
	wealth := make([]float64, len(dailyReturns))
	cumulative := 1.0
	for i, r := range dailyReturns {
		cumulative *= 1 + r
		wealth[i] = cumulative
	}
	return wealth
}
