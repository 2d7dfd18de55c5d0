package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// HistoricalVaR calculates the historical Value at Risk at the given
// confidence level. Returns a positive number representing the loss
// threshold (e.g., 0.025 = a 2.5% one-day loss is not expected to be
// exceeded with the given confidence).
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return -Percentile(returns, (1-confidence)*100)
}

// ParametricVaR calculates the variance-covariance VaR assuming
// normally distributed returns.
func ParametricVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mu := Mean(returns)
	sigma := StdDev(returns)
	z := stdNormal.Quantile(1 - confidence)
	return -(mu + z*sigma)
}

// HistoricalCVaR calculates the Conditional VaR (Expected Shortfall): the
// mean of all returns at or below the historical VaR threshold.
func HistoricalCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	threshold := -HistoricalVaR(returns, confidence)
	sum, count := 0.0, 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return -threshold
	}
	return -(sum / float64(count))
}

// ParametricCVaR calculates the closed-form Gaussian Expected Shortfall.
// ES = -(μ - σ·φ(z)/(1-confidence)) where z is the normal quantile at
// (1-confidence) and φ the standard normal density.
func ParametricCVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	mu := Mean(returns)
	sigma := StdDev(returns)
	z := stdNormal.Quantile(1 - confidence)
	es := mu - sigma*stdNormal.Prob(z)/(1-confidence)
	return -es
}

// SharpeRatio calculates the annualized Sharpe ratio. riskFreeRate is an
// annual rate, converted to daily by dividing by 252. Returns 0 when the
// annualized volatility is zero.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	excess := Mean(returns) - riskFreeRate/TradingDaysPerYear
	annualExcess := excess * TradingDaysPerYear
	annualVol := AnnualizedVolatility(returns)
	if annualVol == 0 {
		return 0
	}
	return annualExcess / annualVol
}

// SortinoRatio calculates the annualized Sortino ratio using downside
// deviation (std dev of negative returns only). Returns +Inf when the
// series has no negative returns, and 0 when negative returns exist but
// their deviation is zero.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.Inf(1)
	}

	downsideStd := StdDev(downside) * math.Sqrt(TradingDaysPerYear)
	if downsideStd == 0 {
		return 0
	}

	excess := Mean(returns) - riskFreeRate/TradingDaysPerYear
	return excess * TradingDaysPerYear / downsideStd
}

// Beta calculates the sensitivity of portfolio returns to benchmark returns.
// Formula: Cov(Rp, Rb) / Var(Rb). Both series must already be date-aligned.
func Beta(portfolioReturns, benchmarkReturns []float64) float64 {
	if len(portfolioReturns) < 2 || len(portfolioReturns) != len(benchmarkReturns) {
		return 0
	}

	benchVar := Variance(benchmarkReturns)
	if benchVar == 0 {
		return 0
	}
	return Covariance(portfolioReturns, benchmarkReturns) / benchVar
}

// Alpha calculates the annualized Jensen's alpha.
// α = Rp − [Rf + β × (Rb − Rf)], with Rp and Rb annualized mean returns.
func Alpha(portfolioReturns, benchmarkReturns []float64, riskFreeRate float64) float64 {
	beta := Beta(portfolioReturns, benchmarkReturns)
	rp := AnnualizedReturn(portfolioReturns)
	rb := AnnualizedReturn(benchmarkReturns)
	return rp - (riskFreeRate + beta*(rb-riskFreeRate))
}
