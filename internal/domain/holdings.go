package domain

import (
	"math"
	"strings"
)

// WeightSumTolerance is the allowed deviation of the holding weight sum from 1.0.
const WeightSumTolerance = 0.01

// NormalizeHoldings validates a holdings list and returns a copy with
// tickers upper-cased. Weights must be positive and sum to 1.0 within
// WeightSumTolerance; duplicate tickers (after normalization) are rejected.
func NormalizeHoldings(holdings []Holding) ([]Holding, error) {
	if len(holdings) == 0 {
		return nil, NewValidationError("holdings list is empty")
	}

	normalized := make([]Holding, 0, len(holdings))
	seen := make(map[string]bool, len(holdings))
	weightSum := 0.0

	for i, h := range holdings {
		ticker := strings.ToUpper(strings.TrimSpace(h.Ticker))
		if ticker == "" {
			return nil, NewValidationError("holding %d is missing a ticker", i)
		}
		if h.Weight <= 0 {
			return nil, NewValidationError("holding %s has non-positive weight %.4f", ticker, h.Weight)
		}
		if seen[ticker] {
			return nil, NewValidationError("duplicate ticker %s in holdings", ticker)
		}
		seen[ticker] = true
		weightSum += h.Weight
		normalized = append(normalized, Holding{Ticker: ticker, Weight: h.Weight})
	}

	if math.Abs(weightSum-1.0) > WeightSumTolerance {
		return nil, NewValidationError("holding weights sum to %.4f, expected 1.0 (±%.2f)", weightSum, WeightSumTolerance)
	}

	return normalized, nil
}

// Tickers extracts the ticker list from holdings, preserving order.
func Tickers(holdings []Holding) []string {
	tickers := make([]string, len(holdings))
	for i, h := range holdings {
		tickers[i] = h.Ticker
	}
	return tickers
}

// Weights extracts the weight vector from holdings, preserving order.
func Weights(holdings []Holding) []float64 {
	weights := make([]float64, len(holdings))
	for i, h := range holdings {
		weights[i] = h.Weight
	}
	return weights
}

// ValidateConfidence checks that a confidence level lies in (0,1) exclusive.
func ValidateConfidence(confidence float64) error {
	if confidence <= 0 || confidence >= 1 {
		return NewValidationError("confidence level %.4f must be in (0, 1) exclusive", confidence)
	}
	return nil
}
