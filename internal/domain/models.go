package domain

import "time"

// Holding is a single weighted position in a portfolio.
type Holding struct {
	Ticker string  `json:"ticker"`
	Weight float64 `json:"weight"`
}

// Series is a date-indexed value series, chronologically increasing.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// Len returns the number of observations in the series.
func (s Series) Len() int {
	return len(s.Values)
}

// Table is a date-indexed table of per-ticker value columns, all aligned to
// the same date index. Tickers preserves the requested column order.
type Table struct {
	Dates   []time.Time
	Tickers []string
	Columns map[string][]float64
}

// Len returns the number of rows in the table.
func (t Table) Len() int {
	return len(t.Dates)
}

// Column returns the values for a ticker and whether the column exists.
func (t Table) Column(ticker string) ([]float64, bool) {
	col, ok := t.Columns[ticker]
	return col, ok
}

// StressScenario is a predefined historical or hypothetical market scenario.
// Static reference data, never mutated at runtime. SectorMultipliers always
// contains a "default" entry.
type StressScenario struct {
	Key               string             `json:"key" yaml:"key"`
	Name              string             `json:"name" yaml:"name"`
	Description       string             `json:"description" yaml:"description"`
	MarketDrop        float64            `json:"market_drop" yaml:"market_drop"`
	SectorMultipliers map[string]float64 `json:"sector_multipliers" yaml:"sector_multipliers"`
}
