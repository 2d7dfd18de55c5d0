// Package yahoo fetches historical and live market data from Yahoo Finance
// via the go-yfinance library, with an injected read-through price cache.
package yahoo

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"

	"github.com/quantfolio/riskd/internal/domain"
)

// Client is a Yahoo Finance market-data client.
type Client struct {
	cache     *PriceCache
	benchmark string
	log       zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. The benchmark ticker is used
// by FetchPricesWithBenchmark; cache must not be nil.
func NewClient(cache *PriceCache, benchmark string, log zerolog.Logger) *Client {
	return &Client{
		cache:     cache,
		benchmark: benchmark,
		log:       log.With().Str("client", "yahoo").Logger(),
	}
}

// LivePrice is a point-in-time quote for a single ticker.
type LivePrice struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// FetchPrices downloads adjusted daily close prices for tickers over the
// given lookback period. The returned table preserves the requested ticker
// order and contains only dates present for every ticker.
func (c *Client) FetchPrices(tickers []string, period string) (domain.Table, error) {
	if cached, ok := c.cache.Get(tickers, period); ok {
		c.log.Debug().Strs("tickers", tickers).Str("period", period).Msg("Price cache hit")
		return cached, nil
	}

	unique := dedupe(tickers)

	params := models.DefaultDownloadParams()
	params.Symbols = unique
	params.Period = period
	params.Interval = "1d"

	result, err := multi.Download(unique, &params)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to download prices: %w", err)
	}

	bySymbol := make(map[string]map[string]float64, len(unique))
	var missing []string
	for _, symbol := range unique {
		bars, ok := result.Data[symbol]
		if !ok || len(bars) == 0 {
			if downloadErr, hasErr := result.Errors[symbol]; hasErr {
				c.log.Warn().Err(downloadErr).Str("symbol", symbol).Msg("Download failed for symbol")
			}
			missing = append(missing, symbol)
			continue
		}
		bySymbol[symbol] = closesByDate(bars)
		if len(bySymbol[symbol]) == 0 {
			missing = append(missing, symbol)
		}
	}
	if len(missing) > 0 {
		return domain.Table{}, &domain.NoDataError{Tickers: missing}
	}

	table, err := buildTable(tickers, bySymbol)
	if err != nil {
		return domain.Table{}, err
	}

	c.log.Info().
		Int("num_tickers", len(tickers)).
		Str("period", period).
		Int("num_dates", table.Len()).
		Msg("Fetched price history")

	c.cache.Put(tickers, period, table)
	return table, nil
}

// FetchPricesWithBenchmark downloads prices for tickers plus the configured
// benchmark index in a single request, returning the asset table and the
// benchmark series separately.
func (c *Client) FetchPricesWithBenchmark(tickers []string, period string) (domain.Table, domain.Series, error) {
	combined := append(append([]string{}, tickers...), c.benchmark)
	all, err := c.FetchPrices(combined, period)
	if err != nil {
		return domain.Table{}, domain.Series{}, err
	}

	benchCol, ok := all.Column(c.benchmark)
	if !ok {
		return domain.Table{}, domain.Series{}, &domain.NoDataError{Tickers: []string{c.benchmark}}
	}
	benchmark := domain.Series{
		Dates:  append([]time.Time{}, all.Dates...),
		Values: append([]float64{}, benchCol...),
	}

	assets := domain.Table{
		Dates:   all.Dates,
		Tickers: append([]string{}, tickers...),
		Columns: make(map[string][]float64, len(tickers)),
	}
	for _, t := range tickers {
		assets.Columns[t] = all.Columns[t]
	}

	return assets, benchmark, nil
}

// ValidateTickers probes each ticker with a short history request and
// classifies it as valid or invalid.
func (c *Client) ValidateTickers(tickers []string) (valid []string, invalid []string) {
	for _, symbol := range tickers {
		bars, err := c.recentHistory(symbol)
		if err != nil || len(bars) == 0 {
			if err != nil {
				c.log.Debug().Err(err).Str("symbol", symbol).Msg("Ticker validation probe failed")
			}
			invalid = append(invalid, symbol)
			continue
		}
		valid = append(valid, symbol)
	}
	return valid, invalid
}

// FetchLivePrices returns the latest close, change, and change percent for
// each ticker. Tickers that fail to resolve are skipped.
func (c *Client) FetchLivePrices(tickers []string) []LivePrice {
	results := make([]LivePrice, 0, len(tickers))
	for _, symbol := range tickers {
		bars, err := c.recentHistory(symbol)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch live price")
			continue
		}
		if len(bars) < 2 {
			continue
		}

		current := barClose(bars[len(bars)-1])
		previous := barClose(bars[len(bars)-2])
		if previous == 0 {
			continue
		}
		change := current - previous
		results = append(results, LivePrice{
			Ticker:    symbol,
			Price:     current,
			Change:    change,
			ChangePct: change / previous * 100,
		})
	}
	return results
}

func (c *Client) recentHistory(symbol string) ([]models.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     "5d",
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return bars, nil
}

// closesByDate indexes a bar slice as date → adjusted close, skipping
// non-positive prices.
func closesByDate(bars []models.Bar) map[string]float64 {
	closes := make(map[string]float64, len(bars))
	for _, bar := range bars {
		price := barClose(bar)
		if price <= 0 {
			continue
		}
		closes[bar.Date.Format("2006-01-02")] = price
	}
	return closes
}

func barClose(bar models.Bar) float64 {
	if bar.AdjClose > 0 {
		return bar.AdjClose
	}
	return bar.Close
}

// buildTable inner-joins the per-symbol date maps: only dates present for
// every symbol survive, mirroring a row-wise dropna.
func buildTable(tickers []string, bySymbol map[string]map[string]float64) (domain.Table, error) {
	var common []string
	first := true
	for _, closes := range bySymbol {
		if first {
			for date := range closes {
				common = append(common, date)
			}
			first = false
			continue
		}
		kept := common[:0]
		for _, date := range common {
			if _, ok := closes[date]; ok {
				kept = append(kept, date)
			}
		}
		common = kept
	}
	if len(common) == 0 {
		return domain.Table{}, domain.NewInsufficientDataError("no overlapping trading days across requested tickers")
	}
	sort.Strings(common)

	table := domain.Table{
		Dates:   make([]time.Time, len(common)),
		Tickers: append([]string{}, tickers...),
		Columns: make(map[string][]float64, len(tickers)),
	}
	for i, date := range common {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return domain.Table{}, fmt.Errorf("failed to parse bar date %q: %w", date, err)
		}
		table.Dates[i] = parsed
	}
	for _, symbol := range table.Tickers {
		closes := bySymbol[symbol]
		column := make([]float64, len(common))
		for i, date := range common {
			column[i] = closes[date]
		}
		table.Columns[symbol] = column
	}

	return table, nil
}

func dedupe(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	unique := make([]string, 0, len(tickers))
	for _, t := range tickers {
		key := strings.ToUpper(t)
		if !seen[key] {
			seen[key] = true
			unique = append(unique, t)
		}
	}
	return unique
}
