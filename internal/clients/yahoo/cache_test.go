package yahoo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskd/internal/domain"
)

func testPriceTable() domain.Table {
	return domain.Table{
		Dates:   []time.Time{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		Tickers: []string{"AAPL"},
		Columns: map[string][]float64{"AAPL": {185.5}},
	}
}

func TestPriceCache_PutGet(t *testing.T) {
	cache := NewPriceCache()

	_, ok := cache.Get([]string{"AAPL"}, "1y")
	assert.False(t, ok)

	cache.Put([]string{"AAPL"}, "1y", testPriceTable())

	got, ok := cache.Get([]string{"AAPL"}, "1y")
	require.True(t, ok)
	assert.Equal(t, []string{"AAPL"}, got.Tickers)

	// Different period is a different key.
	_, ok = cache.Get([]string{"AAPL"}, "2y")
	assert.False(t, ok)
}

func TestPriceCache_KeyIgnoresTickerOrder(t *testing.T) {
	cache := NewPriceCache()
	cache.Put([]string{"MSFT", "AAPL"}, "1y", testPriceTable())

	_, ok := cache.Get([]string{"AAPL", "MSFT"}, "1y")
	assert.True(t, ok)
}

func TestPriceCache_Clear(t *testing.T) {
	cache := NewPriceCache()
	cache.Put([]string{"AAPL"}, "1y", testPriceTable())
	cache.Put([]string{"MSFT"}, "2y", testPriceTable())

	assert.Equal(t, 2, cache.Len())
	assert.Equal(t, 2, cache.Clear())
	assert.Equal(t, 0, cache.Len())
}
