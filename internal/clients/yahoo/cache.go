package yahoo

import (
	"sort"
	"strings"
	"sync"

	"github.com/quantfolio/riskd/internal/domain"
)

// PriceCache is a process-lifetime read-through cache of fetched price
// tables, keyed by (normalized ticker set, period). Entries are immutable
// once stored and there is no expiry beyond an explicit Clear.
//
// Constructed once per process and injected into the client, so tests can
// bypass or pre-populate it.
type PriceCache struct {
	mu      sync.RWMutex
	entries map[string]domain.Table
}

// NewPriceCache creates an empty price cache.
func NewPriceCache() *PriceCache {
	return &PriceCache{
		entries: make(map[string]domain.Table),
	}
}

// Get returns the cached table for a ticker set and period, if present.
func (c *PriceCache) Get(tickers []string, period string) (domain.Table, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table, ok := c.entries[cacheKey(tickers, period)]
	return table, ok
}

// Put stores a fetched table. Last write wins under concurrent population;
// that is benign since entries for the same key are identical.
func (c *PriceCache) Put(tickers []string, period string, table domain.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(tickers, period)] = table
}

// Clear removes every cached entry and reports how many were dropped.
func (c *PriceCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]domain.Table)
	return n
}

// Len reports the number of cached entries.
func (c *PriceCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(tickers []string, period string) string {
	sorted := make([]string, len(tickers))
	copy(sorted, tickers)
	sort.Strings(sorted)
	return strings.Join(sorted, ",") + "|" + period
}
