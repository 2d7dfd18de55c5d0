package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantfolio/riskd/internal/api"
	"github.com/quantfolio/riskd/internal/clients/yahoo"
)

// SystemHandlers provides health and cache management endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	cache     *yahoo.PriceCache
	startedAt time.Time
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(log zerolog.Logger, cache *yahoo.PriceCache) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("component", "system").Logger(),
		cache:     cache,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers the system routes under /api.
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Post("/cache/clear", h.HandleClearCache)
	})
}

// HandleHealth handles health check requests
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cpuPct, memPct := h.systemStats()

	response := map[string]interface{}{
		"status":         "healthy",
		"service":        "riskd",
		"version":        "1.0.0",
		"uptime_seconds": int(time.Since(h.startedAt).Seconds()),
		"goroutines":     runtime.NumGoroutine(),
		"cpu_percent":    api.Round(cpuPct, 1),
		"memory_percent": api.Round(memPct, 1),
		"cached_tables":  h.cache.Len(),
	}

	api.WriteJSON(w, h.log, http.StatusOK, response)
}

// HandleClearCache drops all cached price history.
// POST /api/system/cache/clear
func (h *SystemHandlers) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	cleared := h.cache.Clear()
	h.log.Info().Int("entries", cleared).Msg("Price cache cleared")

	api.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"entries_cleared": cleared,
	})
}

// systemStats samples CPU and RAM usage. The short CPU interval keeps the
// health endpoint responsive for poll-based monitors.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
	}
	cpuAvg := cpuAverage(cpuPercent)

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return cpuAvg, 0
	}
	return cpuAvg, memStat.UsedPercent
}

// cpuAverage extracts the aggregate sample; cpu.Percent may return an
// empty slice alongside a nil error.
func cpuAverage(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	return samples[0]
}
