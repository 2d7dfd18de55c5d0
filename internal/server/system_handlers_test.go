package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfolio/riskd/internal/clients/yahoo"
)

func TestCpuAverage_EmptySample(t *testing.T) {
	assert.Zero(t, cpuAverage(nil))
	assert.Zero(t, cpuAverage([]float64{}))
	assert.Equal(t, 12.5, cpuAverage([]float64{12.5}))
}

func TestHandleHealth(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), yahoo.NewPriceCache())

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "riskd", body["service"])
	assert.Contains(t, body, "cpu_percent")
	assert.Contains(t, body, "memory_percent")
	assert.Equal(t, float64(0), body["cached_tables"])
}

func TestHandleClearCache(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), yahoo.NewPriceCache())

	rec := httptest.NewRecorder()
	h.HandleClearCache(rec, httptest.NewRequest(http.MethodPost, "/api/system/cache/clear", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(0), body["entries_cleared"])
}
