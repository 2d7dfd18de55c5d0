package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Market defaults shared across the analytics engine.
const (
	DefaultRiskFreeRate    = 0.0425 // US 10-Year Treasury yield (~4.25%)
	DefaultBenchmarkTicker = "^GSPC"
	DefaultPeriod          = "2y"
	DefaultConfidence      = 0.95

	DefaultNumSimulations = 10000
	DefaultHorizonDays    = 252

	// Hard caps applied before invoking the simulator; raw cost is
	// O(simulations × days × assets²).
	MaxNumSimulations = 50000
	MaxHorizonDays    = 504

	// SampledPathLimit bounds the raw paths returned for charting.
	SampledPathLimit = 200
)

// ValidPeriods is the fixed enumeration of lookback periods accepted by the
// market-data provider.
var ValidPeriods = []string{"1mo", "3mo", "6mo", "1y", "2y", "5y", "10y", "max"}

// Config holds application configuration
type Config struct {
	Port            int
	LogLevel        string
	DevMode         bool
	RiskFreeRate    float64
	BenchmarkTicker string
	DefaultPeriod   string
}

// Load reads configuration from the environment, with .env as a fallback.
func Load() (*Config, error) {
	// .env is optional; env vars always win
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("PORT", 8080),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:    getEnvAsFloat("RISK_FREE_RATE", DefaultRiskFreeRate),
		BenchmarkTicker: getEnv("BENCHMARK_TICKER", DefaultBenchmarkTicker),
		DefaultPeriod:   getEnv("DEFAULT_PERIOD", DefaultPeriod),
	}

	if !IsValidPeriod(cfg.DefaultPeriod) {
		cfg.DefaultPeriod = DefaultPeriod
	}

	return cfg, nil
}

// IsValidPeriod reports whether period is one of the accepted lookback periods.
func IsValidPeriod(period string) bool {
	for _, p := range ValidPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
