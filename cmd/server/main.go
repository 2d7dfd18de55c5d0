package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quantfolio/riskd/internal/clients/yahoo"
	"github.com/quantfolio/riskd/internal/config"
	"github.com/quantfolio/riskd/internal/modules/returns"
	"github.com/quantfolio/riskd/internal/modules/risk"
	"github.com/quantfolio/riskd/internal/modules/scenario"
	"github.com/quantfolio/riskd/internal/modules/simulation"
	"github.com/quantfolio/riskd/internal/server"
	"github.com/quantfolio/riskd/pkg/logger"
)

func main() {
	// Load configuration first so the log level honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New(logger.Config{Level: "info"})
		boot.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().
		Str("benchmark", cfg.BenchmarkTicker).
		Str("default_period", cfg.DefaultPeriod).
		Float64("risk_free_rate", cfg.RiskFreeRate).
		Msg("Starting riskd")

	// Market data provider with an in-process price cache
	priceCache := yahoo.NewPriceCache()
	yahooClient := yahoo.NewClient(priceCache, cfg.BenchmarkTicker, log)

	// Shared returns engine
	returnsEngine := returns.NewEngine(log)

	// Risk metrics module
	riskService := risk.NewService(yahooClient, returnsEngine, cfg.BenchmarkTicker, log)
	riskHandlers := risk.NewHandlers(riskService, cfg.RiskFreeRate, cfg.DefaultPeriod, log)

	// Monte Carlo simulation module
	simulator := simulation.NewSimulator(log)
	simulationService := simulation.NewService(yahooClient, returnsEngine, simulator, log)
	simulationHandlers := simulation.NewHandlers(simulationService, cfg.DefaultPeriod, log)

	// Scenario module
	registry, err := scenario.LoadRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load stress scenarios")
	}
	scenarioEngine := scenario.NewEngine(yahooClient, returnsEngine, registry, cfg.RiskFreeRate, log)
	scenarioHandlers := scenario.NewHandlers(scenarioEngine, cfg.DefaultPeriod, log)

	srv := server.New(server.Config{
		Log:                log,
		Config:             cfg,
		YahooClient:        yahooClient,
		PriceCache:         priceCache,
		RiskHandlers:       riskHandlers,
		SimulationHandlers: simulationHandlers,
		ScenarioHandlers:   scenarioHandlers,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
