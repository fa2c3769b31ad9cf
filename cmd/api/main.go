package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Walkmate_V0.1/internal/assistant"
	"Walkmate_V0.1/internal/config"
	"Walkmate_V0.1/internal/database"
	"Walkmate_V0.1/internal/geminiservice"
	"Walkmate_V0.1/internal/metrics"
	"Walkmate_V0.1/internal/server"
	"Walkmate_V0.1/internal/weather"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The server has 5 seconds to finish the requests it is currently handling.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")

	done <- true
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	setupLogger(cfg)

	dbService, err := database.NewService(context.Background(), cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not connect to database")
	}
	defer dbService.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	env := weather.NewCachedFetcher(
		weather.NewOpenWeatherClient(cfg.OpenWeather, &http.Client{Timeout: cfg.EnvironmentTimeout}),
		cfg.EnvCacheSize,
		cfg.EnvCacheTTL,
	)

	orchestrator := assistant.NewOrchestrator(
		dbService.Pets(),
		env,
		geminiservice.NewClient(cfg.Gemini),
		assistant.Options{
			ProfileTimeout:     cfg.ProfileTimeout,
			EnvironmentTimeout: cfg.EnvironmentTimeout,
			GenerationTimeout:  cfg.GenerationTimeout,
			Metrics:            metrics.NewRecorder(registry),
		},
	)

	apiServer := server.NewServer(cfg, server.Dependencies{
		DB:        dbService,
		Assistant: orchestrator,
		Registry:  registry,
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Str("env", cfg.AppEnv).Msg("Walkmate API listening")
	err = apiServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server error")
	}

	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
