// Package main provides the energy forecast API server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/api"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/bootstrap"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/config"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

var version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger := platform.InitLogger(cfg.Server.LogLevel, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		platform.LogFatal(logger, "Failed to initialize service", err)
	}
	defer app.Close()

	server := api.NewServer(app.Service, api.Config{
		Port:            cfg.Server.Port,
		Version:         version,
		APIKey:          cfg.Server.APIKey,
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimitRPS:    cfg.Server.RateLimitRPS,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)
	for _, c := range app.Checks {
		server.AddReadinessCheck(c.Name, c.Fn)
	}
	if app.Runs != nil {
		server.SetRunArchive(app.Runs)
	}
	if app.Summaries != nil {
		server.SetStateSummarizer(app.Summaries)
	}

	logger.Info().
		Str("policies_dir", cfg.Forecast.PoliciesDir).
		Bool("auth", cfg.Server.APIKey != "").
		Msg("Configuration loaded")

	if err := server.Run(ctx); err != nil {
		platform.LogFatal(logger, "Server failed", err)
	}
	logger.Info().Msg("Server stopped")
}
