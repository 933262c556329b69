// Package bootstrap wires configuration into a ready-to-use forecast
// service with its optional archives.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/db/clickhouse"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/db/influx"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/db/postgres"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/config"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/policy"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
)

// Check probes a dependency for readiness.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

// App is a wired service plus the resources it owns. Runs and Summaries
// are nil unless the PostgreSQL or ClickHouse archive is configured.
type App struct {
	Service   *service.Service
	Checks    []Check
	Runs      *postgres.Store
	Summaries *clickhouse.Store
	closers   []func()
}

// Close releases every opened archive.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// VarianceFor picks the noise source from configuration.
func VarianceFor(cfg config.ForecastConfig) forecast.VarianceFactory {
	switch {
	case cfg.NoVariance:
		return forecast.NoVariance()
	case cfg.Seed != 0:
		return forecast.SeededVariance(cfg.Seed)
	default:
		return forecast.RandomVarianceFactory()
	}
}

// Build connects the configured archives. An archive whose connection
// settings are empty is skipped.
func Build(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	app := &App{}
	var recorders []service.Recorder

	if cfg.ClickHouse.Host != "" {
		store, err := clickhouse.NewStore(&clickhouse.Config{
			Host:     cfg.ClickHouse.Host,
			Port:     cfg.ClickHouse.Port,
			Database: cfg.ClickHouse.Database,
			Username: cfg.ClickHouse.Username,
			Password: cfg.ClickHouse.Password,
			Debug:    cfg.ClickHouse.Debug,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { store.Close() })
		if err := store.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("clickhouse: %w", err)
		}
		recorders = append(recorders, store)
		app.Summaries = store
		app.Checks = append(app.Checks, Check{Name: store.Name(), Fn: store.Ping})
		logger.Info().Str("host", cfg.ClickHouse.Host).Msg("ClickHouse archive enabled")
	}

	if cfg.Postgres.DSN != "" {
		store, err := postgres.Open(cfg.Postgres.DSN)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { store.Close() })
		if err := store.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		recorders = append(recorders, store)
		app.Runs = store
		app.Checks = append(app.Checks, Check{Name: store.Name(), Fn: store.Ping})
		logger.Info().Msg("PostgreSQL archive enabled")
	}

	if cfg.InfluxDB.URL != "" {
		writer, err := influx.NewWriter(ctx, influx.Config{
			URL:    cfg.InfluxDB.URL,
			Org:    cfg.InfluxDB.Org,
			Token:  cfg.InfluxDB.Token,
			Bucket: cfg.InfluxDB.Bucket,
		})
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, writer.Close)
		recorders = append(recorders, writer)
		logger.Info().Str("url", cfg.InfluxDB.URL).Msg("InfluxDB sink enabled")
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithRecorders(recorders...),
	}
	if dir := cfg.Forecast.PoliciesDir; dir != "" {
		opts = append(opts, service.WithPolicies(policy.NewEvaluator(dir)))
		app.Checks = append(app.Checks, Check{Name: "policies", Fn: func(context.Context) error {
			if _, err := os.Stat(dir); err != nil {
				return fmt.Errorf("policies directory: %w", err)
			}
			return nil
		}})
	}

	engine := forecast.NewEngine(forecast.WithVariance(VarianceFor(cfg.Forecast)))
	app.Service = service.New(engine, opts...)
	return app, nil
}
