// Package clickhouse archives forecast runs in ClickHouse for analytics
// across states and over time.
package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
)

// RunRow is one archived forecast.
type RunRow struct {
	ID          uuid.UUID       `ch:"id"`
	Source      string          `ch:"source"`
	State       string          `ch:"state"`
	Climate     string          `ch:"climate"`
	Tariff      decimal.Decimal `ch:"tariff"`
	HistoryLen  uint16          `ch:"history_len"`
	AvgHistory  float64         `ch:"avg_history"`
	Regression  float64         `ch:"regression"`
	TotalAnnual int64           `ch:"total_annual"`
	TotalCost   int64           `ch:"total_cost"`
	AvgMonthly  int64           `ch:"avg_monthly"`
	PolicyPass  uint8           `ch:"policy_passed"`
	CreatedAt   time.Time       `ch:"created_at"`
}

// MonthRow is one forecast month of an archived run.
type MonthRow struct {
	RunID    uuid.UUID `ch:"run_id"`
	State    string    `ch:"state"`
	Month    uint8     `ch:"month"`
	Units    int64     `ch:"units"`
	Cost     int64     `ch:"cost"`
	Seasonal float64   `ch:"seasonal"`
	Blended  float64   `ch:"blended"`
	Variance float64   `ch:"variance"`
}

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "energy",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store implements service.Recorder using ClickHouse
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

var _ service.Recorder = (*Store)(nil)

// NewStore opens a connection. ClickHouse connects lazily, so call Ping to
// verify reachability.
func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	return &Store{conn: conn, cfg: cfg}, nil
}

func (s *Store) Name() string { return "clickhouse" }

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// EnsureSchema creates the archive tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecast_runs (
			id UUID,
			source LowCardinality(String),
			state LowCardinality(String),
			climate LowCardinality(String),
			tariff Decimal(10, 2),
			history_len UInt16,
			avg_history Float64,
			regression Float64,
			total_annual Int64,
			total_cost Int64,
			avg_monthly Int64,
			policy_passed UInt8,
			created_at DateTime
		) ENGINE = MergeTree ORDER BY (state, created_at)`,
		`CREATE TABLE IF NOT EXISTS forecast_months (
			run_id UUID,
			state LowCardinality(String),
			month UInt8,
			units Int64,
			cost Int64,
			seasonal Float64,
			blended Float64,
			variance Float64
		) ENGINE = MergeTree ORDER BY (state, run_id, month)`,
	}
	for _, stmt := range stmts {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Record inserts the run row and its twelve months in one batch.
func (s *Store) Record(ctx context.Context, run *service.Run) error {
	row := NewRunRow(run)
	err := s.conn.Exec(ctx, `
		INSERT INTO forecast_runs (
			id, source, state, climate, tariff, history_len, avg_history,
			regression, total_annual, total_cost, avg_monthly, policy_passed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		row.ID, row.Source, row.State, row.Climate, row.Tariff, row.HistoryLen,
		row.AvgHistory, row.Regression, row.TotalAnnual, row.TotalCost,
		row.AvgMonthly, row.PolicyPass, row.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO forecast_months (run_id, state, month, units, cost, seasonal, blended, variance)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}
	for _, m := range NewMonthRows(run) {
		if err := batch.Append(m.RunID, m.State, m.Month, m.Units, m.Cost, m.Seasonal, m.Blended, m.Variance); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	return batch.Send()
}

// StateSummary aggregates archived runs for one state.
type StateSummary struct {
	State         string  `json:"state"`
	Runs          uint64  `json:"runs"`
	AvgAnnual     float64 `json:"avg_annual"`
	AvgAnnualCost float64 `json:"avg_annual_cost"`
}

// SummarizeStates returns per-state averages over runs created since the
// given time.
func (s *Store) SummarizeStates(ctx context.Context, since time.Time) ([]StateSummary, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT state, count(), avg(total_annual), avg(total_cost)
		FROM forecast_runs
		WHERE created_at >= ?
		GROUP BY state
		ORDER BY state
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize runs: %w", err)
	}
	defer rows.Close()

	var out []StateSummary
	for rows.Next() {
		var sum StateSummary
		if err := rows.Scan(&sum.State, &sum.Runs, &sum.AvgAnnual, &sum.AvgAnnualCost); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// NewRunRow flattens a run for the forecast_runs table.
func NewRunRow(run *service.Run) RunRow {
	res := run.Result
	return RunRow{
		ID:          run.ID,
		Source:      run.Source,
		State:       res.Region.Name,
		Climate:     string(res.Region.Climate),
		Tariff:      res.Region.Tariff,
		HistoryLen:  uint16(len(run.Request.BillHistory)),
		AvgHistory:  res.AvgHistorical,
		Regression:  res.Regression,
		TotalAnnual: res.TotalAnnual,
		TotalCost:   res.TotalCost,
		AvgMonthly:  res.AvgMonthly,
		PolicyPass:  boolToUInt8(run.Policy == nil || run.Policy.Passed),
		CreatedAt:   run.GeneratedAt,
	}
}

// NewMonthRows flattens a run's months for the forecast_months table.
func NewMonthRows(run *service.Run) []MonthRow {
	out := make([]MonthRow, 0, len(run.Result.Months))
	for _, m := range run.Result.Months {
		out = append(out, MonthRow{
			RunID:    run.ID,
			State:    run.Result.Region.Name,
			Month:    uint8(m.Month),
			Units:    m.Units,
			Cost:     m.Cost,
			Seasonal: m.Seasonal,
			Blended:  m.Blended,
			Variance: m.Variance,
		})
	}
	return out
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
