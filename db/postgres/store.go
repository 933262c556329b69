// Package postgres archives forecast runs in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
)

const schema = `
CREATE TABLE IF NOT EXISTS forecast_runs (
	id UUID PRIMARY KEY,
	source TEXT NOT NULL,
	state TEXT NOT NULL,
	bill_history DOUBLE PRECISION[] NOT NULL,
	appliances JSONB NOT NULL,
	total_annual BIGINT NOT NULL,
	total_cost BIGINT NOT NULL,
	avg_monthly BIGINT NOT NULL,
	tips TEXT[] NOT NULL,
	denials TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS forecast_months (
	run_id UUID NOT NULL REFERENCES forecast_runs(id) ON DELETE CASCADE,
	month SMALLINT NOT NULL,
	units BIGINT NOT NULL,
	cost BIGINT NOT NULL,
	PRIMARY KEY (run_id, month)
);`

// StoredRun is the relational view of an archived forecast.
type StoredRun struct {
	ID          uuid.UUID `json:"id"`
	Source      string    `json:"source"`
	State       string    `json:"state"`
	BillHistory []float64 `json:"bill_history"`
	TotalAnnual int64     `json:"total_annual"`
	TotalCost   int64     `json:"total_cost"`
	AvgMonthly  int64     `json:"avg_monthly"`
	Tips        []string  `json:"tips"`
	Denials     []string  `json:"denials"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store implements service.Recorder over database/sql with the lib/pq driver.
type Store struct {
	db *sql.DB
}

var _ service.Recorder = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "postgres" }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record writes the run and its months in one transaction.
func (s *Store) Record(ctx context.Context, run *service.Run) error {
	appliances, err := json.Marshal(run.Request.Appliances)
	if err != nil {
		return fmt.Errorf("failed to marshal appliances: %w", err)
	}

	var denials []string
	if run.Policy != nil {
		denials = run.Policy.Denials
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res := run.Result
	_, err = tx.ExecContext(ctx, `
		INSERT INTO forecast_runs (
			id, source, state, bill_history, appliances, total_annual,
			total_cost, avg_monthly, tips, denials, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		run.ID, run.Source, res.Region.Name, pq.Array(run.Request.BillHistory), appliances,
		res.TotalAnnual, res.TotalCost, res.AvgMonthly,
		pq.Array(run.Tips), pq.Array(nonNil(denials)), run.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("forecast_months", "run_id", "month", "units", "cost"))
	if err != nil {
		return fmt.Errorf("failed to prepare copy: %w", err)
	}
	for _, m := range res.Months {
		if _, err := stmt.ExecContext(ctx, run.ID, m.Month, m.Units, m.Cost); err != nil {
			stmt.Close()
			return fmt.Errorf("failed to copy month %d: %w", m.Month, err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return fmt.Errorf("failed to flush months: %w", err)
	}
	if err := stmt.Close(); err != nil {
		return fmt.Errorf("failed to close copy: %w", err)
	}

	return tx.Commit()
}

// GetRun loads an archived run, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*StoredRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, state, bill_history, total_annual, total_cost,
		       avg_monthly, tips, denials, created_at
		FROM forecast_runs WHERE id = $1`, id)

	var r StoredRun
	err := row.Scan(
		&r.ID, &r.Source, &r.State, pq.Array(&r.BillHistory), &r.TotalAnnual,
		&r.TotalCost, &r.AvgMonthly, pq.Array(&r.Tips), pq.Array(&r.Denials), &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
