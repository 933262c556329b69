// Package service runs a forecast end to end: validation, prediction, tips,
// explanation, budget policies and archiving. The HTTP server, the CLI and
// the Kafka worker all go through it.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/advisor"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/explain"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/metrics"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/policy"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
	apperrors "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/errors"
)

// Recorder archives completed runs. Failures are logged and never fail the
// run.
type Recorder interface {
	Name() string
	Record(ctx context.Context, run *Run) error
}

// Run is one completed forecast with everything derived from it.
type Run struct {
	ID          uuid.UUID
	Source      string
	GeneratedAt time.Time
	Request     api.PredictionRequest
	Result      *forecast.Result
	Tips        []string
	Factors     []explain.Factor
	Policy      *policy.Result
}

type Service struct {
	engine    *forecast.Engine
	policies  *policy.Evaluator
	recorders []Recorder
	logger    zerolog.Logger
	now       func() time.Time
}

type Option func(*Service)

// WithPolicies enables budget policy evaluation.
func WithPolicies(e *policy.Evaluator) Option {
	return func(s *Service) { s.policies = e }
}

// WithRecorders appends archive sinks.
func WithRecorders(r ...Recorder) Option {
	return func(s *Service) { s.recorders = append(s.recorders, r...) }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now for run timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(engine *forecast.Engine, opts ...Option) *Service {
	s := &Service{
		engine: engine,
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the underlying forecast engine.
func (s *Service) Engine() *forecast.Engine { return s.engine }

// ToAppliances converts request appliances to engine input. Category names
// are matched case-insensitively; anything unknown becomes miscellaneous.
func ToAppliances(in []api.Appliance) []forecast.Appliance {
	out := make([]forecast.Appliance, 0, len(in))
	for _, a := range in {
		cat := forecast.Category(strings.ToLower(strings.TrimSpace(a.Category)))
		if !cat.Valid() {
			cat = forecast.CategoryMiscellaneous
		}
		out = append(out, forecast.Appliance{
			Name:        a.Name,
			Category:    cat,
			Watts:       float64(a.Watts),
			HoursPerDay: a.Hours,
		})
	}
	return out
}

// Predict runs the full pipeline for one request.
func (s *Service) Predict(ctx context.Context, req api.PredictionRequest, source string) (*Run, error) {
	appliances := ToAppliances(req.Appliances)
	result, err := s.engine.Predict(req.State, req.BillHistory, appliances)
	if err != nil {
		s.countFailure(source, err)
		return nil, err
	}

	run := &Run{
		ID:          uuid.New(),
		Source:      source,
		GeneratedAt: s.now().UTC(),
		Request:     req,
		Result:      result,
		Tips:        advisor.Advise(result.Region, result.Breakdown),
		Factors:     explain.Explain(result.AvgHistorical, len(appliances), float64(result.AvgMonthly)),
	}

	logger := s.logger.With().Str("run_id", run.ID.String()).Str("state", result.Region.Name).Logger()

	if s.policies != nil {
		pr, err := s.policies.Evaluate(ctx, PolicyInput(result))
		if err != nil {
			logger.Warn().Err(apperrors.NewPolicyError(err)).Msg("budget policy evaluation failed")
		} else {
			run.Policy = pr
			for _, d := range pr.Denials {
				logger.Info().Str("denial", d).Msg("budget policy denied forecast")
			}
		}
	}

	for _, r := range s.recorders {
		if err := r.Record(ctx, run); err != nil {
			metrics.RecordErrors.WithLabelValues(r.Name()).Inc()
			logger.Error().Err(err).Str("recorder", r.Name()).Msg("failed to record forecast")
		}
	}

	outcome := metrics.OutcomeOK
	if run.Policy != nil && !run.Policy.Passed {
		outcome = metrics.OutcomeDenied
	}
	metrics.Predictions.WithLabelValues(source, outcome).Inc()
	metrics.AnnualUnits.WithLabelValues(result.Region.Name).Observe(float64(result.TotalAnnual))

	logger.Debug().
		Int64("total_annual", result.TotalAnnual).
		Int64("total_cost", result.TotalCost).
		Int64("avg_monthly", result.AvgMonthly).
		Msg("forecast complete")

	return run, nil
}

// Explain runs a prediction and scores it. Nothing is recorded.
func (s *Service) Explain(ctx context.Context, req api.PredictionRequest) ([]explain.Factor, error) {
	appliances := ToAppliances(req.Appliances)
	result, err := s.engine.Predict(req.State, req.BillHistory, appliances)
	if err != nil {
		return nil, err
	}
	return explain.Explain(result.AvgHistorical, len(appliances), float64(result.AvgMonthly)), nil
}

func (s *Service) countFailure(source string, err error) {
	outcome := metrics.OutcomeError
	if apperrors.IsInvalidInput(err) {
		outcome = metrics.OutcomeInvalid
	}
	metrics.Predictions.WithLabelValues(source, outcome).Inc()
}

// PolicyInput summarizes a result for policy evaluation.
func PolicyInput(r *forecast.Result) policy.Input {
	peak := r.PeakMonth()
	tariff, _ := r.Region.Tariff.Float64()
	return policy.Input{
		State:       r.Region.Name,
		Climate:     string(r.Region.Climate),
		TotalAnnual: r.TotalAnnual,
		TotalCost:   r.TotalCost,
		AvgMonthly:  r.AvgMonthly,
		PeakUnits:   peak.Units,
		PeakMonth:   peak.Label,
		Tariff:      tariff,
	}
}
