package forecast

import (
	"fmt"
	"time"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
	apperrors "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/errors"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/numeric"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/units"
)

const (
	// MonthsAhead is the forecast horizon.
	MonthsAhead = 12
	// MaxHistoryMonths bounds the accepted billing history.
	MaxHistoryMonths = 24
	// MaxMonthlyUnits caps a single billing month in kWh. Together with the
	// appliance caps it keeps every unit and cost total well inside int64.
	MaxMonthlyUnits = 1_000_000
	// MaxApplianceWatts caps one appliance's rated power.
	MaxApplianceWatts = 1_000_000
	// MaxAppliances caps the number of declared appliances.
	MaxAppliances = 200

	seasonalWeight   = 0.4
	regressionWeight = 0.6
)

// Engine produces twelve-month forecasts. It holds no mutable state; the
// variance factory is called once per prediction.
type Engine struct {
	registry *region.Registry
	variance VarianceFactory
}

// Option configures an Engine.
type Option func(*Engine)

// WithRegistry replaces the region table.
func WithRegistry(r *region.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithVariance replaces the noise source factory.
func WithVariance(f VarianceFactory) Option {
	return func(e *Engine) { e.variance = f }
}

// NewEngine creates an engine over the shared region table with randomly
// seeded variance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		registry: region.Shared(),
		variance: RandomVarianceFactory(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the region table the engine reads.
func (e *Engine) Registry() *region.Registry { return e.registry }

// Validate checks the caller contract for Predict.
func Validate(history []float64, appliances []Appliance) error {
	if len(history) == 0 {
		return apperrors.NewEmptyBillHistoryError()
	}
	if len(history) > MaxHistoryMonths {
		return apperrors.NewInvalidInputError("bill_history",
			"bill history has %d months, at most %d are accepted", len(history), MaxHistoryMonths)
	}
	for i, v := range history {
		if v < 0 || !numeric.IsFinite(v) {
			return apperrors.NewInvalidInputError("bill_history",
				"month %d has invalid units %v", i+1, v)
		}
		if v > MaxMonthlyUnits {
			return apperrors.NewInvalidInputError("bill_history",
				"month %d has %v units, at most %d are accepted", i+1, v, MaxMonthlyUnits)
		}
	}
	if len(appliances) > MaxAppliances {
		return apperrors.NewInvalidInputError("appliances",
			"%d appliances declared, at most %d are accepted", len(appliances), MaxAppliances)
	}
	for i, a := range appliances {
		if a.Watts < 0 || !numeric.IsFinite(a.Watts) {
			return apperrors.NewInvalidApplianceError(i, "watts must be zero or positive")
		}
		if a.Watts > MaxApplianceWatts {
			return apperrors.NewInvalidApplianceError(i, fmt.Sprintf("watts must be at most %d", MaxApplianceWatts))
		}
		if a.HoursPerDay < 0 || a.HoursPerDay > units.MaxHoursPerDay || !numeric.IsFinite(a.HoursPerDay) {
			return apperrors.NewInvalidApplianceError(i, "hours must be between 0 and 24")
		}
	}
	return nil
}

// Predict forecasts consumption and cost for the next twelve months,
// January through December. Unknown regions use the default profile.
func (e *Engine) Predict(regionName string, history []float64, appliances []Appliance) (*Result, error) {
	if err := Validate(history, appliances); err != nil {
		return nil, err
	}

	profile := e.registry.Lookup(regionName)
	avg := numeric.Mean(history)
	regression := DemandEstimate(avg, appliances, profile)
	noise := e.variance()

	result := &Result{
		Region:        profile,
		Months:        make([]MonthlyForecast, 0, MonthsAhead),
		AvgHistorical: avg,
		Regression:    regression,
	}

	for m := 1; m <= MonthsAhead; m++ {
		seasonal := SeasonalFactor(m, profile) * avg
		blended := numeric.Blend(seasonal, seasonalWeight, regression, regressionWeight)
		variance := noise.Next()
		final := blended * (1 + variance)
		if !numeric.IsFinite(final) {
			return nil, apperrors.NewInvariantError("month %d forecast is not finite", m)
		}

		mf := MonthlyForecast{
			Month:    m,
			Label:    time.Month(m).String()[:3],
			Units:    numeric.RoundInt(final),
			Cost:     numeric.RoundMoney(final, profile.Tariff),
			Seasonal: seasonal,
			Blended:  blended,
			Variance: variance,
		}
		result.Months = append(result.Months, mf)
		result.TotalAnnual += mf.Units
		result.TotalCost += mf.Cost
	}

	if len(result.Months) != MonthsAhead {
		return nil, apperrors.NewInvariantError("expected %d months, got %d", MonthsAhead, len(result.Months))
	}

	result.AvgMonthly = numeric.RoundInt(float64(result.TotalAnnual) / MonthsAhead)
	result.Breakdown = Allocate(appliances, profile)
	return result, nil
}
