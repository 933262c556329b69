// Package forecast implements the household consumption model: a seasonal
// component, a demand regression, the appliance allocator and the 40/60
// blend that turns them into a twelve-month forecast.
package forecast

import (
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/units"
)

// Category groups appliances for the consumption breakdown.
type Category string

const (
	CategoryCooling       Category = "cooling"
	CategoryHeating       Category = "heating"
	CategoryKitchen       Category = "kitchen"
	CategoryEntertainment Category = "entertainment"
	CategoryLighting      Category = "lighting"
	CategoryElectronics   Category = "electronics"
	CategoryMiscellaneous Category = "miscellaneous"
)

// Categories lists every breakdown bucket in display order.
var Categories = []Category{
	CategoryCooling,
	CategoryHeating,
	CategoryKitchen,
	CategoryEntertainment,
	CategoryLighting,
	CategoryElectronics,
	CategoryMiscellaneous,
}

// Valid reports whether c is one of the fixed buckets.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Appliance is one declared load. Zero watts or hours contribute nothing.
type Appliance struct {
	Name        string
	Category    Category
	Watts       float64
	HoursPerDay float64
}

// MonthlyKWh is the appliance's consumption over a 30-day month.
func (a Appliance) MonthlyKWh() float64 {
	return units.MonthlyKWh(a.Watts, a.HoursPerDay)
}

// Breakdown maps every category to monthly kWh.
type Breakdown map[Category]float64

// NewBreakdown returns a breakdown with all seven buckets at zero.
func NewBreakdown() Breakdown {
	b := make(Breakdown, len(Categories))
	for _, c := range Categories {
		b[c] = 0
	}
	return b
}

// Total sums all buckets.
func (b Breakdown) Total() float64 {
	var t float64
	for _, v := range b {
		t += v
	}
	return t
}

// MonthlyForecast is one month of the prediction.
type MonthlyForecast struct {
	Month    int // 1..12
	Label    string
	Units    int64
	Cost     int64
	Seasonal float64 // seasonal component, kWh
	Blended  float64 // before variance
	Variance float64 // applied fraction, in [-0.05, 0.05)
}

// Result is the full twelve-month prediction. It is recomputed on every call.
type Result struct {
	Region        region.Profile
	Months        []MonthlyForecast
	Breakdown     Breakdown
	AvgHistorical float64
	Regression    float64 // month-invariant regression component, kWh
	TotalAnnual   int64
	TotalCost     int64
	AvgMonthly    int64
}

// PeakMonth returns the month with the highest units; ties keep the earliest.
func (r *Result) PeakMonth() MonthlyForecast {
	var peak MonthlyForecast
	for i, m := range r.Months {
		if i == 0 || m.Units > peak.Units {
			peak = m
		}
	}
	return peak
}
