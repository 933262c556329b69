// Package explain attaches relative-influence scores to a prediction.
package explain

// Factor is one named input and its illustrative impact score. Scores are
// not normalized and need not sum to 100.
type Factor struct {
	Name   string  `json:"feature"`
	Impact float64 `json:"impact"`
}

const (
	FactorHistoricalUsage   = "Historical Usage"
	FactorApplianceCount    = "Appliance Count"
	FactorClimate           = "Climate/Temp"
	FactorSeasonalVariation = "Seasonal Variation"
	FactorStateTariff       = "State Tariff"
)

// Explain returns the five factors in fixed order. A zero (or negative)
// average monthly prediction yields zero impact for every factor.
func Explain(avgHistorical float64, applianceCount int, avgMonthly float64) []Factor {
	factors := []Factor{
		{Name: FactorHistoricalUsage},
		{Name: FactorApplianceCount},
		{Name: FactorClimate},
		{Name: FactorSeasonalVariation},
		{Name: FactorStateTariff},
	}
	if avgMonthly <= 0 {
		return factors
	}

	factors[0].Impact = avgHistorical / avgMonthly * 30
	factors[1].Impact = float64(applianceCount) / 10 * 25
	factors[2].Impact = 20
	factors[3].Impact = 15
	factors[4].Impact = 10
	return factors
}
