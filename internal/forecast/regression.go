package forecast

import "github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"

const (
	trendBias           = 1.1
	referenceTemp       = 25.0
	tempSensitivity     = 0.01
	referenceHumidity   = 50.0
	humiditySensitivity = 0.005
	populationScale     = 1.05
)

// DemandEstimate is the month-invariant regression component in kWh: the
// historical average with a 10% trend bias plus declared appliance load,
// scaled by temperature, humidity and population factors in that order.
func DemandEstimate(avgUnits float64, appliances []Appliance, p region.Profile) float64 {
	prediction := avgUnits * trendBias

	var applianceKWh float64
	for _, a := range appliances {
		applianceKWh += a.MonthlyKWh()
	}
	prediction += applianceKWh

	prediction *= 1 + (p.Temp-referenceTemp)*tempSensitivity
	prediction *= 1 + (p.Humidity-referenceHumidity)*humiditySensitivity
	prediction *= populationScale

	return prediction
}
