package forecast

import (
	"math"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
)

const (
	winterPeakFactor  = 1.4
	winterOffFactor   = 0.8
	summerPeakFactor  = 1.5
	summerOffFactor   = 0.9
	sinusoidAmplitude = 0.3
)

// SeasonalFactor returns the relative demand multiplier for month (1..12).
// Cold regions peak October through February, desert and hot-dry regions
// peak April through July, and every other climate follows a sinusoid.
func SeasonalFactor(month int, p region.Profile) float64 {
	switch p.Climate {
	case region.ClimateCold:
		if month >= 10 || month <= 2 {
			return winterPeakFactor
		}
		return winterOffFactor
	case region.ClimateDesert, region.ClimateHotDry:
		if month >= 4 && month <= 7 {
			return summerPeakFactor
		}
		return summerOffFactor
	default:
		return 1 + sinusoidAmplitude*math.Sin(float64(month-1)*math.Pi/6)
	}
}
