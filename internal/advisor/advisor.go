// Package advisor turns a region's climate and a consumption breakdown into
// energy-saving tips.
package advisor

import (
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
)

var climateTips = map[region.Climate][]string{
	region.ClimateCold: {
		"🔥 Install thermal insulation to reduce heating costs by 20-30%",
		"🌡️ Use smart thermostats to optimize heating schedules",
		"🪟 Seal windows and doors to prevent heat loss",
	},
	region.ClimateDesert: {
		"❄️ Set AC to 24-26°C to reduce cooling load by 25%",
		"🏠 Use reflective roofing to reduce indoor temperature",
		"🌳 Plant shade trees around your home",
	},
	region.ClimateHumid: {
		"💨 Use dehumidifiers efficiently to reduce AC runtime",
		"🪟 Ensure proper ventilation to reduce moisture",
		"☀️ Use natural ventilation during cooler hours",
	},
}

const (
	TipCoolingDominant = "❄️ Cooling appliances are your biggest consumers - consider upgrading to 5-star rated ACs"
	TipHeatingDominant = "🔥 Heating appliances dominate - consider solar water heaters"
	TipLED             = "💡 Switch to LED bulbs - save up to 75% on lighting costs"
	TipStandby         = "🔌 Unplug devices on standby mode - saves 5-10% monthly"
)

// Advise returns tips in a fixed order: climate tips, then at most one
// cooling/heating tip, then the two universal tips.
func Advise(p region.Profile, b forecast.Breakdown) []string {
	climate := p.Climate
	if climate == region.ClimateHotDry {
		climate = region.ClimateDesert
	}

	tips := make([]string, 0, 6)
	tips = append(tips, climateTips[climate]...)

	cooling, heating := b[forecast.CategoryCooling], b[forecast.CategoryHeating]
	switch {
	case cooling > heating:
		tips = append(tips, TipCoolingDominant)
	case heating > cooling:
		tips = append(tips, TipHeatingDominant)
	}

	return append(tips, TipLED, TipStandby)
}
