package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
)

func breakdown(cooling, heating float64) forecast.Breakdown {
	b := forecast.NewBreakdown()
	b[forecast.CategoryCooling] = cooling
	b[forecast.CategoryHeating] = heating
	return b
}

func TestAdvise(t *testing.T) {
	tests := []struct {
		name    string
		climate region.Climate
		b       forecast.Breakdown
		count   int
		extra   string
	}{
		{"cold with heating", region.ClimateCold, breakdown(0, 100), 6, TipHeatingDominant},
		{"desert with cooling", region.ClimateDesert, breakdown(200, 0), 6, TipCoolingDominant},
		{"hot-dry uses desert tips", region.ClimateHotDry, breakdown(200, 0), 6, TipCoolingDominant},
		{"humid tie", region.ClimateHumid, breakdown(50, 50), 5, ""},
		{"moderate has no climate tips", region.ClimateModerate, breakdown(10, 0), 3, TipCoolingDominant},
		{"extreme with nothing", region.ClimateExtreme, forecast.NewBreakdown(), 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := Advise(region.Profile{Climate: tt.climate}, tt.b)
			assert.Len(t, tips, tt.count)
			assert.Equal(t, TipLED, tips[len(tips)-2])
			assert.Equal(t, TipStandby, tips[len(tips)-1])
			if tt.extra != "" {
				assert.Equal(t, tt.extra, tips[len(tips)-3])
			} else {
				assert.NotContains(t, tips, TipCoolingDominant)
				assert.NotContains(t, tips, TipHeatingDominant)
			}
		})
	}
}

func TestAdviseClimateTipsComeFirst(t *testing.T) {
	tips := Advise(region.Profile{Climate: region.ClimateCold}, breakdown(0, 1))
	assert.Equal(t, climateTips[region.ClimateCold], tips[:3])

	hotDry := Advise(region.Profile{Climate: region.ClimateHotDry}, forecast.NewBreakdown())
	desert := Advise(region.Profile{Climate: region.ClimateDesert}, forecast.NewBreakdown())
	assert.Equal(t, desert, hotDry)
}
