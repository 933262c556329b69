package forecast

import "github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"

const (
	coolingBoost     = 1.3
	coolingBoostTemp = 30.0 // strictly above
	heatingBoost     = 1.4
	heatingBoostTemp = 20.0 // strictly below
)

// Allocate distributes appliance load into the seven category buckets.
// Cooling loads are boosted in hot regions and heating loads in cold ones.
// Appliances with an unrecognised category count as miscellaneous.
func Allocate(appliances []Appliance, p region.Profile) Breakdown {
	breakdown := NewBreakdown()

	for _, a := range appliances {
		adjusted := a.MonthlyKWh()

		switch {
		case a.Category == CategoryCooling && p.Temp > coolingBoostTemp:
			adjusted *= coolingBoost
		case a.Category == CategoryHeating && p.Temp < heatingBoostTemp:
			adjusted *= heatingBoost
		}

		cat := a.Category
		if !cat.Valid() {
			cat = CategoryMiscellaneous
		}
		breakdown[cat] += adjusted
	}

	return breakdown
}
