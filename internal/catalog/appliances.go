// Package catalog lists the appliances offered as presets to clients.
package catalog

import "github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"

// Template is a preset appliance with its typical rating.
type Template struct {
	Name         string
	DefaultWatts int
	Category     forecast.Category
}

var defaults = []Template{
	{"Air Conditioner", 1500, forecast.CategoryCooling},
	{"Heater", 2000, forecast.CategoryHeating},
	{"Geyser", 2000, forecast.CategoryHeating},
	{"Refrigerator", 150, forecast.CategoryKitchen},
	{"Washing Machine", 500, forecast.CategoryKitchen},
	{"Microwave", 1200, forecast.CategoryKitchen},
	{"Television", 100, forecast.CategoryEntertainment},
	{"Fan", 75, forecast.CategoryCooling},
	{"Light Bulbs", 40, forecast.CategoryLighting},
	{"Desktop Computer", 200, forecast.CategoryElectronics},
	{"Miscellaneous", 100, forecast.CategoryMiscellaneous},
}

// Appliances returns a copy of the preset list in display order.
func Appliances() []Template {
	out := make([]Template, len(defaults))
	copy(out, defaults)
	return out
}

// Find returns the preset with the given name.
func Find(name string) (Template, bool) {
	for _, t := range defaults {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}
