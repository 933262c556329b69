// Package region holds the climate and tariff reference table for Indian
// states and union territories.
package region

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Climate classifies a region's seasonal demand shape.
type Climate string

const (
	ClimateCold     Climate = "cold"
	ClimateDesert   Climate = "desert"
	ClimateHotDry   Climate = "hot-dry"
	ClimateHotHumid Climate = "hot-humid"
	ClimateHumid    Climate = "humid"
	ClimateModerate Climate = "moderate"
	ClimatePleasant Climate = "pleasant"
	ClimateExtreme  Climate = "extreme"
)

// DefaultRegion is the profile used for unknown or empty region names.
const DefaultRegion = "Delhi"

// Profile is the static climate and tariff data for one region.
type Profile struct {
	Name     string
	Temp     float64         // reference temperature, °C
	Humidity float64         // reference relative humidity, %
	Tariff   decimal.Decimal // currency per kWh
	Climate  Climate
}

// Registry maps region names to profiles. It is never written after
// construction and is safe for concurrent readers.
type Registry struct {
	profiles map[string]Profile
	fallback Profile
}

var shared = NewRegistry()

// Shared returns the process-wide registry built from the fixed table.
func Shared() *Registry { return shared }

// NewRegistry builds a registry from the fixed state table.
func NewRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile, len(stateTable))}
	for _, row := range stateTable {
		r.profiles[row.name] = Profile{
			Name:     row.name,
			Temp:     row.temp,
			Humidity: row.humidity,
			Tariff:   decimal.RequireFromString(row.tariff),
			Climate:  row.climate,
		}
	}
	r.fallback = r.profiles[DefaultRegion]
	return r
}

// Lookup returns the profile for name, or the default profile when name is
// not in the table. It never fails.
func (r *Registry) Lookup(name string) Profile {
	if p, ok := r.profiles[name]; ok {
		return p
	}
	return r.Default()
}

// Get returns the profile for name and whether it was found.
func (r *Registry) Get(name string) (Profile, bool) {
	p, ok := r.profiles[name]
	return p, ok
}

// Default returns the fallback profile.
func (r *Registry) Default() Profile { return r.fallback }

// Names returns all region names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for n := range r.profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of regions.
func (r *Registry) Len() int { return len(r.profiles) }

type stateRow struct {
	name     string
	temp     float64
	humidity float64
	tariff   string
	climate  Climate
}

var stateTable = []stateRow{
	{"Andhra Pradesh", 33, 70, "6.0", ClimateHotHumid},
	{"Arunachal Pradesh", 20, 75, "5.0", ClimatePleasant},
	{"Assam", 28, 80, "5.5", ClimateHumid},
	{"Bihar", 31, 65, "6.0", ClimateModerate},
	{"Chhattisgarh", 32, 60, "5.8", ClimateHotDry},
	{"Goa", 30, 75, "6.2", ClimateHumid},
	{"Gujarat", 34, 60, "5.8", ClimateHotDry},
	{"Haryana", 31, 62, "6.0", ClimateModerate},
	{"Himachal Pradesh", 18, 55, "5.2", ClimateCold},
	{"Jharkhand", 30, 65, "5.7", ClimateModerate},
	{"Karnataka", 28, 65, "6.8", ClimatePleasant},
	{"Kerala", 29, 80, "6.2", ClimateHumid},
	{"Madhya Pradesh", 30, 55, "5.9", ClimateModerate},
	{"Maharashtra", 30, 70, "7.2", ClimateModerate},
	{"Manipur", 24, 75, "5.3", ClimatePleasant},
	{"Meghalaya", 22, 80, "5.1", ClimatePleasant},
	{"Mizoram", 23, 75, "5.2", ClimatePleasant},
	{"Nagaland", 24, 70, "5.2", ClimatePleasant},
	{"Odisha", 31, 75, "5.5", ClimateHumid},
	{"Punjab", 30, 60, "5.8", ClimateModerate},
	{"Rajasthan", 36, 40, "6.0", ClimateDesert},
	{"Sikkim", 18, 70, "5.0", ClimateCold},
	{"Tamil Nadu", 33, 75, "5.5", ClimateHotHumid},
	{"Telangana", 32, 65, "6.5", ClimateHotDry},
	{"Tripura", 28, 80, "5.4", ClimateHumid},
	{"Uttar Pradesh", 31, 68, "6.3", ClimateModerate},
	{"Uttarakhand", 19, 60, "5.3", ClimateCold},
	{"West Bengal", 30, 78, "7.0", ClimateHumid},
	{"Andaman and Nicobar Islands", 29, 85, "7.0", ClimateHumid},
	{"Chandigarh", 29, 55, "6.0", ClimateModerate},
	{"Dadra and Nagar Haveli and Daman and Diu", 32, 70, "5.8", ClimateHotHumid},
	{"Delhi", 32, 65, "6.5", ClimateExtreme},
	{"Jammu & Kashmir", 18, 55, "5.0", ClimateCold},
	{"Ladakh", 10, 40, "5.5", ClimateCold},
	{"Lakshadweep", 30, 80, "6.5", ClimateHumid},
	{"Puducherry", 31, 75, "5.6", ClimateHotHumid},
}
