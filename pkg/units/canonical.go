// Package units provides canonical energy units and conversions.
package units

// DaysPerMonth is the billing-month assumption used for appliance load.
const DaysPerMonth = 30.0

// MaxHoursPerDay bounds declared appliance usage.
const MaxHoursPerDay = 24.0

// WhToKWh converts watt-hours to kilowatt-hours.
func WhToKWh(wh float64) float64 {
	return wh / 1000
}

// DailyToMonthly scales a daily quantity to a billing month.
func DailyToMonthly(daily float64) float64 {
	return daily * DaysPerMonth
}

// MonthlyKWh returns the monthly consumption of a load drawing watts for
// hoursPerDay every day of a 30-day month.
func MonthlyKWh(watts, hoursPerDay float64) float64 {
	return WhToKWh(DailyToMonthly(watts * hoursPerDay))
}
