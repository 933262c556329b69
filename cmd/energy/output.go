package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/numeric"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

const rule = "════════════════════════════════════════════════════════════"

func writePredictionTable(w io.Writer, resp *api.PredictionResponse) error {
	fmt.Fprintf(w, "╔%s╗\n", rule)
	fmt.Fprintf(w, "║  %-57s ║\n", "12-MONTH FORECAST: "+resp.State)
	fmt.Fprintf(w, "╠%s╣\n", rule)
	fmt.Fprintf(w, "║  %-10s %15s %15s %15s ║\n", "Month", "Units (kWh)", "Cost (₹)", "")
	for _, p := range resp.Predictions {
		fmt.Fprintf(w, "║  %-10s %15d %15d %15s ║\n", p.Month, p.Units, p.Cost, "")
	}
	fmt.Fprintf(w, "╠%s╣\n", rule)
	fmt.Fprintf(w, "║  %-22s %-34s ║\n", "Total annual:", fmt.Sprintf("%d kWh", resp.TotalAnnual))
	fmt.Fprintf(w, "║  %-22s %-34s ║\n", "Total cost:", fmt.Sprintf("₹%d", resp.TotalCost))
	fmt.Fprintf(w, "║  %-22s %-34s ║\n", "Average monthly:", fmt.Sprintf("%d kWh", resp.AvgMonthly))

	fmt.Fprintf(w, "╠%s╣\n", rule)
	fmt.Fprintf(w, "║  %-57s ║\n", "Appliance breakdown (kWh/month)")
	for _, c := range forecast.Categories {
		v := resp.ApplianceBreakdown[string(c)]
		if v == 0 {
			continue
		}
		fmt.Fprintf(w, "║  %-22s %-34s ║\n", string(c), fmt.Sprintf("%.1f", v))
	}

	if resp.Policy != nil {
		fmt.Fprintf(w, "╠%s╣\n", rule)
		status := "✅ PASS"
		if !resp.Policy.Passed {
			status = "❌ DENY"
		}
		fmt.Fprintf(w, "║  %-22s %-34s ║\n", "Budget policy:", status)
		for _, d := range resp.Policy.Denials {
			fmt.Fprintf(w, "║  ❌ %-55s ║\n", truncate(d, 55))
		}
		for _, m := range resp.Policy.Warnings {
			fmt.Fprintf(w, "║  ⚠️  %-54s ║\n", truncate(m, 54))
		}
	}
	fmt.Fprintf(w, "╚%s╝\n", rule)

	if len(resp.Tips) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tips:")
		for _, t := range resp.Tips {
			fmt.Fprintf(w, "  %s\n", t)
		}
	}
	return nil
}

func writeExplainTable(w io.Writer, resp api.ExplainResponse) error {
	for _, f := range resp.Features {
		bar := strings.Repeat("█", int(numeric.Clamp(f.Impact/2, 0, 50)))
		fmt.Fprintf(w, "%-20s %6.1f  %s\n", f.Feature, f.Impact, bar)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
