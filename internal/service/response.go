package service

import (
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/catalog"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/explain"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

// Response maps a run to the public wire contract.
func (r *Run) Response() api.PredictionResponse {
	res := r.Result
	preds := make([]api.MonthlyPrediction, 0, len(res.Months))
	for _, m := range res.Months {
		preds = append(preds, api.MonthlyPrediction{Month: m.Label, Units: m.Units, Cost: m.Cost})
	}

	breakdown := make(map[string]float64, len(forecast.Categories))
	for _, c := range forecast.Categories {
		breakdown[string(c)] = res.Breakdown[c]
	}

	generated := r.GeneratedAt
	out := api.PredictionResponse{
		Predictions:        preds,
		ApplianceBreakdown: breakdown,
		TotalAnnual:        res.TotalAnnual,
		TotalCost:          res.TotalCost,
		AvgMonthly:         res.AvgMonthly,
		Tips:               r.Tips,
		RunID:              r.ID.String(),
		State:              res.Region.Name,
		GeneratedAt:        &generated,
	}
	if r.Policy != nil {
		out.Policy = &api.PolicyOutcome{
			Denials:  r.Policy.Denials,
			Warnings: r.Policy.Warnings,
			Passed:   r.Policy.Passed,
		}
	}
	return out
}

func ExplainResponse(factors []explain.Factor) api.ExplainResponse {
	out := api.ExplainResponse{Features: make([]api.FeatureImpact, 0, len(factors))}
	for _, f := range factors {
		out.Features = append(out.Features, api.FeatureImpact{Feature: f.Name, Impact: f.Impact})
	}
	return out
}

func StateDetails(p region.Profile) api.StateDetails {
	tariff, _ := p.Tariff.Float64()
	return api.StateDetails{
		Name:     p.Name,
		Temp:     p.Temp,
		Humidity: p.Humidity,
		Tariff:   tariff,
		Climate:  string(p.Climate),
	}
}

func ApplianceTemplates() []api.ApplianceTemplate {
	presets := catalog.Appliances()
	out := make([]api.ApplianceTemplate, 0, len(presets))
	for _, t := range presets {
		out = append(out, api.ApplianceTemplate{
			Name:         t.Name,
			DefaultWatts: t.DefaultWatts,
			Category:     string(t.Category),
		})
	}
	return out
}
