package api

import "time"

// MonthlyPrediction is one forecast month.
type MonthlyPrediction struct {
	Month string `json:"month"`
	Units int64  `json:"units"`
	Cost  int64  `json:"cost"`
}

// PolicyOutcome reports budget policy results for a forecast.
type PolicyOutcome struct {
	Denials  []string `json:"denials"`
	Warnings []string `json:"warnings"`
	Passed   bool     `json:"passed"`
}

// PredictionResponse is the output of /api/v1/predict.
type PredictionResponse struct {
	Predictions        []MonthlyPrediction `json:"predictions"`
	ApplianceBreakdown map[string]float64  `json:"appliance_breakdown"`
	TotalAnnual        int64               `json:"total_annual"`
	TotalCost          int64               `json:"total_cost"`
	AvgMonthly         int64               `json:"avg_monthly"`
	Tips               []string            `json:"tips"`

	RunID       string         `json:"run_id,omitempty"`
	State       string         `json:"state,omitempty"` // resolved region, after default fallback
	GeneratedAt *time.Time     `json:"generated_at,omitempty"`
	Policy      *PolicyOutcome `json:"policy,omitempty"`
}

// FeatureImpact is one explainability factor.
type FeatureImpact struct {
	Feature string  `json:"feature"`
	Impact  float64 `json:"impact"`
}

// ExplainResponse is the output of /api/v1/shap.
type ExplainResponse struct {
	Features []FeatureImpact `json:"features"`
}

// StateDetails is the output of /api/v1/states/{state}.
type StateDetails struct {
	Name     string  `json:"name"`
	Temp     float64 `json:"temp"`
	Humidity float64 `json:"humidity"`
	Tariff   float64 `json:"tariff"`
	Climate  string  `json:"climate"`
}

// ApplianceTemplate is one catalog entry from /api/v1/appliances.
type ApplianceTemplate struct {
	Name         string `json:"name"`
	DefaultWatts int    `json:"defaultWatts"`
	Category     string `json:"category"`
}
