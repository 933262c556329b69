// Package api defines the shared request/response contracts for the HTTP
// server, the CLI and the Kafka worker.
package api

// Appliance is one user-declared electrical load.
type Appliance struct {
	Name     string  `json:"name" yaml:"name"`
	Category string  `json:"category" yaml:"category"` // cooling, heating, kitchen, entertainment, lighting, electronics, miscellaneous
	Watts    int     `json:"watts" yaml:"watts"`
	Hours    float64 `json:"hours" yaml:"hours"` // per day, 0-24
}

// PredictionRequest is the input for /api/v1/predict and /api/v1/shap.
type PredictionRequest struct {
	State       string      `json:"state" yaml:"state"`
	BillHistory []float64   `json:"bill_history" yaml:"bill_history"` // monthly kWh, oldest first
	Appliances  []Appliance `json:"appliances" yaml:"appliances"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}
