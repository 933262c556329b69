// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
	OutcomeDenied  = "denied"

	SourceHTTP  = "http"
	SourceKafka = "kafka"
	SourceCLI   = "cli"
)

var (
	Predictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_predictions_total",
		Help: "Number of forecast runs by source and outcome.",
	}, []string{"source", "outcome"})

	AnnualUnits = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "energy_predicted_annual_kwh",
		Help:    "Predicted annual consumption per run in kWh.",
		Buckets: []float64{1000, 2000, 3000, 4000, 6000, 8000, 12000, 20000},
	}, []string{"state"})

	RecordErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_record_errors_total",
		Help: "Failed writes to forecast archives.",
	}, []string{"recorder"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "energy_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
)
