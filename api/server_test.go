package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
	contract "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

const delhiBody = `{"state":"Delhi","bill_history":[300],"appliances":[{"name":"AC","category":"cooling","watts":1500,"hours":5}]}`

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, http.Handler) {
	t.Helper()
	svc := service.New(forecast.NewEngine(forecast.WithVariance(forecast.NoVariance())))
	cfg := DefaultConfig()
	cfg.RateLimitRPS = 0
	if mutate != nil {
		mutate(&cfg)
	}
	s := NewServer(svc, cfg, zerolog.Nop())
	return s, s.Router()
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestPredictEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(h, http.MethodPost, "/api/v1/predict", delhiBody, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp contract.PredictionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Predictions, 12)
	assert.Equal(t, "Jan", resp.Predictions[0].Month)
	assert.Equal(t, int64(6264), resp.TotalAnnual)
	assert.Equal(t, int64(40730), resp.TotalCost)
	assert.Equal(t, int64(522), resp.AvgMonthly)
	assert.NotEmpty(t, resp.Tips)
	assert.NotEmpty(t, resp.RunID)
	assert.Contains(t, resp.ApplianceBreakdown, "miscellaneous")
}

func TestPredictEndpointErrors(t *testing.T) {
	_, h := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
		err  string
	}{
		{"malformed json", `{"state":`, http.StatusBadRequest, ""},
		{"empty history", `{"state":"Delhi","bill_history":[]}`, http.StatusBadRequest, "EMPTY_BILL_HISTORY"},
		{"units beyond cap", `{"state":"Delhi","bill_history":[1e19]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad hours", `{"state":"Delhi","bill_history":[100],"appliances":[{"watts":10,"hours":30}]}`, http.StatusBadRequest, "INVALID_APPLIANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(h, http.MethodPost, "/api/v1/predict", tt.body, nil)
			assert.Equal(t, tt.code, rec.Code)

			var e contract.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
			assert.False(t, e.Success)
			assert.NotEmpty(t, e.Error)
			assert.Equal(t, tt.err, e.Code)
		})
	}
}

func TestPredictEndpointBodyLimit(t *testing.T) {
	_, h := newTestServer(t, func(c *Config) { c.MaxRequestSize = 16 })
	rec := do(h, http.MethodPost, "/api/v1/predict", delhiBody, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestExplainEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(h, http.MethodPost, "/api/v1/shap", delhiBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp contract.ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Features, 5)
	assert.Equal(t, "Historical Usage", resp.Features[0].Feature)
	assert.InDelta(t, 300.0/522*30, resp.Features[0].Impact, 1e-9)
}

func TestStateEndpoints(t *testing.T) {
	_, h := newTestServer(t, nil)

	rec := do(h, http.MethodGet, "/api/v1/states", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 36)
	assert.Equal(t, "Andaman and Nicobar Islands", list[0])

	rec = do(h, http.MethodGet, "/api/v1/states/Tamil%20Nadu", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details contract.StateDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	assert.Equal(t, "Tamil Nadu", details.Name)
	assert.Equal(t, "hot-humid", details.Climate)
	assert.Equal(t, 5.5, details.Tariff)

	rec = do(h, http.MethodGet, "/api/v1/states/Atlantis", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAppliancesEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)
	rec := do(h, http.MethodGet, "/api/v1/appliances", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body []contract.ApplianceTemplate
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 11)
	assert.Equal(t, contract.ApplianceTemplate{Name: "Air Conditioner", DefaultWatts: 1500, Category: "cooling"}, body[0])
}

func TestAPIKeyRequired(t *testing.T) {
	_, h := newTestServer(t, func(c *Config) { c.APIKey = "secret" })

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/states", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/states", "", map[string]string{"X-API-Key": "secret"}).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health", "", nil).Code)
}

func TestRateLimit(t *testing.T) {
	_, h := newTestServer(t, func(c *Config) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 2
	})

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/states", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/v1/states", "", nil).Code)
	rec := do(h, http.MethodGet, "/api/v1/states", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestCORS(t *testing.T) {
	_, h := newTestServer(t, func(c *Config) { c.CORSOrigins = []string{"https://app.example"} })

	rec := do(h, http.MethodOptions, "/api/v1/predict", "", map[string]string{"Origin": "https://app.example"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthEndpoints(t *testing.T) {
	s, h := newTestServer(t, func(c *Config) { c.Version = "1.2.3" })

	rec := do(h, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "1.2.3", health["version"])

	assert.Equal(t, "OK", do(h, http.MethodGet, "/health/live", "", nil).Body.String())
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/health/ready", "", nil).Code)
	assert.Contains(t, do(h, http.MethodGet, "/version", "", nil).Body.String(), "1.2.3")

	s.AddReadinessCheck("db", func(context.Context) error { return errors.New("down") })
	rec = do(s.Router(), http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "down")
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newTestServer(t, nil)
	do(h, http.MethodPost, "/api/v1/predict", delhiBody, nil)

	rec := do(h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "energy_predictions_total")
	assert.True(t, bytes.Contains(rec.Body.Bytes(), []byte("energy_http_requests_total")))
}
