package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

func TestPredict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/predict", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))

		var req api.PredictionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Goa", req.State)

		json.NewEncoder(w).Encode(api.PredictionResponse{TotalAnnual: 1200, State: req.State})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", 0, time.Second)
	resp, err := c.Predict(context.Background(), api.PredictionRequest{State: "Goa", BillHistory: []float64{100}})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), resp.TotalAnnual)
	assert.Equal(t, "Goa", resp.State)
}

func TestExplain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/shap", r.URL.Path)
		assert.Empty(t, r.Header.Get("X-API-Key"))
		json.NewEncoder(w).Encode(api.ExplainResponse{Features: []api.FeatureImpact{{Feature: "Historical Usage", Impact: 17}}})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, "", 0, time.Second).Explain(context.Background(), api.PredictionRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Features, 1)
	assert.Equal(t, 17.0, resp.Features[0].Impact)
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "bill history must contain at least one month", Code: "EMPTY_BILL_HISTORY"})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 2, time.Second).Predict(context.Background(), api.PredictionRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, "EMPTY_BILL_HISTORY", se.Code)
	assert.Contains(t, se.Error(), "at least one month")
}

func TestRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "upstream", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(api.PredictionResponse{TotalAnnual: 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 2, time.Second).WithBackoff(time.Millisecond)
	resp, err := c.Predict(context.Background(), api.PredictionRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalAnnual)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0, time.Second).Predict(context.Background(), api.PredictionRequest{})
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "gateway down", se.Message)
}
