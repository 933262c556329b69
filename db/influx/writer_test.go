package influx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

var generatedAt = time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)

func goaRun(t *testing.T) *service.Run {
	t.Helper()
	svc := service.New(
		forecast.NewEngine(forecast.WithVariance(forecast.NoVariance())),
		service.WithClock(func() time.Time { return generatedAt }),
	)
	run, err := svc.Predict(context.Background(), api.PredictionRequest{
		State:       "Goa",
		BillHistory: []float64{180},
	}, "kafka")
	require.NoError(t, err)
	return run
}

func TestPoints(t *testing.T) {
	run := goaRun(t)
	points := Points(run)
	require.Len(t, points, 13)

	for i, p := range points[:12] {
		assert.Equal(t, measurementMonthly, p.Name())
		assert.Equal(t, time.Date(2026, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC), p.Time())
	}

	summary := points[12]
	assert.Equal(t, measurementRun, summary.Name())
	assert.Equal(t, generatedAt, summary.Time())

	tags := map[string]string{}
	for _, tag := range summary.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"state": "Goa", "climate": string(run.Result.Region.Climate), "source": "kafka"}, tags)

	fields := map[string]interface{}{}
	for _, f := range summary.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, run.Result.TotalAnnual, fields["total_annual"])
	assert.Equal(t, run.Result.TotalCost, fields["total_cost"])
	assert.Equal(t, 0.0, fields["appliance_kwh"])
}

func TestPointsApplianceLoad(t *testing.T) {
	svc := service.New(
		forecast.NewEngine(forecast.WithVariance(forecast.NoVariance())),
		service.WithClock(func() time.Time { return generatedAt }),
	)
	run, err := svc.Predict(context.Background(), api.PredictionRequest{
		State:       "Goa",
		BillHistory: []float64{180},
		Appliances: []api.Appliance{
			{Name: "Fan", Category: "cooling", Watts: 75, Hours: 10},
			{Name: "TV", Category: "entertainment", Watts: 100, Hours: 4},
		},
	}, "http")
	require.NoError(t, err)

	summary := Points(run)[12]
	for _, f := range summary.FieldList() {
		if f.Key == "appliance_kwh" {
			assert.Equal(t, run.Result.Breakdown.Total(), f.Value)
			assert.Greater(t, f.Value.(float64), 0.0)
			return
		}
	}
	t.Fatal("appliance_kwh field missing")
}

func TestWriterRecord(t *testing.T) {
	var mu sync.Mutex
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"name":"influxdb","message":"ready for queries and writes","status":"pass","checks":[]}`)
		case "/api/v2/write":
			assert.Equal(t, "energy", r.URL.Query().Get("org"))
			assert.Equal(t, "forecasts", r.URL.Query().Get("bucket"))
			data, _ := io.ReadAll(r.Body)
			mu.Lock()
			body = string(data)
			mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	writer, err := NewWriter(ctx, Config{URL: srv.URL, Org: "energy", Token: "t", Bucket: "forecasts"})
	require.NoError(t, err)
	defer writer.Close()

	assert.Equal(t, "influxdb", writer.Name())
	require.NoError(t, writer.Record(ctx, goaRun(t)))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 12, strings.Count(body, measurementMonthly+","))
	assert.Equal(t, 1, strings.Count(body, measurementRun+","))
	assert.Contains(t, body, "state=Goa")
}

func TestNewWriterUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewWriter(ctx, Config{URL: url})
	assert.Error(t, err)
}
