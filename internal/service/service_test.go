package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/advisor"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/explain"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/policy"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
	apperrors "github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/errors"
)

type memoryRecorder struct {
	mu   sync.Mutex
	runs []*Run
	err  error
}

func (m *memoryRecorder) Name() string { return "memory" }

func (m *memoryRecorder) Record(_ context.Context, run *Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func delhiRequest() api.PredictionRequest {
	return api.PredictionRequest{
		State:       "Delhi",
		BillHistory: []float64{300},
		Appliances:  []api.Appliance{{Name: "AC", Category: "cooling", Watts: 1500, Hours: 5}},
	}
}

func newTestService(opts ...Option) *Service {
	engine := forecast.NewEngine(forecast.WithVariance(forecast.NoVariance()))
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(engine, opts...)
}

func TestPredict(t *testing.T) {
	rec := &memoryRecorder{}
	svc := newTestService(WithRecorders(rec))

	run, err := svc.Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.Equal(t, fixedNow, run.GeneratedAt)
	assert.Equal(t, "test", run.Source)
	assert.Equal(t, int64(6264), run.Result.TotalAnnual)
	assert.Equal(t, advisor.Advise(run.Result.Region, run.Result.Breakdown), run.Tips)
	assert.Equal(t, explain.Explain(300, 1, 522), run.Factors)
	assert.Nil(t, run.Policy)

	require.Len(t, rec.runs, 1)
	assert.Same(t, run, rec.runs[0])
}

func TestPredictRecorderFailureIsNotFatal(t *testing.T) {
	failing := &memoryRecorder{err: errors.New("disk full")}
	ok := &memoryRecorder{}
	svc := newTestService(WithRecorders(failing, ok))

	run, err := svc.Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)
	assert.NotNil(t, run)
	assert.Len(t, ok.runs, 1)
}

func TestPredictInvalidInput(t *testing.T) {
	rec := &memoryRecorder{}
	svc := newTestService(WithRecorders(rec))

	_, err := svc.Predict(context.Background(), api.PredictionRequest{State: "Delhi"}, "test")
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Empty(t, rec.runs)
}

func TestPredictWithPolicies(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "budget.rego"), []byte(`package energy

import rego.v1

deny contains "too expensive" if input.total_cost > 40000
`), 0o600))

	svc := newTestService(WithPolicies(policy.NewEvaluator(dir)))
	run, err := svc.Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)
	require.NotNil(t, run.Policy)
	assert.False(t, run.Policy.Passed)
	assert.Equal(t, []string{"too expensive"}, run.Policy.Denials)

	resp := run.Response()
	require.NotNil(t, resp.Policy)
	assert.False(t, resp.Policy.Passed)
}

func TestPredictBrokenPolicyOmitsOutcome(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.rego"), []byte("package energy\ndeny["), 0o600))

	svc := newTestService(WithPolicies(policy.NewEvaluator(dir)))
	run, err := svc.Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)
	assert.Nil(t, run.Policy)
}

func TestExplain(t *testing.T) {
	svc := newTestService()
	factors, err := svc.Explain(context.Background(), delhiRequest())
	require.NoError(t, err)
	require.Len(t, factors, 5)
	assert.InDelta(t, 300.0/522*30, factors[0].Impact, 1e-9)
	assert.InDelta(t, 2.5, factors[1].Impact, 1e-9)

	_, err = svc.Explain(context.Background(), api.PredictionRequest{})
	assert.True(t, apperrors.IsInvalidInput(err))
}

func TestToAppliances(t *testing.T) {
	out := ToAppliances([]api.Appliance{
		{Name: "AC", Category: "Cooling ", Watts: 1500, Hours: 5},
		{Name: "Pump", Category: "garden", Watts: 750, Hours: 1},
		{Name: "Blank", Watts: 10, Hours: 1},
	})
	require.Len(t, out, 3)
	assert.Equal(t, forecast.CategoryCooling, out[0].Category)
	assert.Equal(t, 1500.0, out[0].Watts)
	assert.Equal(t, 5.0, out[0].HoursPerDay)
	assert.Equal(t, forecast.CategoryMiscellaneous, out[1].Category)
	assert.Equal(t, forecast.CategoryMiscellaneous, out[2].Category)
}

func TestResponse(t *testing.T) {
	svc := newTestService()
	run, err := svc.Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)

	resp := run.Response()
	require.Len(t, resp.Predictions, 12)
	assert.Equal(t, api.MonthlyPrediction{Month: "Jul", Units: 522, Cost: 3394}, resp.Predictions[6])
	assert.Equal(t, int64(6264), resp.TotalAnnual)
	assert.Equal(t, int64(40730), resp.TotalCost)
	assert.Equal(t, int64(522), resp.AvgMonthly)
	assert.Len(t, resp.ApplianceBreakdown, 7)
	assert.InDelta(t, 292.5, resp.ApplianceBreakdown["cooling"], 1e-9)
	assert.Equal(t, "Delhi", resp.State)
	assert.Equal(t, run.ID.String(), resp.RunID)
	require.NotNil(t, resp.GeneratedAt)
	assert.Equal(t, fixedNow, *resp.GeneratedAt)
	assert.Nil(t, resp.Policy)
}

func TestReferenceMappings(t *testing.T) {
	details := StateDetails(newTestService().Engine().Registry().Lookup("Kerala"))
	assert.Equal(t, "Kerala", details.Name)
	assert.Equal(t, 6.2, details.Tariff)
	assert.Equal(t, "humid", details.Climate)

	templates := ApplianceTemplates()
	require.Len(t, templates, 11)
	assert.Equal(t, api.ApplianceTemplate{Name: "Air Conditioner", DefaultWatts: 1500, Category: "cooling"}, templates[0])

	resp := ExplainResponse(explain.Explain(100, 2, 0))
	require.Len(t, resp.Features, 5)
	assert.Equal(t, "Historical Usage", resp.Features[0].Feature)
}

func TestPolicyInput(t *testing.T) {
	run, err := newTestService().Predict(context.Background(), delhiRequest(), "test")
	require.NoError(t, err)

	in := PolicyInput(run.Result)
	assert.Equal(t, "Delhi", in.State)
	assert.Equal(t, "extreme", in.Climate)
	assert.Equal(t, int64(558), in.PeakUnits)
	assert.Equal(t, "Apr", in.PeakMonth)
	assert.Equal(t, 6.5, in.Tariff)
}
