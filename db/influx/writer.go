// Package influx writes forecast months as InfluxDB points so dashboards
// can chart predicted consumption per state.
package influx

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
)

const (
	measurementMonthly = "forecast_monthly"
	measurementRun     = "forecast_run"
)

type Config struct {
	URL    string
	Org    string
	Token  string
	Bucket string
}

// Writer implements service.Recorder.
type Writer struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

var _ service.Recorder = (*Writer)(nil)

// NewWriter connects and verifies the server is healthy.
func NewWriter(ctx context.Context, cfg Config) (*Writer, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	if _, err := client.Health(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	return &Writer{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

func (w *Writer) Name() string { return "influxdb" }

func (w *Writer) Record(ctx context.Context, run *service.Run) error {
	if err := w.writeAPI.WritePoint(ctx, Points(run)...); err != nil {
		return fmt.Errorf("failed to write points: %w", err)
	}
	return nil
}

func (w *Writer) Close() {
	w.client.Close()
}

// Points builds one point per forecast month, stamped at the first of that
// month in the run's year, plus one summary point at the run time.
func Points(run *service.Run) []*write.Point {
	res := run.Result
	tags := map[string]string{
		"state":   res.Region.Name,
		"climate": string(res.Region.Climate),
		"source":  run.Source,
	}

	points := make([]*write.Point, 0, len(res.Months)+1)
	year := run.GeneratedAt.Year()
	for _, m := range res.Months {
		points = append(points, write.NewPoint(
			measurementMonthly,
			tags,
			map[string]interface{}{
				"units":    m.Units,
				"cost":     m.Cost,
				"seasonal": m.Seasonal,
				"blended":  m.Blended,
				"run_id":   run.ID.String(),
			},
			time.Date(year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC),
		))
	}

	points = append(points, write.NewPoint(
		measurementRun,
		tags,
		map[string]interface{}{
			"total_annual":  res.TotalAnnual,
			"total_cost":    res.TotalCost,
			"avg_monthly":   res.AvgMonthly,
			"regression":    res.Regression,
			"appliance_kwh": res.Breakdown.Total(),
		},
		run.GeneratedAt,
	))
	return points
}
