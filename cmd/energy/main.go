// energy - household electricity forecast CLI
//
// Usage:
//
//	energy predict --state Delhi --history 300,320 --appliance "Air Conditioner:5"
//	energy predict --input request.yaml --format json
//	energy explain --input request.json
//	energy states
//	energy policy validate --dir policies
//	energy runs summary --since 168h
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/bootstrap"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/config"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/forecast"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/metrics"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/policy"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/region"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/remote"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/service"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if _, err := platform.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "energy",
		Usage:   "Household electricity consumption and cost forecasts for Indian states",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			platform.InitLogger(c.String("log-level"), true)
			return nil
		},
		Commands: []*cli.Command{
			predictCommand(),
			explainCommand(),
			statesCommand(),
			stateCommand(),
			appliancesCommand(),
			policyCommand(),
			runsCommand(),
		},
	}
}

// =============================================================================
// PREDICT / EXPLAIN
// =============================================================================

func requestFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "input",
			Aliases: []string{"i"},
			Usage:   "Request file (.json, .yaml); overrides the flags below",
		},
		&cli.StringFlag{
			Name:    "state",
			Aliases: []string{"s"},
			Value:   region.DefaultRegion,
			Usage:   "State or union territory",
		},
		&cli.StringFlag{
			Name:  "history",
			Usage: "Comma-separated monthly kWh, oldest first",
		},
		&cli.StringSliceFlag{
			Name:    "appliance",
			Aliases: []string{"a"},
			Usage:   "NAME:HOURS, NAME:WATTS:HOURS or NAME:CATEGORY:WATTS:HOURS (repeatable)",
		},
		&cli.Uint64Flag{
			Name:    "seed",
			Usage:   "Fix the monthly variance sequence",
			EnvVars: []string{"FORECAST_SEED"},
		},
		&cli.BoolFlag{
			Name:  "no-variance",
			Usage: "Disable the monthly variance term",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "table",
			Usage:   "Output format (table, json)",
		},
		&cli.StringFlag{
			Name:    "remote",
			Usage:   "Base URL of a running server to forecast against",
			EnvVars: []string{"ENERGY_REMOTE_URL"},
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for --remote",
			EnvVars: []string{"API_KEY"},
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 30 * time.Second,
			Usage: "Request timeout for --remote",
		},
	}
}

func predictCommand() *cli.Command {
	flags := append(requestFlags(),
		&cli.StringFlag{
			Name:    "policies",
			Value:   "policies",
			Usage:   "Directory of budget policies (.rego)",
			EnvVars: []string{"POLICIES_DIR"},
		},
		&cli.BoolFlag{
			Name:  "fail-on-deny",
			Usage: "Exit non-zero when a budget policy denies the forecast",
		},
	)
	return &cli.Command{
		Name:   "predict",
		Usage:  "Forecast the next twelve months of consumption and cost",
		Flags:  flags,
		Action: runPredict,
	}
}

func explainCommand() *cli.Command {
	return &cli.Command{
		Name:   "explain",
		Usage:  "Show the relative influence of each input on a forecast",
		Flags:  requestFlags(),
		Action: runExplain,
	}
}

func buildRequest(c *cli.Context) (api.PredictionRequest, error) {
	if path := c.String("input"); path != "" {
		return loadRequestFile(path)
	}

	history, err := parseHistory(c.String("history"))
	if err != nil {
		return api.PredictionRequest{}, err
	}
	req := api.PredictionRequest{State: c.String("state"), BillHistory: history}
	for _, s := range c.StringSlice("appliance") {
		a, err := parseAppliance(s)
		if err != nil {
			return api.PredictionRequest{}, err
		}
		req.Appliances = append(req.Appliances, a)
	}
	return req, nil
}

func localService(c *cli.Context, policiesDir string) *service.Service {
	variance := bootstrap.VarianceFor(config.ForecastConfig{
		Seed:       c.Uint64("seed"),
		NoVariance: c.Bool("no-variance"),
	})
	opts := []service.Option{service.WithLogger(zerolog.Nop())}
	if policiesDir != "" {
		opts = append(opts, service.WithPolicies(policy.NewEvaluator(policiesDir)))
	}
	return service.New(forecast.NewEngine(forecast.WithVariance(variance)), opts...)
}

func remoteClient(c *cli.Context) *remote.Client {
	return remote.NewClient(c.String("remote"), c.String("api-key"), 2, c.Duration("timeout"))
}

func runPredict(c *cli.Context) error {
	req, err := buildRequest(c)
	if err != nil {
		return err
	}

	var resp *api.PredictionResponse
	if c.String("remote") != "" {
		resp, err = remoteClient(c).Predict(c.Context, req)
		if err != nil {
			return err
		}
	} else {
		run, err := localService(c, c.String("policies")).Predict(c.Context, req, metrics.SourceCLI)
		if err != nil {
			return err
		}
		r := run.Response()
		resp = &r
	}

	out := c.App.Writer
	switch c.String("format") {
	case "json":
		err = writeJSON(out, resp)
	case "table":
		err = writePredictionTable(out, resp)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
	if err != nil {
		return err
	}

	if c.Bool("fail-on-deny") && resp.Policy != nil && !resp.Policy.Passed {
		return cli.Exit("budget policy denied the forecast", 2)
	}
	return nil
}

func runExplain(c *cli.Context) error {
	req, err := buildRequest(c)
	if err != nil {
		return err
	}

	var resp api.ExplainResponse
	if c.String("remote") != "" {
		r, err := remoteClient(c).Explain(c.Context, req)
		if err != nil {
			return err
		}
		resp = *r
	} else {
		factors, err := localService(c, "").Explain(c.Context, req)
		if err != nil {
			return err
		}
		resp = service.ExplainResponse(factors)
	}

	if c.String("format") == "json" {
		return writeJSON(c.App.Writer, resp)
	}
	return writeExplainTable(c.App.Writer, resp)
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func statesCommand() *cli.Command {
	return &cli.Command{
		Name:  "states",
		Usage: "List supported states and union territories",
		Action: func(c *cli.Context) error {
			for _, name := range region.Shared().Names() {
				fmt.Fprintln(c.App.Writer, name)
			}
			return nil
		},
	}
}

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "Show climate and tariff for one state",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table"},
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			p, ok := region.Shared().Get(name)
			if !ok {
				return fmt.Errorf("state not found: %q", name)
			}
			details := service.StateDetails(p)
			if c.String("format") == "json" {
				return writeJSON(c.App.Writer, details)
			}
			fmt.Fprintf(c.App.Writer, "%-10s %s\n", "Name", details.Name)
			fmt.Fprintf(c.App.Writer, "%-10s %s\n", "Climate", details.Climate)
			fmt.Fprintf(c.App.Writer, "%-10s %.0f°C\n", "Temp", details.Temp)
			fmt.Fprintf(c.App.Writer, "%-10s %.0f%%\n", "Humidity", details.Humidity)
			fmt.Fprintf(c.App.Writer, "%-10s ₹%s/kWh\n", "Tariff", p.Tariff.String())
			return nil
		},
	}
}

func appliancesCommand() *cli.Command {
	return &cli.Command{
		Name:  "appliances",
		Usage: "List appliance presets",
		Action: func(c *cli.Context) error {
			for _, t := range service.ApplianceTemplates() {
				fmt.Fprintf(c.App.Writer, "%-18s %6d W  %s\n", t.Name, t.DefaultWatts, t.Category)
			}
			return nil
		},
	}
}

// =============================================================================
// POLICY COMMAND
// =============================================================================

func policyCommand() *cli.Command {
	return &cli.Command{
		Name:  "policy",
		Usage: "Budget policy tools",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Compile every policy in a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Value:   "policies",
						EnvVars: []string{"POLICIES_DIR"},
					},
				},
				Action: func(c *cli.Context) error {
					ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
					defer cancel()
					n, err := policy.NewEvaluator(c.String("dir")).ValidatePolicies(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "✅ %d policies valid\n", n)
					return nil
				},
			},
		},
	}
}

// =============================================================================
// ARCHIVED RUNS
// =============================================================================

func runsCommand() *cli.Command {
	format := func() cli.Flag {
		return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "table"}
	}
	return &cli.Command{
		Name:  "runs",
		Usage: "Query archived forecasts (PostgreSQL, ClickHouse)",
		Subcommands: []*cli.Command{
			{
				Name:      "show",
				Usage:     "Show one archived run from PostgreSQL",
				ArgsUsage: "<run-id>",
				Flags:     []cli.Flag{format()},
				Action:    runShow,
			},
			{
				Name:  "summary",
				Usage: "Per-state averages of archived runs from ClickHouse",
				Flags: []cli.Flag{
					format(),
					&cli.DurationFlag{
						Name:  "since",
						Value: 30 * 24 * time.Hour,
						Usage: "Only include runs created within this window",
					},
				},
				Action: runSummary,
			},
		},
	}
}

// openArchives connects the archives named by the environment.
func openArchives(c *cli.Context) (*bootstrap.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Forecast.PoliciesDir = ""
	return bootstrap.Build(c.Context, cfg, zerolog.Nop())
}

func runShow(c *cli.Context) error {
	id, err := uuid.Parse(c.Args().First())
	if err != nil {
		return fmt.Errorf("invalid run id %q", c.Args().First())
	}
	app, err := openArchives(c)
	if err != nil {
		return err
	}
	defer app.Close()
	if app.Runs == nil {
		return fmt.Errorf("PostgreSQL archive not configured (set POSTGRES_DSN)")
	}

	run, err := app.Runs.GetRun(c.Context, id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run not found: %s", id)
	}
	if c.String("format") == "json" {
		return writeJSON(c.App.Writer, run)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%-14s %s\n", "Run", run.ID)
	fmt.Fprintf(w, "%-14s %s\n", "Created", run.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "%-14s %s\n", "Source", run.Source)
	fmt.Fprintf(w, "%-14s %s\n", "State", run.State)
	fmt.Fprintf(w, "%-14s %d kWh\n", "Total annual", run.TotalAnnual)
	fmt.Fprintf(w, "%-14s ₹%d\n", "Total cost", run.TotalCost)
	fmt.Fprintf(w, "%-14s %d kWh\n", "Avg monthly", run.AvgMonthly)
	for _, d := range run.Denials {
		fmt.Fprintf(w, "❌ %s\n", d)
	}
	return nil
}

func runSummary(c *cli.Context) error {
	app, err := openArchives(c)
	if err != nil {
		return err
	}
	defer app.Close()
	if app.Summaries == nil {
		return fmt.Errorf("ClickHouse archive not configured (set CLICKHOUSE_HOST)")
	}

	summaries, err := app.Summaries.SummarizeStates(c.Context, time.Now().Add(-c.Duration("since")))
	if err != nil {
		return err
	}
	if c.String("format") == "json" {
		return writeJSON(c.App.Writer, summaries)
	}
	fmt.Fprintf(c.App.Writer, "%-28s %6s %12s %12s\n", "State", "Runs", "Avg kWh", "Avg cost")
	for _, sum := range summaries {
		fmt.Fprintf(c.App.Writer, "%-28s %6d %12.0f %12.0f\n", sum.State, sum.Runs, sum.AvgAnnual, sum.AvgAnnualCost)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
