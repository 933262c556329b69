// Package policy evaluates budget policies written in Rego against a
// forecast summary.
package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/rego"
)

const (
	denyQuery = "data.energy.deny"
	warnQuery = "data.energy.warn"
)

// Input is the document exposed to policies as `input`.
type Input struct {
	State       string  `json:"state"`
	Climate     string  `json:"climate"`
	TotalAnnual int64   `json:"total_annual"`
	TotalCost   int64   `json:"total_cost"`
	AvgMonthly  int64   `json:"avg_monthly"`
	PeakUnits   int64   `json:"peak_units"`
	PeakMonth   string  `json:"peak_month"`
	Tariff      float64 `json:"tariff"`
}

func (in Input) toMap() map[string]any {
	return map[string]any{
		"state":        in.State,
		"climate":      in.Climate,
		"total_annual": in.TotalAnnual,
		"total_cost":   in.TotalCost,
		"avg_monthly":  in.AvgMonthly,
		"peak_units":   in.PeakUnits,
		"peak_month":   in.PeakMonth,
		"tariff":       in.Tariff,
	}
}

// Result holds policy evaluation outcomes.
type Result struct {
	Denials  []string `json:"denials"`
	Warnings []string `json:"warnings"`
	Passed   bool     `json:"passed"`
}

// Evaluator runs every *.rego file in a directory. A missing or empty
// directory passes with no messages.
type Evaluator struct {
	policiesDir string
}

func NewEvaluator(policiesDir string) *Evaluator {
	return &Evaluator{policiesDir: policiesDir}
}

func (e *Evaluator) files() ([]string, error) {
	if e.policiesDir == "" {
		return nil, nil
	}
	files, err := filepath.Glob(filepath.Join(e.policiesDir, "*.rego"))
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func (e *Evaluator) Evaluate(ctx context.Context, in Input) (*Result, error) {
	result := &Result{Denials: []string{}, Warnings: []string{}, Passed: true}

	files, err := e.files()
	if err != nil {
		return nil, err
	}

	input := in.toMap()
	for _, file := range files {
		policy, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		denials, err := evalQuery(ctx, file, string(policy), denyQuery, input)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", file, err)
		}
		result.Denials = append(result.Denials, denials...)

		warnings, err := evalQuery(ctx, file, string(policy), warnQuery, input)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", file, err)
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.Passed = len(result.Denials) == 0
	return result, nil
}

func evalQuery(ctx context.Context, name, policy, query string, input map[string]any) ([]string, error) {
	r := rego.New(
		rego.Query(query),
		rego.Module(name, policy),
		rego.Input(input),
	)

	rs, err := r.Eval(ctx)
	if err != nil {
		return nil, err
	}

	var messages []string
	for _, result := range rs {
		for _, expr := range result.Expressions {
			if set, ok := expr.Value.([]interface{}); ok {
				for _, v := range set {
					if msg, ok := v.(string); ok {
						messages = append(messages, msg)
					}
				}
			}
		}
	}
	sort.Strings(messages)
	return messages, nil
}

// ValidatePolicies compiles every policy without evaluating it.
func (e *Evaluator) ValidatePolicies(ctx context.Context) (int, error) {
	files, err := e.files()
	if err != nil {
		return 0, err
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return 0, fmt.Errorf("failed to read %s: %w", file, err)
		}
		_, err = rego.New(rego.Query(denyQuery), rego.Module(file, string(content))).PrepareForEval(ctx)
		if err != nil {
			return 0, fmt.Errorf("invalid policy %s: %w", file, err)
		}
	}
	return len(files), nil
}
