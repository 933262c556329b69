package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/internal/catalog"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
)

// loadRequestFile reads a request from JSON or YAML, chosen by extension.
func loadRequestFile(path string) (api.PredictionRequest, error) {
	var req api.PredictionRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return req, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return req, nil
}

// parseHistory parses "300,320,310".
func parseHistory(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid history value %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// parseAppliance accepts NAME:HOURS, NAME:WATTS:HOURS or
// NAME:CATEGORY:WATTS:HOURS. Preset names fill in missing watts and
// category.
func parseAppliance(s string) (api.Appliance, error) {
	parts := strings.Split(s, ":")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || len(parts) > 4 || parts[0] == "" {
		return api.Appliance{}, fmt.Errorf("invalid appliance %q, want NAME[:CATEGORY][:WATTS]:HOURS", s)
	}

	a := api.Appliance{Name: parts[0]}
	if t, ok := catalog.Find(a.Name); ok {
		a.Category = string(t.Category)
		a.Watts = t.DefaultWatts
	}

	hours, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil {
		return api.Appliance{}, fmt.Errorf("invalid hours in %q", s)
	}
	a.Hours = hours

	if len(parts) >= 3 {
		watts, err := strconv.Atoi(parts[len(parts)-2])
		if err != nil {
			return api.Appliance{}, fmt.Errorf("invalid watts in %q", s)
		}
		a.Watts = watts
	}
	if len(parts) == 4 {
		a.Category = parts[1]
	}
	if a.Watts == 0 && len(parts) == 2 {
		return api.Appliance{}, fmt.Errorf("unknown appliance %q needs explicit watts", a.Name)
	}
	return a, nil
}
