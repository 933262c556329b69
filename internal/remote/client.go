// Package remote calls a running forecast server over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/api"
	"github.com/kartikbhatt2808/Energy-Consumption-Prediction/pkg/platform"
)

type Client struct {
	baseURL string
	http    *platform.HTTPClient
}

// NewClient targets baseURL, e.g. http://localhost:8080.
func NewClient(baseURL, apiKey string, retries int, timeout time.Duration) *Client {
	hc := platform.NewHTTPClient(retries, timeout)
	if apiKey != "" {
		hc.Client.Transport = apiKeyTransport{key: apiKey, next: http.DefaultTransport}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// WithBackoff overrides the base retry delay.
func (c *Client) WithBackoff(d time.Duration) *Client {
	c.http.Backoff = d
	return c
}

func (c *Client) Predict(ctx context.Context, req api.PredictionRequest) (*api.PredictionResponse, error) {
	var out api.PredictionResponse
	if err := c.post(ctx, "/api/v1/predict", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Explain(ctx context.Context, req api.PredictionRequest) (*api.ExplainResponse, error) {
	var out api.ExplainResponse
	if err := c.post(ctx, "/api/v1/shap", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StatusError is a non-2xx reply from the server.
type StatusError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.http.PostJSON(ctx, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode/100 != 2 {
		var e api.ErrorResponse
		if json.Unmarshal(data, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: e.Error, Code: e.Code}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type apiKeyTransport struct {
	key  string
	next http.RoundTripper
}

func (t apiKeyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-API-Key", t.key)
	return t.next.RoundTrip(r)
}
