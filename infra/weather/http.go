// Package weather provides weather models backed by remote forecast
// services.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/forecast"
	"github.com/kilianp07/econdispatch/core/model"
)

// TypeTag registers the HTTP weather model in the forecast registry.
const TypeTag = "http"

// HTTPConfig configures the HTTP weather model.
type HTTPConfig struct {
	// URL of the forecast endpoint. The start and end of the requested
	// horizon are added as RFC3339 query parameters.
	URL string `json:"url"`
	// Horizon is the length of the requested forecast window.
	Horizon time.Duration `json:"horizon"`
	// Timeout bounds a single request.
	Timeout time.Duration `json:"timeout"`
	// Query holds static query parameters such as a site identifier.
	Query map[string]string `json:"query"`
	Auth  AuthConf          `json:"auth"`
}

// HTTPModel fetches weather timesteps from a JSON endpoint answering
//
//	{"forecast": [{"timestamp": "2024-06-01T00:00:00Z", "temperature": 21.5, ...}, ...]}
//
// Every field besides the timestamp must be numeric.
type HTTPModel struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP validates cfg and returns the model.
func NewHTTP(cfg HTTPConfig) (*HTTPModel, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("weather url is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("weather url: %w", err)
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Auth.enabled() && cfg.Auth.TokenURL == "" {
		return nil, fmt.Errorf("weather auth requires token_url")
	}
	base := &http.Client{Timeout: cfg.Timeout}
	return &HTTPModel{cfg: cfg, client: cfg.Auth.httpClient(base)}, nil
}

type response struct {
	Forecast []map[string]any `json:"forecast"`
}

// Forecast requests the window [now, now+Horizon) and returns the timesteps
// sorted by timestamp.
func (m *HTTPModel) Forecast(ctx context.Context, now time.Time) ([]model.WeatherRecord, error) {
	u, err := url.Parse(m.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("weather url: %w", err)
	}
	q := u.Query()
	for k, v := range m.cfg.Query {
		q.Set(k, v)
	}
	q.Set("start", now.Format(time.RFC3339))
	q.Set("end", now.Add(m.cfg.Horizon).Format(time.RFC3339))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, body)
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return toRecords(r.Forecast)
}

func toRecords(rows []map[string]any) ([]model.WeatherRecord, error) {
	out := make([]model.WeatherRecord, 0, len(rows))
	for i, row := range rows {
		raw, ok := row["timestamp"].(string)
		if !ok {
			return nil, fmt.Errorf("record %d: missing timestamp", i)
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		values := make(map[string]float64, len(row)-1)
		for k, v := range row {
			if k == "timestamp" {
				continue
			}
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("record %d: field %s is not numeric", i, k)
			}
			values[k] = f
		}
		out = append(out, model.WeatherRecord{Timestamp: ts, Values: values})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func init() {
	_ = forecast.RegisterWeather(TypeTag, func(_ string, conf map[string]any) (forecast.WeatherModel, error) {
		var c HTTPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewHTTP(c)
	})
}
