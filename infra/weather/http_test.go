package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/forecast"
)

func newServer(t *testing.T, tokenCalls *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"token123","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("start") != "2024-06-01T00:00:00Z" || r.URL.Query().Get("end") != "2024-06-01T02:00:00Z" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("site") != "campus" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"forecast":[
			{"timestamp":"2024-06-01T01:00:00Z","temperature":22.0},
			{"timestamp":"2024-06-01T00:00:00Z","temperature":21.5,"humidity":0.4}
		]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPModelForecast(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	m, err := NewHTTP(HTTPConfig{
		URL:     srv.URL + "/forecast",
		Horizon: 2 * time.Hour,
		Query:   map[string]string{"site": "campus"},
		Auth:    AuthConf{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL + "/token"},
	})
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	recs, err := m.Forecast(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, now, recs[0].Timestamp)
	assert.Equal(t, 21.5, recs[0].Values["temperature"])
	assert.Equal(t, 0.4, recs[0].Values["humidity"])
	assert.NotContains(t, recs[0].Values, "timestamp")

	_, err = m.Forecast(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "token should be cached")
}

func TestHTTPModelErrorStatus(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, &calls)
	m, err := NewHTTP(HTTPConfig{URL: srv.URL + "/forecast"})
	require.NoError(t, err)
	_, err = m.Forecast(context.Background(), time.Now())
	assert.ErrorContains(t, err, "unexpected status code: 401")
}

func TestHTTPModelRejectsNonNumeric(t *testing.T) {
	_, err := toRecords([]map[string]any{{"timestamp": "2024-06-01T00:00:00Z", "sky": "clear"}})
	assert.Error(t, err)
	_, err = toRecords([]map[string]any{{"temperature": 1.0}})
	assert.Error(t, err)
}

func TestNewHTTPValidation(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	assert.Error(t, err)
	_, err = NewHTTP(HTTPConfig{URL: "http://x", Auth: AuthConf{ClientID: "id"}})
	assert.Error(t, err)
}

func TestRegisteredInForecastRegistry(t *testing.T) {
	assert.Contains(t, forecast.WeatherTypes(), TypeTag)
	m, err := forecast.NewWeather(factory.ModuleConfig{Type: TypeTag, Conf: map[string]any{"url": "http://localhost/forecast", "horizon": "6h"}})
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, m.(*HTTPModel).cfg.Horizon)
}
