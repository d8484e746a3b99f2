package forecast

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/model"
)

func TestStatic(t *testing.T) {
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	s := NewStatic(StaticConfig{Steps: 3, Step: 30 * time.Minute, Values: map[string]float64{"temp": 21}})
	recs, err := s.Forecast(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[2].Timestamp.Equal(now.Add(time.Hour)))
	recs[0].Values["temp"] = 0
	assert.Equal(t, 21.0, recs[1].Values["temp"])
}

func TestFileWindow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather.yaml")
	body := `- timestamp: "2024-06-01T12:00:00Z"
  values: {temp: 25}
- timestamp: "2024-06-01T10:00:00Z"
  values: {temp: 20}
- timestamp: "2024-06-01T11:00:00Z"
  values: {temp: 22}
- timestamp: "2024-06-01T09:00:00Z"
  values: {temp: 18}
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := NewFile(FileConfig{Path: path, Horizon: 2 * time.Hour})
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	recs, err := f.Forecast(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 20.0, recs[0].Values["temp"])
	assert.Equal(t, 22.0, recs[1].Values["temp"])

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Forecast(ctx, now)
	assert.Error(t, err)
}

func TestFileJSONViaRegistry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather.json")
	body := `[{"timestamp":"2024-06-01T10:00:00Z","values":{"temp":20}}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	w, err := NewWeather(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": path}})
	require.NoError(t, err)
	recs, err := w.Forecast(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, recs, 1)

	_, err = NewFile(FileConfig{Path: filepath.Join(dir, "weather.csv")})
	assert.Error(t, err)
}

func TestLinear(t *testing.T) {
	zero := 0.0
	l, err := NewLinear(LinearConfig{
		Output:       "heat_load",
		Intercept:    10,
		Coefficients: map[string]float64{"temp": -0.5},
		Min:          &zero,
	})
	require.NoError(t, err)

	rec, err := l.Derive(time.Now(), map[string]float64{"temp": 8})
	require.NoError(t, err)
	assert.Equal(t, model.ForecastRecord{"heat_load": 6}, rec)

	rec, err = l.Derive(time.Now(), map[string]float64{"temp": 40})
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec["heat_load"])

	_, err = l.Derive(time.Now(), map[string]float64{})
	assert.Error(t, err)

	_, err = NewLinear(LinearConfig{})
	assert.Error(t, err)
}

func TestCalendar(t *testing.T) {
	c := NewCalendar(CalendarConfig{})
	rec, err := c.Derive(time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec["is_daytime"])
	assert.Equal(t, 8.0, rec["hour"])
	assert.Equal(t, 1.0, rec["weekday"])

	rec, err = c.Derive(time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC), nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rec["is_daytime"])
}

func TestPassthrough(t *testing.T) {
	p := NewPassthrough(PassthroughConfig{Variables: []string{"temp"}, Rename: map[string]string{"temp": "oat"}})
	rec, err := p.Derive(time.Now(), map[string]float64{"temp": 12, "rh": 50})
	require.NoError(t, err)
	assert.Equal(t, model.ForecastRecord{"oat": 12}, rec)

	_, err = p.Derive(time.Now(), map[string]float64{})
	assert.Error(t, err)

	all := NewPassthrough(PassthroughConfig{})
	rec, err = all.Derive(time.Now(), map[string]float64{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Len(t, rec, 2)
}

func TestRegistries(t *testing.T) {
	assert.Subset(t, WeatherTypes(), []string{"static", "file"})
	assert.Subset(t, DeriverTypes(), []string{"linear", "calendar", "passthrough"})

	d, err := NewDeriver(factory.ModuleConfig{Type: "linear", Conf: map[string]any{
		"output":       "load",
		"coefficients": map[string]any{"temp": 2.0},
	}})
	require.NoError(t, err)
	rec, err := d.Derive(time.Now(), map[string]float64{"temp": 3})
	require.NoError(t, err)
	assert.Equal(t, 6.0, rec["load"])

	w, err := NewWeather(factory.ModuleConfig{Type: "static", Conf: map[string]any{"steps": 2, "step": "15m"}})
	require.NoError(t, err)
	recs, err := w.Forecast(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}
