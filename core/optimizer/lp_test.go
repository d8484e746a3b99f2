package optimizer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/factory"
	"github.com/kilianp07/econdispatch/core/model"
)

func TestLPMeritOrder(t *testing.T) {
	o, err := NewLP(LPConfig{Units: []UnitConfig{
		{Component: "boiler1", Demand: "heat_load", CapacityParam: "cap_boiler", Cost: 3},
		{Component: "boiler2", Demand: "heat_load", Capacity: 10, Cost: 1},
		{Component: "abs", Demand: "cool_load", Capacity: 5, Cost: 2},
	}})
	require.NoError(t, err)

	alloc, err := o.Optimize(context.Background(), time.Now(),
		[]model.ForecastRecord{{"heat_load": 14, "cool_load": 2}},
		model.Parameters{"cap_boiler": 8.0})
	require.NoError(t, err)

	assert.InDelta(t, 10, alloc["boiler2"], 1e-6)
	assert.InDelta(t, 4, alloc["boiler1"], 1e-6)
	assert.InDelta(t, 2, alloc["abs"], 1e-6)
}

func TestLPInfeasible(t *testing.T) {
	o, err := NewLP(LPConfig{Units: []UnitConfig{{Component: "b", Demand: "heat_load", Capacity: 5, Cost: 1}}})
	require.NoError(t, err)
	_, err = o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"heat_load": 9}}, nil)
	assert.True(t, errors.Is(err, ErrInfeasible))
}

func TestLPMissingInputs(t *testing.T) {
	o, err := NewLP(LPConfig{Units: []UnitConfig{{Component: "b", Demand: "heat_load", CapacityParam: "cap_b"}}})
	require.NoError(t, err)

	_, err = o.Optimize(context.Background(), time.Now(), nil, nil)
	assert.Error(t, err)

	_, err = o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"other": 1}}, model.Parameters{"cap_b": 3.0})
	assert.Error(t, err)

	_, err = o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"heat_load": 1}}, model.Parameters{})
	assert.Error(t, err)

	_, err = o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"heat_load": 1}}, model.Parameters{"cap_b": "x"})
	assert.Error(t, err)
}

func TestLPSolverFailure(t *testing.T) {
	old := lpSolve
	lpSolve = func(_, _ []float64, _ [][]int, _ []float64) ([]float64, error) { return nil, errors.New("fail") }
	defer func() { lpSolve = old }()

	o, err := NewLP(LPConfig{Units: []UnitConfig{{Component: "b", Demand: "d", Capacity: 5}}})
	require.NoError(t, err)
	_, err = o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"d": 1}}, nil)
	assert.Error(t, err)
}

func TestLPCanceled(t *testing.T) {
	o, err := NewLP(LPConfig{Units: []UnitConfig{{Component: "b", Demand: "d", Capacity: 5}}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = o.Optimize(ctx, time.Now(), []model.ForecastRecord{{"d": 1}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewLPValidation(t *testing.T) {
	_, err := NewLP(LPConfig{})
	assert.Error(t, err)
	_, err = NewLP(LPConfig{Units: []UnitConfig{{Component: "a"}}})
	assert.Error(t, err)
	_, err = NewLP(LPConfig{Units: []UnitConfig{{Component: "a", Demand: "d"}, {Component: "a", Demand: "d"}}})
	assert.Error(t, err)
}

func TestRegistryAndFunc(t *testing.T) {
	o, err := New(factory.ModuleConfig{Type: "lp", Conf: map[string]any{
		"units": []map[string]any{{"component": "b", "demand": "d", "capacity": 4.0}},
	}})
	require.NoError(t, err)
	alloc, err := o.Optimize(context.Background(), time.Now(), []model.ForecastRecord{{"d": 3}}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 3, alloc["b"], 1e-6)

	var f Optimizer = Func(func(context.Context, time.Time, []model.ForecastRecord, model.Parameters) (model.Allocation, error) {
		return model.Allocation{"x": 1}, nil
	})
	alloc, err = f.Optimize(context.Background(), time.Now(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, alloc["x"])
}
