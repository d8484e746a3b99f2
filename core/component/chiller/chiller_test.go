package chiller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/model"
)

func TestParameterKeysByType(t *testing.T) {
	igv, err := New("ch1", Config{Xmax: 10, Xmin: 1})
	require.NoError(t, err)
	p, err := igv.OptimizationParameters()
	require.NoError(t, err)
	assert.Equal(t, 10.0, p["xmax_chillerIGV"])
	assert.Equal(t, 1.0, p["xmin_chillerIGV"])
	assert.Contains(t, p, "mat_chillerIGV")

	c, err := component.New(TypeTag, "ch2", map[string]any{"chiller_type": "VSD", "xmax_chiller": 4.0})
	require.NoError(t, err)
	p, err = c.OptimizationParameters()
	require.NoError(t, err)
	assert.Equal(t, 4.0, p["xmax_chillerVSD"])
	assert.NotContains(t, p, "xmax_chillerIGV")
}

func TestUnknownType(t *testing.T) {
	_, err := New("ch", Config{ChillerType: "screw"})
	assert.Error(t, err)
}

func TestNoCommands(t *testing.T) {
	c, err := New("ch", Config{})
	require.NoError(t, err)
	assert.Empty(t, c.Commands(model.Allocation{"ch": 3}))
	assert.Equal(t, []model.Capability{model.Electricity}, c.InputCapabilities())
}
