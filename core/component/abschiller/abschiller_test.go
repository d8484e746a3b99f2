package abschiller

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/component"
	"github.com/kilianp07/econdispatch/core/model"
)

func TestOptimizationParameters(t *testing.T) {
	// 1000 tons is about 12 mmBtu/h and must be excluded from the fit.
	tons := []float64{100, 200, 300, 400, 1000}
	heat := make([]float64, len(tons))
	for i, v := range tons {
		heat[i] = 0.5 + 1.4*v*tonsToMMBtu
	}
	heat[4] = 99

	c, err := New("abs", Config{History: map[string][]float64{seriesCooling: tons, seriesHeat: heat}})
	require.NoError(t, err)

	p, err := c.OptimizationParameters()
	require.NoError(t, err)
	m := p["mat_abschiller"].([]float64)
	assert.InDelta(t, 0.5, m[0], 1e-9)
	assert.InDelta(t, 1.4, m[1], 1e-9)
	assert.InDelta(t, 400*tonsToMMBtu, p["xmax_abschiller"].(float64), 1e-12)
	assert.InDelta(t, 100*tonsToMMBtu, p["xmin_abschiller"].(float64), 1e-12)
	assert.Equal(t, DefaultCapacity, p["cap_abs_chiller"])
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "abs.json")
	body := `{"Qch(tons)": [100, 200, 300], "Qin(MMBtu/h)": [1.5, 2.5, 3.5]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := component.New(TypeTag, "abs", map[string]any{"history_data_file": path, "capacity": 300.0})
	require.NoError(t, err)
	p, err := c.OptimizationParameters()
	require.NoError(t, err)
	assert.Equal(t, 300.0, p["cap_abs_chiller"])
	assert.Equal(t, []model.Capability{model.Heat}, c.InputCapabilities())
	assert.Equal(t, []model.Capability{model.ChilledWater}, c.OutputCapabilities())
}

func TestUpdateAndCommands(t *testing.T) {
	c, err := New("abs", Config{History: map[string][]float64{seriesCooling: {100, 200}, seriesHeat: {1, 2}}})
	require.NoError(t, err)

	c.UpdateParameters(time.Now(), model.Inputs{"Tchr": 60, "Tcho": 44})
	st := c.State()
	assert.Equal(t, 60.0, st.Tchr)
	assert.Equal(t, 44.0, st.Tcho)
	assert.Equal(t, DefaultTgeni, st.Tgeni)
	assert.Equal(t, DefaultQin, st.Qin)
	assert.Equal(t, DefaultTcdi, st.Tcdi)

	cmds := c.Commands(model.Allocation{"abs": 2})
	want := (2 * 1000 / 3.412) / (4.184 * 16)
	assert.InDelta(t, want, cmds["abs"]["vol_flow_rate_setpoint_abs"].(float64), 1e-9)

	assert.Empty(t, c.Commands(model.Allocation{}))
}
