package components

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/component/chiller"
	"github.com/kilianp07/econdispatch/core/forecast"
	"github.com/kilianp07/econdispatch/core/model"
	"github.com/kilianp07/econdispatch/core/optimizer"
	"github.com/kilianp07/econdispatch/core/system"
)

func newSystem(t *testing.T) *system.System {
	t.Helper()
	opt := optimizer.Func(func(context.Context, time.Time, []model.ForecastRecord, model.Parameters) (model.Allocation, error) {
		return model.Allocation{}, nil
	})
	sys, err := system.New(system.Config{Interval: time.Hour}, opt, forecast.NewStatic(forecast.StaticConfig{}), nil)
	require.NoError(t, err)
	for _, name := range []string{"chiller1", "chiller2"} {
		c, err := chiller.New(name, chiller.Config{})
		require.NoError(t, err)
		sys.AddComponent(c, chiller.TypeTag)
	}
	_, err = sys.Connect("chiller1", "chiller2", model.ChilledWater)
	require.NoError(t, err)
	return sys
}

func TestStatusHandlerJSON(t *testing.T) {
	sys := newSystem(t)
	_, err := sys.Tick(context.Background(), time.Date(2024, 6, 1, 0, 30, 0, 0, time.UTC), nil)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	NewStatusHandler(sys).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var st Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	require.Len(t, st.Components, 2)
	assert.Equal(t, "chiller1", st.Components[0].Name)
	assert.Equal(t, chiller.TypeTag, st.Components[0].Type)
	require.Len(t, st.Connections, 1)
	assert.Equal(t, model.ChilledWater, st.Connections[0].Label)
	require.NotNil(t, st.NextOptimization)
	assert.True(t, st.NextOptimization.Equal(time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)))
}

func TestStatusHandlerDOT(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(newSystem(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, Path+"?format=dot", nil))
	assert.Equal(t, "text/vnd.graphviz", rr.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "digraph components {"))
	assert.Contains(t, rr.Body.String(), `"chiller1" -> "chiller2" [label="chilled_water"];`)
}

func TestStatusHandlerMethod(t *testing.T) {
	rr := httptest.NewRecorder()
	NewStatusHandler(newSystem(t)).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, Path, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
