package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `system:
  interval_minutes: 30
  location: UTC
components:
  - name: chiller1
    type: centrifugal_chiller
  - name: chiller2
    type: centrifugal_chiller
    conf:
      chiller_type: VSD
connections:
  - from: chiller1
    to: chiller2
    io_type: chilled_water
optimizer:
  type: lp
  conf:
    units:
      - component: chiller1
        demand: cooling_load
        capacity: 10
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o644))
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", path))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTopologyText(t *testing.T) {
	out, err := execute(t, "topology", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "chiller1 (centrifugal_chiller)")
	assert.Contains(t, out, "chiller1 -> chiller2 [chilled_water]")
}

func TestTopologyDOT(t *testing.T) {
	out, err := execute(t, "topology", "--format", "dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph components {"))
}

func TestScheduleUpcoming(t *testing.T) {
	out, err := execute(t, "schedule", "--from", "2024-06-01T00:10:00Z", "-n", "3")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:30:00Z\n2024-06-01T01:00:00Z\n2024-06-01T01:30:00Z\n", out)
}

func TestScheduleCadenceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cadence.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"interval_minutes": 45, "location": "UTC"}`), 0o644))
	t.Cleanup(func() { scheduleFile = "" })
	out, err := execute(t, "schedule", "--from", "2024-06-01T00:10:00Z", "-n", "2", "--cadence", path)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T00:45:00Z\n2024-06-01T01:30:00Z\n", out)
}

func TestReportRequiresDebugStore(t *testing.T) {
	_, err := execute(t, "report")
	assert.ErrorContains(t, err, "no debug store configured")
}
