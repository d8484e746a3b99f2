package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/econdispatch/core/debugsink"
	"github.com/kilianp07/econdispatch/core/model"
)

func sampleRecords() []debugsink.Record {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return []debugsink.Record{
		{Timestamp: base, RunID: "r1", Allocation: model.Allocation{"boiler2": 10, "boiler1": 4}},
		{Timestamp: base.Add(time.Hour), RunID: "r2", Allocation: model.Allocation{"abs1": 2}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"timestamp", "run_id", "component", "load"}, rows[0])
	assert.Equal(t, []string{"2024-06-01T00:00:00Z", "r1", "boiler1", "4"}, rows[1])
	assert.Equal(t, []string{"2024-06-01T00:00:00Z", "r1", "boiler2", "10"}, rows[2])
	assert.Equal(t, []string{"2024-06-01T01:00:00Z", "r2", "abs1", "2"}, rows[3])
}

func TestWriteHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleRecords()))
	out := buf.String()
	assert.Contains(t, out, "<html")
	assert.Contains(t, out, "Component allocation")
	assert.Contains(t, out, "boiler2")
}

func TestWriteDispatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "json", sampleRecords()))
	assert.True(t, strings.Contains(buf.String(), `"run_id": "r1"`))
	assert.Error(t, Write(&buf, "xml", nil))
}
