// Package export renders recorded optimizer runs as JSON, CSV or an HTML
// chart.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/econdispatch/core/debugsink"
)

// WriteJSON writes the records to w in JSON format.
func WriteJSON(w io.Writer, records []debugsink.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes one row per record and component.
func WriteCSV(w io.Writer, records []debugsink.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "run_id", "component", "load"}); err != nil {
		return err
	}
	for _, r := range records {
		for _, name := range componentNames([]debugsink.Record{r}) {
			rec := []string{
				r.Timestamp.Format(time.RFC3339),
				r.RunID,
				name,
				strconv.FormatFloat(r.Allocation[name], 'f', -1, 64),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHTML renders the allocation of every component over time as a line
// chart. Components missing from a run are plotted at zero.
func WriteHTML(w io.Writer, records []debugsink.Record) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Component allocation"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Run"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Load"}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	xAxis := make([]string, len(records))
	for i, r := range records {
		xAxis[i] = r.Timestamp.Format("2006-01-02 15:04")
	}
	line.SetXAxis(xAxis)
	for _, name := range componentNames(records) {
		data := make([]opts.LineData, len(records))
		for i, r := range records {
			data[i] = opts.LineData{Value: r.Allocation[name]}
		}
		line.AddSeries(name, data)
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// Write dispatches to the writer for format: json, csv or html.
func Write(w io.Writer, format string, records []debugsink.Record) error {
	switch format {
	case "json":
		return WriteJSON(w, records)
	case "csv":
		return WriteCSV(w, records)
	case "html":
		return WriteHTML(w, records)
	}
	return fmt.Errorf("unsupported format: %s", format)
}

func componentNames(records []debugsink.Record) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range records {
		for name := range r.Allocation {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
