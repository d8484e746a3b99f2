package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/econdispatch/core/debugsink"
	"github.com/kilianp07/econdispatch/pkg/export"
)

var (
	reportFormat    string
	reportOutput    string
	reportStart     string
	reportEnd       string
	reportComponent string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render recorded optimizer runs as html, csv or json",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFormat, "format", "f", "html", "output format: html, csv or json")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "output file, defaults to stdout")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "only runs at or after this RFC3339 time")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "only runs at or before this RFC3339 time")
	reportCmd.Flags().StringVar(&reportComponent, "component", "", "only runs allocating this component")
	rootCmd.AddCommand(reportCmd)
}

func parseTimeFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return t, fmt.Errorf("%s: %w", name, err)
	}
	return t, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Debug.Enabled() {
		return fmt.Errorf("no debug store configured")
	}
	q := debugsink.Query{Component: reportComponent}
	if q.Start, err = parseTimeFlag("start", reportStart); err != nil {
		return err
	}
	if q.End, err = parseTimeFlag("end", reportEnd); err != nil {
		return err
	}
	store, err := debugsink.New(cfg.Debug.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return export.Write(out, reportFormat, records)
}
