package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/econdispatch/core/scheduler"
)

var (
	scheduleCount int
	scheduleFrom  string
	scheduleFile  string
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Print the upcoming optimization instants",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().IntVarP(&scheduleCount, "count", "n", 5, "number of instants to print")
	scheduleCmd.Flags().StringVar(&scheduleFrom, "from", "", "start time in RFC3339, defaults to now")
	scheduleCmd.Flags().StringVar(&scheduleFile, "cadence", "", "preview a cadence file (yaml/json) instead of the system section")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	sc, err := cadence()
	if err != nil {
		return err
	}
	loc, err := sc.LoadLocation()
	if err != nil {
		return err
	}
	policy, err := scheduler.ParsePolicy(sc.Policy)
	if err != nil {
		return err
	}
	sched, err := scheduler.New(sc.Interval(), policy)
	if err != nil {
		return err
	}
	from := time.Now()
	if scheduleFrom != "" {
		if from, err = time.Parse(time.RFC3339, scheduleFrom); err != nil {
			return fmt.Errorf("from: %w", err)
		}
	}
	for _, t := range sched.Upcoming(from.In(loc), scheduleCount) {
		fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339))
	}
	return nil
}

func cadence() (scheduler.Config, error) {
	if scheduleFile != "" {
		sc, err := scheduler.LoadConfig(scheduleFile)
		if err != nil {
			return scheduler.Config{}, fmt.Errorf("cadence: %w", err)
		}
		return sc, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return scheduler.Config{}, err
	}
	return cfg.System.Schedule(), nil
}
