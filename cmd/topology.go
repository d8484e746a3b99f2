package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/econdispatch/app"
)

var topologyFormat string

var topologyCmd = &cobra.Command{
	Use:   "topology",
	Short: "Assemble the configured components and print the capability graph",
	RunE:  runTopology,
}

func init() {
	topologyCmd.Flags().StringVarP(&topologyFormat, "format", "f", "text", "output format: text or dot")
	rootCmd.AddCommand(topologyCmd)
}

func runTopology(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	asm, err := app.Assemble(cfg, nil)
	if err != nil {
		return err
	}
	defer asm.Close()

	g := asm.System.Graph()
	out := cmd.OutOrStdout()
	switch topologyFormat {
	case "dot":
		_, err = fmt.Fprint(out, g.DOT())
		return err
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s", topologyFormat)
	}
	for _, n := range g.Nodes() {
		fmt.Fprintf(out, "%s (%s)\n", n.Name, n.Type)
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(out, "%s -> %s [%s]\n", e.From, e.To, e.Label)
	}
	return nil
}
