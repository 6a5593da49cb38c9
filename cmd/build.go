package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeinfra/config"
	"github.com/kilianp07/chargeinfra/core/builder"
	"github.com/kilianp07/chargeinfra/core/infrastructure"
)

var buildCmd = &cobra.Command{
	Use:   "build [layout-file]",
	Short: "Build an infrastructure tree and print it",
	Long: `Build reads a layout file (YAML or JSON) and prints the resulting tree.
Without an argument the infrastructure section of --config is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	var layout builder.Config
	var err error
	if len(args) == 1 {
		layout, err = builder.LoadConfig(args[0])
	} else {
		var cfg *config.Config
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		layout, err = cfg.Infrastructure.BuilderConfig()
	}
	if err != nil {
		return err
	}
	b := builder.New()
	leafs, err := b.Build(layout)
	if err != nil {
		return err
	}
	if err := printTree(cmd.OutOrStdout(), b.Transformer()); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d connection points, %.1f kW installed\n",
		len(leafs), infrastructure.SumMaxPower(leafs))
	return err
}

func printTree(w io.Writer, root *infrastructure.Transformer) error {
	return infrastructure.Walk(root, func(n infrastructure.InfrastructureNode) error {
		indent := strings.Repeat("  ", infrastructure.Depth(n)-1)
		_, err := fmt.Fprintf(w, "%s%s [%g, %g] kW\n", indent, n.ID(), n.MinPower(), n.MaxPower())
		return err
	})
}
