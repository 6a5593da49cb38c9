package cmd

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/chargeinfra/core/builder"
	"github.com/kilianp07/chargeinfra/core/wallbox"
)

var (
	wallboxOpts             wallbox.Options
	wallboxStationPower     float64
	wallboxTransformerPower float64
)

var wallboxCmd = &cobra.Command{
	Use:   "wallbox",
	Short: "Generate a uniform layout and print it as YAML",
	Args:  cobra.NoArgs,
	RunE:  runWallbox,
}

func init() {
	f := wallboxCmd.Flags()
	f.IntVarP(&wallboxOpts.NumConnectionPoints, "points", "n", 1, "number of connection points")
	f.Float64VarP(&wallboxOpts.PowerPerPoint, "power", "p", 11, "max power per connection point in kW")
	f.IntVar(&wallboxOpts.PointsPerStation, "per-station", 1, "connection points per charging station")
	f.Float64Var(&wallboxStationPower, "station-power", 0, "max power per station in kW (default: sum of its points)")
	f.Float64Var(&wallboxTransformerPower, "transformer-power", 0, "max power of the transformer in kW (default: sum of all points)")
	f.Float64Var(&wallboxOpts.MinPowerPoint, "min-point", 0, "min power per connection point in kW")
	f.Float64Var(&wallboxOpts.MinPowerStation, "min-station", 0, "min power per station in kW")
	f.Float64Var(&wallboxOpts.MinPowerTransformer, "min-transformer", 0, "min power of the transformer in kW")
	rootCmd.AddCommand(wallboxCmd)
}

func runWallbox(cmd *cobra.Command, _ []string) error {
	opts := wallboxOpts
	if cmd.Flags().Changed("station-power") {
		opts.PowerPerStation = builder.Power(wallboxStationPower)
	}
	if cmd.Flags().Changed("transformer-power") {
		opts.PowerTransformer = builder.Power(wallboxTransformerPower)
	}
	layout, err := wallbox.Generate(opts)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(layout); err != nil {
		return err
	}
	return enc.Close()
}
