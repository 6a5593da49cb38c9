package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/chargeinfra/app"
	"github.com/kilianp07/chargeinfra/config"
	"github.com/kilianp07/chargeinfra/infra/logger"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the configured simulation",
	Args:  cobra.NoArgs,
	RunE:  runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	res, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s\nsteps:      %d\nenergy:     %.3f kWh\nserved:     %d\nrejected:   %d\ntarget met: %d\n",
		res.RunID, res.Steps, res.EnergyKWh, res.Served, res.Rejected, res.TargetMet)
	return err
}
