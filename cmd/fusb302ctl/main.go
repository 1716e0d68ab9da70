// Fusb302ctl talks USB power delivery to the power source attached to a
// FUSB302B port controller on a Linux host I2C bus.
//
// Usage:
//
//	fusb302ctl [--config file.yaml] [--bus 1] <command>
//
// The commands are:
//
//	probe       bring the chip up and print its identity and CC state
//	caps        request and print the source capabilities
//	listen      print received messages until interrupted
//	hard-reset  send hard reset signalling
//	send        transmit a raw message given in hex
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/oxplot/go-typec-phy/tcpcdriver/fusb302"
)

var (
	cfgFile string
	flagged = defaultConfig()
	cfg     config

	rootCmd = &cobra.Command{
		Use:           "fusb302ctl",
		Short:         "Drive a FUSB302B USB type-C port controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err = resolveConfig(cfgFile, cmd.Flags(), flagged)
			return err
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML configuration file")
	bindFlags(rootCmd.PersistentFlags(), &flagged)
	rootCmd.AddCommand(probeCmd, capsCmd, listenCmd, hardResetCmd, sendCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "fusb302ctl:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	lvl, _ := cfg.level() // validated by resolveConfig
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// openDevice opens the configured bus and brings the chip up. The returned
// bus must be closed by the caller.
func openDevice(log *slog.Logger) (*fusb302.FUSB302, i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("host init: %w", err)
	}
	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, nil, fmt.Errorf("open bus %s: %w", cfg.Bus, err)
	}
	if err := bus.SetSpeed(physic.Frequency(cfg.SpeedHz) * physic.Hertz); err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("bus speed: %w", err)
	}

	m, _ := cfg.mpn()
	dev := fusb302.New(bus, m)
	dev.SetLogger(log)
	dev.SetAutoRetry(cfg.AutoRetry)
	if err := dev.Init(); err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("init: %w", err)
	}
	log.Info("port controller ready", "bus", cfg.Bus, "part", cfg.Part, "cc", dev.CCPin())
	return dev, bus, nil
}
