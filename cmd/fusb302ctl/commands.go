package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oxplot/go-typec-phy"
	"github.com/oxplot/go-typec-phy/pdmsg"
	"github.com/oxplot/go-typec-phy/tcpcdriver/fusb302"
)

var (
	capsTimeout time.Duration

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Bring the chip up and print its identity and CC state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, bus, err := openDevice(newLogger())
			if err != nil {
				return err
			}
			defer bus.Close()

			id, err := dev.DeviceID()
			if err != nil {
				return err
			}
			st, err := dev.Status()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "device:   version %s, product %d, revision %d\n", id.Version, id.Product, id.Revision)
			fmt.Fprintf(w, "cc:       %s\n", dev.CCPin())
			fmt.Fprintf(w, "vbus ok:  %t\n", st.VBusOK)
			fmt.Fprintf(w, "bc level: %s\n", st.BCLevel)
			return nil
		},
	}

	capsCmd = &cobra.Command{
		Use:   "caps",
		Short: "Request and print the source capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			dev, bus, err := openDevice(log)
			if err != nil {
				return err
			}
			defer bus.Close()

			var req pdmsg.Message
			req.SetType(pdmsg.TypeGetSourceCap)
			req.SetRevision(pdmsg.Revision20)
			req.SetPowerRole(pdmsg.PowerRoleSink)
			req.SetDataRole(pdmsg.DataRoleUFP)
			var buf [pdmsg.MaxMessageBytes]byte
			n := req.ToBytes(buf[:])
			if err := dev.Transmit(buf[:n]); err != nil {
				// Sources advertise on attach as well, keep listening.
				log.Warn("requesting capabilities failed", "err", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), capsTimeout)
			defer cancel()
			for {
				m, err := receive(ctx, dev, log)
				if err != nil {
					return fmt.Errorf("waiting for capabilities: %w", err)
				}
				if m.IsData() && m.Type() == pdmsg.TypeSourceCap {
					printCapabilities(cmd.OutOrStdout(), m)
					return nil
				}
				log.Debug("ignored message", "msg", describeMessage(m))
			}
		},
	}

	listenCmd = &cobra.Command{
		Use:   "listen",
		Short: "Print received messages until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			dev, bus, err := openDevice(log)
			if err != nil {
				return err
			}
			defer bus.Close()

			ctx := cmd.Context()
			for {
				m, err := receive(ctx, dev, log)
				switch {
				case err == nil:
					fmt.Fprintln(cmd.OutOrStdout(), describeMessage(m))
				case errors.Is(err, typec.ErrRxHardReset):
					log.Warn("hard reset by port partner, reinitializing")
					if err := dev.Init(); err != nil {
						return fmt.Errorf("init: %w", err)
					}
				case ctx.Err() != nil:
					return nil
				default:
					return err
				}
			}
		},
	}

	hardResetCmd = &cobra.Command{
		Use:   "hard-reset",
		Short: "Send hard reset signalling to the port partner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, bus, err := openDevice(newLogger())
			if err != nil {
				return err
			}
			defer bus.Close()
			if err := dev.TransmitHardReset(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "hard reset sent")
			return nil
		},
	}

	sendCmd = &cobra.Command{
		Use:   "send <hex>",
		Short: "Transmit a message given as header and data objects in hex",
		Long: "Transmit a message given as header and data objects in hex, in wire order.\n" +
			"For example, a PD 2.0 Get_Source_Cap from a sink is \"4700\".",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := parseMessage(args[0])
			if err != nil {
				return err
			}
			dev, bus, err := openDevice(newLogger())
			if err != nil {
				return err
			}
			defer bus.Close()
			if err := dev.Transmit(msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d bytes\n", len(msg))
			return nil
		},
	}
)

func init() {
	capsCmd.Flags().DurationVarP(&capsTimeout, "timeout", "t", time.Second, "how long to wait for the capabilities")
}

// parseMessage decodes s, ignoring spaces and colons, into a message that
// carries as many data objects as its header declares.
func parseMessage(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("message: %w", err)
	}
	var m pdmsg.Message
	if err := m.FromBytes(b); err != nil {
		return nil, err
	}
	if n := 2 + 4*int(m.DataObjectCount()); len(b) != n {
		return nil, fmt.Errorf("message: header declares %d bytes, got %d", n, len(b))
	}
	return b, nil
}

// receive waits for the next message from the port partner, until ctx is
// done, a hard reset is received or the bus fails.
func receive(ctx context.Context, dev *fusb302.FUSB302, log *slog.Logger) (pdmsg.Message, error) {
	var buf [pdmsg.MaxMessageBytes]byte
	for {
		if err := ctx.Err(); err != nil {
			return pdmsg.Message{}, err
		}
		n, err := dev.Receive(buf[:])
		switch {
		case err == nil:
			var m pdmsg.Message
			err := m.FromBytes(buf[:n])
			return m, err
		case errors.Is(err, typec.ErrRxHardReset):
			return pdmsg.Message{}, err
		case errors.As(err, new(*fusb302.BusError)):
			return pdmsg.Message{}, err
		case errors.Is(err, fusb302.ErrTimeout):
		default:
			log.Debug("receive failed", "err", err)
		}
	}
}
