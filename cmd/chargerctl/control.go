package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max7797x"
)

var shipConfirm bool

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Switch charging on (refused while a fault is latched)",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		if _, err := dev.RefreshStatus(); err != nil {
			return err
		}
		if err := dev.Enable(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "charging enabled")
		return nil
	}),
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Switch charging off, keeping the buck converter on",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		if err := dev.Disable(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "charging disabled")
		return nil
	}),
}

var ackCmd = &cobra.Command{
	Use:   "ack",
	Short: "Acknowledge latched faults and re-arm the charger",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		st, err := dev.RefreshStatus()
		if err != nil {
			return err
		}
		if err := dev.AcknowledgeFault(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "acknowledged: %s\n", st.Faults)
		return nil
	}),
}

var shipCmd = &cobra.Command{
	Use:   "ship",
	Short: "Enter ship mode (battery disconnected until input returns)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !shipConfirm {
			return errors.New("ship mode cuts system power; pass --yes to confirm")
		}
		return withCharger(func(_ *cobra.Command, dev *max7797x.Device) error {
			return dev.EnterShipMode()
		})(cmd, args)
	},
}

var watchdogCmd = &cobra.Command{
	Use:       "watchdog on|off|kick",
	Short:     "Control the charger I²C watchdog",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "kick"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
			switch args[0] {
			case "kick":
				return dev.KickWatchdog()
			default:
				return dev.SetWatchdog(args[0] == "on")
			}
		})(cmd, args)
	},
}

func init() {
	shipCmd.Flags().BoolVar(&shipConfirm, "yes", false, "Confirm entering ship mode")
	rootCmd.AddCommand(enableCmd, disableCmd, ackCmd, shipCmd, watchdogCmd)
}
