package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max7797x"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read and print charger status and configuration",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		st, err := dev.RefreshStatus()
		if err != nil {
			return err
		}
		printStatus(cmd.OutOrStdout(), dev, st)

		cfg, err := dev.ReadConfiguration()
		if err != nil {
			return err
		}
		printConfiguration(cmd.OutOrStdout(), cfg, dev.Variant())
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(w io.Writer, dev *max7797x.Device, st max7797x.Status) {
	d := st.Details
	fmt.Fprintf(w, "chip        %s @ %#02x\n", dev.Variant(), dev.Address())
	fmt.Fprintf(w, "state       %s\n", st.State)
	fmt.Fprintf(w, "mode        %s\n", st.Mode)
	fmt.Fprintf(w, "faults      %s\n", st.Faults)
	fmt.Fprintf(w, "armed       %t\n", dev.Armed())
	fmt.Fprintf(w, "chgin       %s\n", d.ChgIn)
	fmt.Fprintf(w, "battery     %s\n", d.Battery)
	fmt.Fprintf(w, "charger     %s\n", d.Charger)
	fmt.Fprintf(w, "thermistor  %s\n", d.Thermistor)
	if d.ThermalRegulation {
		fmt.Fprintln(w, "thermal     regulating")
	}
	if st.Stale {
		fmt.Fprintln(w, "(stale)")
	}
}

// printConfiguration prints c next to the power-on values of variant v.
func printConfiguration(w io.Writer, c max7797x.Configuration, v max7797x.Variant) {
	reset := configRows(max7797x.ResetConfiguration(v))
	for i, r := range configRows(c) {
		fmt.Fprintf(w, "%-11s %-18s (reset %s)\n", r[0], r[1], reset[i][1])
	}
	fmt.Fprintln(w, strings.Repeat("-", 24))
}

func configRows(c max7797x.Configuration) [][2]string {
	timer := "off"
	if c.FastChargeTimer > 0 {
		timer = c.FastChargeTimer.String()
	}
	return [][2]string{
		{"fast charge", fmt.Sprintf("%d mA", c.FastChargeCurrent_mA)},
		{"input limit", fmt.Sprintf("%d mA", c.InputCurrentLimit_mA)},
		{"charge volt", fmt.Sprintf("%d mV", c.ChargeVoltage_mV)},
		{"min system", fmt.Sprintf("%d mV", c.MinSystemVoltage_mV)},
		{"top-off", fmt.Sprintf("%d mA for %s", c.TopOffCurrent_mA, c.TopOffTime.Round(time.Second))},
		{"fc timer", timer},
	}
}
