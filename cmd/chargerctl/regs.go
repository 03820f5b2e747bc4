package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max7797x"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Dump charger registers (clear-on-read registers are skipped)",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		regs, err := dev.DumpRegisters()
		for _, r := range regs {
			fmt.Fprintf(cmd.OutOrStdout(), "%#04x  %-15s %#04x  %08b\n", byte(r.Reg), r.Name, r.Val, r.Val)
		}
		return err
	}),
}

func init() {
	rootCmd.AddCommand(regsCmd)
}
