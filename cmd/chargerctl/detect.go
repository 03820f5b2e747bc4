package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Classify the USB source via the MAX14578",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		r, err := dev.Detect()
		if err != nil {
			return err
		}
		printDetect(cmd.OutOrStdout(), r, dev.Policy().For(r.Class))
		return nil
	}),
}

var applyPolicyCmd = &cobra.Command{
	Use:   "apply-policy",
	Short: "Detect the USB source and set the input current limit for it",
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		r, mA, err := dev.ApplyDetectedCurrentPolicy()
		if err != nil {
			return err
		}
		printDetect(cmd.OutOrStdout(), r, mA)
		fmt.Fprintf(cmd.OutOrStdout(), "input limit set to %d mA\n", mA)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(detectCmd, applyPolicyCmd)
}

func printDetect(w io.Writer, r max14578.Result, mA uint16) {
	fmt.Fprintf(w, "class   %s (%s)\n", r.Class, r.Type)
	fmt.Fprintf(w, "vbus    %t\n", r.VBusValid)
	if r.Running {
		fmt.Fprintln(w, "detection still running")
	}
	fmt.Fprintf(w, "policy  %d mA\n", mA)
}
