package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max7797x"
)

var (
	cfgFastCharge currentFlag
	cfgInputLimit currentFlag
	cfgTopOff     currentFlag
	cfgChargeVolt potentialFlag
	cfgMinSysVolt potentialFlag
	cfgTopOffTime time.Duration
	cfgTimer      time.Duration
	cfgSysLimit   currentFlag
	cfgSysRecycle bool
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Apply charge parameters atomically",
	Long: `Apply one or more charge parameters. All values are validated before
any register is written; a bus failure part-way through rolls back what
was written. Omitted flags leave the current setting untouched.

  chargerctl configure --fast-charge 1.5A --charge-voltage 4.2V --timer 5h
  chargerctl configure --timer 0          (disable the fast-charge timer)`,
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		cfg, err := configurationFromFlags(cmd)
		if err != nil {
			return err
		}
		if cfg.IsZero() && !cmd.Flags().Changed("sys-limit") {
			return errors.New("nothing to configure")
		}
		if !cfg.IsZero() {
			if err := dev.ApplyConfiguration(cfg); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("sys-limit") {
			mA, err := cfgSysLimit.milli("sys-limit")
			if err != nil {
				return err
			}
			if err := dev.SetSysCurrentLimit(mA, cfgSysRecycle); err != nil {
				return err
			}
		}
		got, err := dev.ReadConfiguration()
		if err != nil {
			return err
		}
		printConfiguration(cmd.OutOrStdout(), got, dev.Variant())
		return nil
	}),
}

func init() {
	f := configureCmd.Flags()
	f.Var(&cfgFastCharge, "fast-charge", "Fast-charge current")
	f.Var(&cfgInputLimit, "input-limit", "CHGIN input current limit")
	f.Var(&cfgTopOff, "top-off", "Top-off (termination) current")
	f.Var(&cfgChargeVolt, "charge-voltage", "Battery regulation voltage")
	f.Var(&cfgMinSysVolt, "min-system", "Minimum system voltage")
	f.DurationVar(&cfgTopOffTime, "top-off-time", 0, "Top-off duration")
	f.DurationVar(&cfgTimer, "timer", 0, "Fast-charge safety timer (0 disables)")
	f.Var(&cfgSysLimit, "sys-limit", "Battery-to-system overcurrent limit")
	f.BoolVar(&cfgSysRecycle, "sys-recycle", false, "Auto-recover after a system overcurrent trip")
	rootCmd.AddCommand(configureCmd)
}

// configurationFromFlags builds a Configuration from the flags the user set.
func configurationFromFlags(cmd *cobra.Command) (max7797x.Configuration, error) {
	var cfg max7797x.Configuration
	changed := cmd.Flags().Changed
	currents := []struct {
		name string
		src  currentFlag
		dst  *uint16
	}{
		{"fast-charge", cfgFastCharge, &cfg.FastChargeCurrent_mA},
		{"input-limit", cfgInputLimit, &cfg.InputCurrentLimit_mA},
		{"top-off", cfgTopOff, &cfg.TopOffCurrent_mA},
	}
	for _, c := range currents {
		if !changed(c.name) {
			continue
		}
		mA, err := c.src.milli(c.name)
		if err != nil {
			return cfg, err
		}
		*c.dst = mA
	}
	volts := []struct {
		name string
		src  potentialFlag
		dst  *uint16
	}{
		{"charge-voltage", cfgChargeVolt, &cfg.ChargeVoltage_mV},
		{"min-system", cfgMinSysVolt, &cfg.MinSystemVoltage_mV},
	}
	for _, v := range volts {
		if !changed(v.name) {
			continue
		}
		mV, err := v.src.milli(v.name)
		if err != nil {
			return cfg, err
		}
		*v.dst = mV
	}
	if changed("top-off-time") {
		if cfgTopOffTime <= 0 {
			return cfg, fmt.Errorf("--top-off-time must be positive")
		}
		cfg.TopOffTime = cfgTopOffTime
	}
	if changed("timer") {
		switch {
		case cfgTimer == 0:
			cfg.FastChargeTimer = max7797x.FastChargeTimerOff
		case cfgTimer < 0:
			return cfg, fmt.Errorf("--timer must not be negative")
		default:
			cfg.FastChargeTimer = cfgTimer
		}
	}
	return cfg, nil
}
