package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
	"tinygo.org/x/drivers"

	"powercode-go/drivers/max14578"
	"powercode-go/drivers/max7797x"
	"powercode-go/x/i2cbus"
)

var (
	// Bus flags
	busName  string
	simulate bool

	// Device flags
	chargerAddr  uint16
	detectorAddr uint16
	variantName  string
)

var rootCmd = &cobra.Command{
	Use:   "chargerctl",
	Short: "MAX7797x charger control",
	Long: `chargerctl talks to a MAX77975/MAX77976 battery charger and an optional
MAX14578 USB charger detector over I²C.

Every invocation probes the chip first. Fault acknowledgement is sticky
across reads but not across invocations: enable and ack refresh the status
before acting.

Bus selection:
  Hardware:  --bus 1            (periph registry name, default first bus)
  Simulated: --sim              (in-memory charger and detector)`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&busName, "bus", "b", "", "I²C bus name or number")
	rootCmd.PersistentFlags().BoolVar(&simulate, "sim", false, "Use a simulated bus")

	rootCmd.PersistentFlags().Uint16Var(&chargerAddr, "addr", max7797x.AddressDefault, "Charger 7-bit address")
	rootCmd.PersistentFlags().Uint16Var(&detectorAddr, "detector-addr", 0, "MAX14578 7-bit address (0 = none)")
	rootCmd.PersistentFlags().StringVar(&variantName, "variant", "", "Force variant: max77975 or max77976")
}

// openBus returns the selected transport and its release function. The
// transport goes through an i2cbus owner, which reports a missing device
// as no_ack rather than a generic bus error.
func openBus() (drivers.I2C, func(), error) {
	if simulate {
		o := i2cbus.New(newSimBus(), 0)
		return o, o.Stop, nil
	}
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	b, err := i2creg.Open(busName)
	if err != nil {
		return nil, nil, err
	}
	o := i2cbus.New(b, 0)
	return o, func() {
		o.Stop()
		b.Close()
	}, nil
}

// openCharger opens the bus and returns a probed charger.
func openCharger() (*max7797x.Device, func(), error) {
	v := max7797x.VariantUnknown
	if variantName != "" {
		var ok bool
		if v, ok = max7797x.ParseVariant(variantName); !ok {
			return nil, nil, fmt.Errorf("unknown variant %q", variantName)
		}
	}
	cfg := max7797x.Config{Address: chargerAddr, Variant: v}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	b, release, err := openBus()
	if err != nil {
		return nil, nil, err
	}
	dev := max7797x.New(b, cfg)
	if detectorAddr != 0 {
		dev.AttachDetector(max14578.New(b, max14578.Config{Address: detectorAddr}))
	}
	if _, err := dev.Probe(); err != nil {
		release()
		return nil, nil, err
	}
	return dev, release, nil
}

// withCharger adapts a charger action into a cobra RunE.
func withCharger(fn func(cmd *cobra.Command, dev *max7797x.Device) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		dev, release, err := openCharger()
		if err != nil {
			return err
		}
		defer release()
		return fn(cmd, dev)
	}
}
