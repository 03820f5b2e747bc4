package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"powercode-go/drivers/max7797x"
	"powercode-go/services/charger"
	"powercode-go/types"
	"powercode-go/x/timex"
)

var (
	watchInterval time.Duration
	watchCount    int
	watchCBOR     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll status and print state and fault changes",
	Long: `Poll the charger at --interval and print one line per poll, plus an
event line whenever the charge state changes or a new fault appears.

With --cbor the output is a stream of CBOR records instead:
  [1, value]   types.ChargerValue, integer keys
  [2, event]   types.ChargerEvent, integer keys`,
	RunE: withCharger(func(cmd *cobra.Command, dev *max7797x.Device) error {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, os.Interrupt)
		defer stop()
		return watch(ctx, dev, cmd.OutOrStdout())
	}),
}

func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", time.Second, "Poll interval")
	watchCmd.Flags().IntVarP(&watchCount, "count", "n", 0, "Stop after n polls (0 = forever)")
	watchCmd.Flags().BoolVar(&watchCBOR, "cbor", false, "Write CBOR records to stdout")
	rootCmd.AddCommand(watchCmd)
}

type watcher struct {
	out       io.Writer
	cbor      bool
	state     max7797x.ChargeState
	faults    max7797x.FaultFlags
	published bool
}

func watch(ctx context.Context, dev *max7797x.Device, out io.Writer) error {
	w := &watcher{out: out, cbor: watchCBOR}
	tick := time.NewTicker(watchInterval)
	defer tick.Stop()
	for n := 0; watchCount == 0 || n < watchCount; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
			}
		}
		st, err := dev.RefreshStatus()
		if err != nil {
			// Keep polling: the stale status is still emitted.
			fmt.Fprintln(os.Stderr, err)
		}
		if err := w.observe(st, dev.Armed(), timex.NowMs()); err != nil {
			return err
		}
	}
	return nil
}

func (w *watcher) observe(st max7797x.Status, armed bool, ts int64) error {
	if err := w.emit(recordValue, charger.Value(st, armed, ts)); err != nil {
		return err
	}
	if st.Stale {
		return nil
	}
	if !w.published || st.State != w.state {
		ev := types.ChargerEvent{Kind: "state", To: st.State.String(), TS: ts}
		if w.published {
			ev.From = w.state.String()
		}
		if err := w.emit(recordEvent, ev); err != nil {
			return err
		}
	}
	if fresh := st.Faults &^ w.faults; fresh != 0 {
		if err := w.emit(recordEvent, types.ChargerEvent{Kind: "fault", Faults: fresh.Names(), TS: ts}); err != nil {
			return err
		}
	}
	w.state, w.faults, w.published = st.State, st.Faults, true
	return nil
}

func (w *watcher) emit(kind uint8, payload any) error {
	if w.cbor {
		b, err := encodeRecord(kind, payload)
		if err != nil {
			return err
		}
		_, err = w.out.Write(b)
		return err
	}
	var err error
	switch v := payload.(type) {
	case types.ChargerValue:
		faults := "none"
		if len(v.Faults) > 0 {
			faults = strings.Join(v.Faults, "|")
		}
		stale := ""
		if v.Stale {
			stale = " stale"
		}
		_, err = fmt.Fprintf(w.out, "%s  %-11s mode=%s chgin=%s bat=%s thm=%s faults=%s armed=%t%s\n",
			time.UnixMilli(v.TS).Format("15:04:05.000"), v.State, v.Mode, v.ChgIn, v.Battery, v.Thermistor, faults, v.Armed, stale)
	case types.ChargerEvent:
		switch v.Kind {
		case "state":
			from := v.From
			if from == "" {
				from = "-"
			}
			_, err = fmt.Fprintf(w.out, "  event state %s -> %s\n", from, v.To)
		default:
			_, err = fmt.Fprintf(w.out, "  event %s %s\n", v.Kind, strings.Join(v.Faults, "|"))
		}
	}
	return err
}
