// Command mothctl configures AudioMoth recorders over USB HID.
//
// Usage:
//
//	mothctl [-l level] [-s serial] <command>
//
// Commands:
//
//	list     list every attached USB device
//	moths    list attached AudioMoths
//	get      read the active configuration
//	set      change configuration fields (read-merge-write)
//	persist  store the active configuration in non-volatile memory
//	restore  reload the persisted configuration
//
// set only transmits the fields given on the command line; everything else
// keeps the device's current value.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/wildsense/mothctl/pkg/moth"
)

func main() {
	var logger *slog.Logger

	app := &cli.App{
		Name:  "mothctl",
		Usage: "configure AudioMoth recorders over USB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "serial",
				Aliases: []string{"s"},
				Usage:   "serial number of the AudioMoth to use (default: first found)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "log level: debug, info, warn, error",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: moth.DefaultTimeout,
				Usage: "response timeout per exchange",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := parseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			logger = slog.New(newColorHandler(os.Stderr, level))
			slog.SetDefault(logger)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list every attached USB device",
				Action: func(c *cli.Context) error {
					client, err := newClient(c, logger)
					if err != nil {
						return err
					}
					devices, err := client.ListUSB()
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "VID\tPID\tSERIAL\tMANUFACTURER\tPRODUCT")
					for _, d := range devices {
						fmt.Fprintf(w, "0x%04X\t0x%04X\t%s\t%s\t%s\n",
							d.VendorID, d.ProductID, d.Serial, d.Manufacturer, d.Product)
					}
					return w.Flush()
				},
			},
			{
				Name:  "moths",
				Usage: "list attached AudioMoths",
				Action: func(c *cli.Context) error {
					client, err := newClient(c, logger)
					if err != nil {
						return err
					}
					moths, err := client.Enumerate()
					if err != nil {
						return err
					}
					if len(moths) == 0 {
						return fmt.Errorf("no AudioMoth attached")
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "SERIAL\tPATH\tPRODUCT")
					for _, d := range moths {
						fmt.Fprintf(w, "%s\t%s\t%s\n", d.Serial, d.Path, d.Product)
					}
					return w.Flush()
				},
			},
			{
				Name:  "get",
				Usage: "read the active configuration",
				Action: func(c *cli.Context) error {
					return withDevice(c, logger, func(client *moth.Client, h *moth.Handle) error {
						cfg, err := client.GetConfig(h)
						if err != nil {
							return err
						}
						return printConfig(c, h, cfg)
					})
				},
			},
			{
				Name:  "set",
				Usage: "change configuration fields",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "gain", Aliases: []string{"g"}, Usage: "gain setting, 0..4"},
					&cli.UintFlag{Name: "clock-divider", Aliases: []string{"c"}, Usage: "clock divider"},
					&cli.UintFlag{Name: "acquisition-cycles", Aliases: []string{"a"}, Usage: "acquisition cycles"},
					&cli.UintFlag{Name: "oversample-rate", Aliases: []string{"o"}, Usage: "oversample rate"},
					&cli.UintFlag{Name: "sample-rate", Aliases: []string{"r"}, Usage: "sample rate in Hz"},
					&cli.UintFlag{Name: "sample-rate-divider", Aliases: []string{"d"}, Usage: "sample rate divider"},
					&cli.UintFlag{Name: "lower-filter-freq", Usage: "band-pass lower bound in Hz"},
					&cli.UintFlag{Name: "higher-filter-freq", Usage: "band-pass upper bound in Hz"},
				},
				Action: func(c *cli.Context) error {
					overrides, err := parseOverrides(c)
					if err != nil {
						return err
					}
					return withDevice(c, logger, func(client *moth.Client, h *moth.Handle) error {
						cfg, err := client.SetConfig(h, overrides)
						if err != nil {
							return err
						}
						return printConfig(c, h, cfg)
					})
				},
			},
			{
				Name:  "persist",
				Usage: "store the active configuration in non-volatile memory",
				Action: func(c *cli.Context) error {
					return withDevice(c, logger, func(client *moth.Client, h *moth.Handle) error {
						if err := client.Persist(h); err != nil {
							return err
						}
						logger.Info("configuration persisted", "serial", h.Info().Serial)
						return nil
					})
				},
			},
			{
				Name:  "restore",
				Usage: "reload the persisted configuration",
				Action: func(c *cli.Context) error {
					return withDevice(c, logger, func(client *moth.Client, h *moth.Handle) error {
						if err := client.Restore(h); err != nil {
							return err
						}
						logger.Info("configuration restored", "serial", h.Info().Serial)
						return nil
					})
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newClient(c *cli.Context, logger *slog.Logger) (*moth.Client, error) {
	return moth.New(
		moth.WithTimeout(c.Duration("timeout")),
		moth.WithLogger(logger),
	)
}

// withDevice opens the selected AudioMoth for the duration of one action.
func withDevice(c *cli.Context, logger *slog.Logger, fn func(*moth.Client, *moth.Handle) error) error {
	client, err := newClient(c, logger)
	if err != nil {
		return err
	}
	h, err := client.Find(c.String("serial"))
	if err != nil {
		return err
	}
	defer h.Close()
	return fn(client, h)
}

func parseOverrides(c *cli.Context) (moth.Overrides, error) {
	var o moth.Overrides
	for _, f := range []struct {
		name string
		dst  **uint8
	}{
		{"gain", &o.Gain},
		{"clock-divider", &o.ClockDivider},
		{"acquisition-cycles", &o.AcquisitionCycles},
		{"oversample-rate", &o.OversampleRate},
		{"sample-rate-divider", &o.SampleRateDivider},
	} {
		if !c.IsSet(f.name) {
			continue
		}
		v := c.Uint(f.name)
		if v > 0xFF {
			return o, fmt.Errorf("--%s must fit in one byte, got %d", f.name, v)
		}
		b := uint8(v)
		*f.dst = &b
	}
	for _, f := range []struct {
		name string
		dst  **uint16
	}{
		{"lower-filter-freq", &o.LowerFilterFreq},
		{"higher-filter-freq", &o.HigherFilterFreq},
	} {
		if !c.IsSet(f.name) {
			continue
		}
		v := c.Uint(f.name)
		if v > 0xFFFF {
			return o, fmt.Errorf("--%s must fit in two bytes, got %d", f.name, v)
		}
		b := uint16(v)
		*f.dst = &b
	}
	if c.IsSet("sample-rate") {
		sr := uint32(c.Uint("sample-rate"))
		o.SampleRate = &sr
	}
	return o, nil
}

func printConfig(c *cli.Context, h *moth.Handle, cfg moth.Config) error {
	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "serial\t%s\n", h.Info().Serial)
	fmt.Fprintf(w, "gain\t%d\n", cfg.Gain)
	fmt.Fprintf(w, "clock divider\t%d\n", cfg.ClockDivider)
	fmt.Fprintf(w, "acquisition cycles\t%d\n", cfg.AcquisitionCycles)
	fmt.Fprintf(w, "oversample rate\t%d\n", cfg.OversampleRate)
	fmt.Fprintf(w, "sample rate\t%d Hz\n", cfg.SampleRate)
	fmt.Fprintf(w, "sample rate divider\t%d\n", cfg.SampleRateDivider)
	fmt.Fprintf(w, "lower filter freq\t%d Hz\n", cfg.LowerFilterFreq)
	fmt.Fprintf(w, "higher filter freq\t%d Hz\n", cfg.HigherFilterFreq)
	return w.Flush()
}
