package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coreman2200/borderlight/internal/app"
	"github.com/coreman2200/borderlight/internal/calib"
	"github.com/coreman2200/borderlight/internal/config"
	"github.com/coreman2200/borderlight/internal/wire"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "borderlight",
	Short:         "Ambient LED lighting around a display border",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, loadErr := config.Load(configPath)
		if loadErr != nil {
			if !errors.Is(loadErr, fs.ErrNotExist) {
				return loadErr
			}
			c = config.Default()
		}
		if err := c.ApplyFlags(cmd.Flags()); err != nil {
			return err
		}
		cfg = c
		setupLogging(cfg.Log)
		if loadErr != nil {
			log.Warn().Err(loadErr).Str("path", configPath).Msg("config load failed; proceeding with defaults and flags")
		}
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Mirror the screen border onto the LED strip",
	RunE: func(cmd *cobra.Command, args []string) error {
		core, err := app.InitCore(cfg, log.Logger)
		if err != nil {
			return err
		}
		defer core.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			err := config.Watch(ctx, configPath, config.DefaultDebounce, log.Logger, func(c *config.Config) {
				// Command-line flags keep precedence over the file.
				if err := c.ApplyFlags(cmd.Flags()); err != nil {
					log.Warn().Err(err).Msg("config reload rejected")
					return
				}
				core.Reload(c)
			})
			if err != nil {
				log.Warn().Err(err).Msg("config watcher unavailable; hot reload disabled")
			}
		}

		go func() {
			if err := core.Serve(ctx); err != nil {
				log.Error().Err(err).Msg("http server crashed")
				stop()
			}
		}()
		core.Run(ctx)
		log.Info().Msg("shutting down")
		return nil
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the regions and LED positions of the configured border",
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("write-default"); path != "" {
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("default config written")
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		l, err := app.BuildLayout(cfg)
		if err != nil {
			return err
		}
		enc, err := app.Encoder(cfg, l)
		if err != nil {
			return err
		}

		w := bufio.NewWriter(cmd.OutOrStdout())
		defer w.Flush()
		fmt.Fprintf(w, "screen %dx%d ring %d\n", l.Screen.Width, l.Screen.Height, l.Screen.RingLength())
		for i := range l.Regions {
			r := &l.Regions[i]
			fmt.Fprintf(w, "region %3d %s\n", i, r)
		}
		for i := range l.LEDs {
			fmt.Fprintf(w, "led %4d wire %4d %s\n", i, (i-enc.Start+l.Count())%l.Count(), &l.LEDs[i])
		}
		return nil
	},
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Drive the strip with a test pattern",
	Long: `Drive the strip with a test pattern to check wiring and find the start corner.
index_sweep lights one LED at a time in ring order, rgb shows each channel on
every LED, corners lights the first LED of each side (top red, right green,
bottom blue, left white) followed by two dimmer ones in ring direction.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern, _ := cmd.Flags().GetString("pattern")
		hold, _ := cmd.Flags().GetDuration("hold")
		kind, err := calib.ParseKind(pattern)
		if err != nil {
			return err
		}
		core, err := app.InitCore(cfg, log.Logger)
		if err != nil {
			return err
		}
		defer core.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log.Info().Str("pattern", pattern).Str("driver", core.DriverName).Msg("calibrating")
		if err := core.Calibrate(ctx, kind, hold); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [FILE]",
	Short: "Decode a raw frame dump (stdin when FILE is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = cmd.InOrStdin()
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return err
		}

		w := bufio.NewWriter(cmd.OutOrStdout())
		defer w.Flush()
		bad := 0
		for i, fb := range wire.Split(b) {
			f, err := wire.Decode(fb)
			if err != nil {
				bad++
				fmt.Fprintf(w, "frame %d: %v\n", i, err)
				continue
			}
			fmt.Fprintf(w, "frame %d: %d leds", i, len(f.LEDs))
			if f.Group > 0 {
				fmt.Fprintf(w, " group %d", f.Group)
			}
			fmt.Fprintln(w)
			for j, c := range f.LEDs {
				fmt.Fprintf(w, "  %4d %v\n", j, c)
			}
		}
		if bad > 0 {
			return fmt.Errorf("%d malformed frames", bad)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config.yaml")
	config.AddFlags(rootCmd.PersistentFlags())

	runCmd.Flags().Bool("watch", false, "reload luminosity, correction and fading when the config file changes")
	layoutCmd.Flags().String("write-default", "", "write the default configuration to this path and exit")
	calibrateCmd.Flags().String("pattern", string(calib.Corners), "pattern: index_sweep | rgb | corners")
	calibrateCmd.Flags().Duration("hold", 2*time.Second, "time each pattern step is shown")

	rootCmd.AddCommand(runCmd, layoutCmd, calibrateCmd, decodeCmd)
}

func setupLogging(c config.Log) {
	zerolog.TimeFieldFormat = time.RFC3339
	if c.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})
	}
	if lvl, err := zerolog.ParseLevel(c.Level); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("borderlight")
	}
}
