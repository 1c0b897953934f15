// Package cmd implements the sfx command line.
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sfx/internal/audio"
	"sfx/internal/config"
	"sfx/internal/log"
	"sfx/internal/telemetry"
)

var (
	cfgFile  string
	logLevel string
	muted    bool

	cfg             config.Config
	cfgViper        *viper.Viper
	shutdownTracing telemetry.Shutdown
)

var rootCmd = &cobra.Command{
	Use:   "sfx",
	Short: "Procedural sound effects for interactive apps",
	Long: `sfx synthesizes short feedback sounds (click, select, correct, wrong,
win, pop), plays decoded audio assets and cuts recorded phrase sheets
into addressable clips.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&muted, "muted", false, "start with sound off")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, _ []string) error {
	var err error
	cfg, cfgViper, err = config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if cmd.Flags().Changed("muted") {
		cfg.Audio.StartMuted = muted
	}
	if err := log.Setup(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	shutdownTracing, err = telemetry.Setup(cmd.Context(), cfg.Tracing)
	if err != nil {
		return err
	}
	log.Debug(log.CatCLI, "Config loaded", "file", cfgViper.ConfigFileUsed(), "backend", cfg.Audio.Backend)
	return nil
}

func teardown(*cobra.Command, []string) error {
	if shutdownTracing == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return shutdownTracing(ctx)
}

// newEngine builds an engine from the loaded config. Config file edits to
// audio.start_muted and log settings apply while the command runs.
func newEngine(cmd *cobra.Command) *audio.Engine {
	factory := audio.DeviceFactory(cfg.Audio.SampleRate)
	if cfg.Audio.Backend == "offline" {
		factory = audio.OfflineFactory(cfg.Audio.SampleRate)
	}
	e := audio.New(append(loaderOptions(), audio.WithContextFactory(factory))...)

	if cfgViper != nil && cfgViper.ConfigFileUsed() != "" {
		errOut := cmd.ErrOrStderr()
		config.Watch(cfgViper, func(c config.Config) {
			if err := log.Setup(errOut, c.Log.Level, c.Log.Format); err != nil {
				log.Warn(log.CatConfig, "Ignoring log settings", "error", err)
			}
			if !cmd.Flags().Changed("muted") {
				e.SetSoundOn(!c.Audio.StartMuted)
			}
			log.Info(log.CatConfig, "Config reloaded", "soundOn", e.SoundOn())
		}, func(err error) {
			log.Warn(log.CatConfig, "Ignoring invalid config change", "error", err)
		})
	}
	return e
}

// loaderOptions configure fetching, decoding and the initial mute state.
func loaderOptions() []audio.Option {
	return []audio.Option{
		audio.WithFetcher(&audio.HTTPFetcher{
			Client:   &http.Client{Timeout: cfg.Loader.Timeout},
			MaxBytes: cfg.Loader.MaxBytes,
		}),
		audio.WithDecoder(audio.BeepDecoder{Quality: resampleQuality(cfg.Loader.ResampleQuality)}),
		audio.WithSoundOn(!cfg.Audio.StartMuted),
	}
}

func resampleQuality(s string) resample.Quality {
	switch s {
	case "fast":
		return resample.QualityFast
	case "best":
		return resample.QualityBest
	}
	return resample.QualityBalanced
}

// startAudio initializes e and waits for the device to come up. It returns
// false when nothing will be heard.
func startAudio(cmd *cobra.Command, e *audio.Engine) bool {
	e.Init()
	deadline := time.Now().Add(2 * time.Second)
	for e.State() == audio.StateSuspended && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if e.State() != audio.StateRunning {
		fmt.Fprintln(cmd.ErrOrStderr(), "audio unavailable, continuing without sound")
		return false
	}
	if !e.SoundOn() {
		fmt.Fprintln(cmd.ErrOrStderr(), "sound is muted")
	}
	return true
}

// waitPlayback blocks until the device has finished every scheduled voice,
// giving up limit seconds (plus slack) after the call, then pauses for gap
// seconds. Offline runs return at once.
func waitPlayback(e *audio.Engine, limit, gap float64) {
	if cfg.Audio.Backend == "offline" {
		return
	}
	deadline := time.Now().Add(seconds(limit) + time.Second)
	for len(e.Playing()) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if gap > 0 {
		time.Sleep(seconds(gap))
	}
}

func seconds(s float64) time.Duration { return time.Duration(s * float64(time.Second)) }
