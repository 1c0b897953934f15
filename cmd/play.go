package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sfx/internal/audio"
	"sfx/internal/log"
)

var playGap time.Duration

var playCmd = &cobra.Command{
	Use:   "play <effect>...",
	Short: "Play built-in effects one after another",
	Long:  `Plays each named effect in turn. Run 'sfx list' for the available names.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&playGap, "gap", 100*time.Millisecond, "pause between effects")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	// Reject typos before making any sound.
	defs := make([]audio.EffectDefinition, len(args))
	for i, name := range args {
		d, ok := audio.Lookup(name)
		if !ok {
			return unknownEffect(name)
		}
		defs[i] = d
	}

	e := newEngine(cmd)
	defer func() { _ = e.Close() }()
	if !startAudio(cmd, e) {
		return nil
	}
	for _, d := range defs {
		if err := e.SFX().Play(d.Name); err != nil {
			return err
		}
		log.Debug(log.CatCLI, "Effect triggered", "effect", d.Name, "length", d.Length())
		waitPlayback(e, d.Length(), playGap.Seconds())
	}
	return nil
}

func unknownEffect(name string) error {
	names := make([]string, 0)
	for _, d := range audio.Catalog() {
		names = append(names, d.Name)
	}
	return fmt.Errorf("%w %q (available: %s)", audio.ErrUnknownEffect, name, strings.Join(names, ", "))
}
