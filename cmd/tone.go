package cmd

import (
	"github.com/spf13/cobra"

	"sfx/internal/synth"
)

var (
	toneFreq     float64
	toneWave     string
	toneDuration float64
	toneOffset   float64
)

var toneCmd = &cobra.Command{
	Use:   "tone",
	Short: "Play a single enveloped tone",
	Args:  cobra.NoArgs,
	RunE:  runTone,
}

func init() {
	toneCmd.Flags().Float64Var(&toneFreq, "freq", 440, "frequency in Hz")
	toneCmd.Flags().StringVar(&toneWave, "wave", "sine", "waveform: sine, triangle, sawtooth or square")
	toneCmd.Flags().Float64Var(&toneDuration, "duration", 0.3, "length in seconds")
	toneCmd.Flags().Float64Var(&toneOffset, "offset", 0, "delay before the tone starts, in seconds")
	rootCmd.AddCommand(toneCmd)
}

func runTone(cmd *cobra.Command, args []string) error {
	w, err := synth.ParseWaveform(toneWave)
	if err != nil {
		return err
	}
	e := newEngine(cmd)
	defer func() { _ = e.Close() }()
	if !startAudio(cmd, e) {
		return nil
	}
	e.PlayTone(toneFreq, w, toneDuration, toneOffset)
	waitPlayback(e, toneOffset+toneDuration, 0)
	return nil
}
