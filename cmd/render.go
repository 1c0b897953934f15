package cmd

import (
	"fmt"
	"os"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/spf13/cobra"

	"sfx/internal/audio"
	"sfx/internal/synth"
)

var (
	renderOut  string
	renderGap  float64
	renderTail float64
)

var renderCmd = &cobra.Command{
	Use:   "render <effect>...",
	Short: "Render effects to a WAV file",
	Long: `Renders the named effects one after another into a 16-bit stereo WAV
file without touching the audio device.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "sfx.wav", "output WAV file")
	renderCmd.Flags().Float64Var(&renderGap, "gap", 0.1, "silence between effects, in seconds")
	renderCmd.Flags().Float64Var(&renderTail, "tail", 0.05, "silence after the last effect, in seconds")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	for _, name := range args {
		if _, ok := audio.Lookup(name); !ok {
			return unknownEffect(name)
		}
	}

	frames, err := renderEffects(cfg.Audio.SampleRate, args, renderGap, renderTail)
	if err != nil {
		return err
	}
	if err := writeWAV(renderOut, cfg.Audio.SampleRate, frames); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%.2fs)\n", renderOut, float64(len(frames))/float64(cfg.Audio.SampleRate))
	return nil
}

// renderEffects plays names back to back on an offline context and returns
// the mixed frames. Rendering ignores the mute switch.
func renderEffects(sampleRate int, names []string, gap, tail float64) ([][2]float64, error) {
	oc := audio.NewOfflineContext(sampleRate)
	e := audio.New(audio.WithContextFactory(func() (audio.Context, error) { return oc, nil }))
	e.Init()
	defer func() { _ = e.Close() }()

	var frames [][2]float64
	for i, name := range names {
		d, _ := audio.Lookup(name)
		if err := e.SFX().Play(name); err != nil {
			return nil, err
		}
		length := d.Length()
		if i < len(names)-1 {
			length += gap
		} else {
			length += tail
		}
		frames = append(frames, oc.Render(length)...)
	}
	return frames, nil
}

func writeWAV(path string, sampleRate int, frames [][2]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, clipped(frames), format); err != nil {
		_ = f.Close()
		return fmt.Errorf("encoding wav: %w", err)
	}
	return f.Close()
}

// clipped streams frames through the mixer's soft clipper.
func clipped(frames [][2]float64) beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(frames) {
			return 0, false
		}
		n := copy(samples, frames[pos:])
		for i := range samples[:n] {
			samples[i][0] = synth.SoftClip(samples[i][0])
			samples[i][1] = synth.SoftClip(samples[i][1])
		}
		pos += n
		return n, true
	})
}
