package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/require"

	"sfx/internal/synth"
)

const testRate = 8000

// newOfflineEngine returns an engine whose context is an OfflineContext at
// testRate, already initialized.
func newOfflineEngine(t *testing.T, opts ...Option) (*Engine, *OfflineContext) {
	t.Helper()
	oc := NewOfflineContext(testRate, WithRecording())
	opts = append([]Option{WithContextFactory(func() (Context, error) { return oc, nil })}, opts...)
	e := New(opts...)
	e.Init()
	require.Equal(t, StateRunning, e.State())
	return e, oc
}

func oscillators(t *testing.T, oc *OfflineContext) []*synth.Oscillator {
	t.Helper()
	var out []*synth.Oscillator
	for _, v := range oc.Voices() {
		o, ok := v.(*synth.Oscillator)
		require.True(t, ok, "unexpected voice %T", v)
		out = append(out, o)
	}
	return out
}

// encodeWAV writes the channels as a 16-bit PCM WAV file in a temp dir and
// returns its bytes.
func encodeWAV(t *testing.T, sampleRate int, channels ...[]float64) []byte {
	t.Helper()
	pos := 0
	frames := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= len(channels[0]) {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && pos < len(channels[0]); n, pos = n+1, pos+1 {
			samples[n][0] = channels[0][pos]
			samples[n][1] = channels[0][pos]
			if len(channels) > 1 {
				samples[n][1] = channels[1][pos]
			}
		}
		return n, true
	})

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: beep.SampleRate(sampleRate), NumChannels: len(channels), Precision: 2}
	require.NoError(t, wav.Encode(f, frames, format))
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func sineSamples(freq float64, sampleRate int, seconds float64) []float64 {
	out := make([]float64, int(seconds*float64(sampleRate)))
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}
