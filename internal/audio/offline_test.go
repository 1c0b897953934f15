package audio

import (
	"testing"

	"github.com/stretchr/testify/require"

	"sfx/internal/synth"
)

func TestOfflineContext_Lifecycle(t *testing.T) {
	oc := NewOfflineContext(testRate)
	require.Equal(t, StateRunning, oc.State())
	require.Equal(t, testRate, oc.SampleRate())

	require.NoError(t, oc.Suspend())
	require.Equal(t, StateSuspended, oc.State())
	require.Nil(t, oc.Render(1))
	require.Zero(t, oc.CurrentTime())

	require.NoError(t, oc.Resume())
	require.Len(t, oc.Render(0.5), testRate/2)
	require.InDelta(t, 0.5, oc.CurrentTime(), 1e-12)

	require.NoError(t, oc.Close())
	require.Equal(t, StateClosed, oc.State())
	require.ErrorIs(t, oc.Resume(), ErrContextClosed)
	require.ErrorIs(t, oc.Suspend(), ErrContextClosed)
	require.Nil(t, oc.Render(1))
}

func TestOfflineContext_RendersConnectedVoices(t *testing.T) {
	oc := NewOfflineContext(testRate)
	buf := synth.NewBuffer(testRate, []float32{0.25, 0.25, 0.25, 0.25})
	oc.Connect(synth.NewBufferSource(buf, 0, 0, 0))

	frames := oc.Render(0.001)
	require.Len(t, frames, 8)
	for i := 0; i < 4; i++ {
		require.InDelta(t, 0.25, frames[i][0], 1e-6)
		require.InDelta(t, 0.25, frames[i][1], 1e-6)
	}
	for _, f := range frames[4:] {
		require.Zero(t, f[0])
	}
}

func TestOfflineFactory(t *testing.T) {
	c, err := OfflineFactory(testRate)()
	require.NoError(t, err)
	require.Equal(t, StateRunning, c.State())
}

func TestOfflineContext_RecordsOnlyWhenAsked(t *testing.T) {
	tone := func() synth.Voice {
		o := synth.NewOscillator(synth.Sine, 440)
		o.StartAt(0)
		o.StopAt(0.01)
		return o
	}

	plain := NewOfflineContext(testRate)
	plain.Connect(tone())
	require.Empty(t, plain.Voices())
	require.Len(t, plain.Active(), 1)

	recording := NewOfflineContext(testRate, WithRecording())
	id := recording.Connect(tone())
	require.Len(t, recording.Voices(), 1)
	require.Equal(t, []string{id}, recording.Active())

	recording.Render(0.02)
	require.Empty(t, recording.Active())
	require.Len(t, recording.Voices(), 1)
}
